package services

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// EmailSender dispatches transactional email. Failures are surfaced to the
// caller; nothing is retried.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, recipientEmail, username, code string) error
}

// ResendSender sends email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) SendVerificationEmail(ctx context.Context, recipientEmail, username, code string) error {
	text := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Thank you for choosing Quietly. To complete your registration, please use the verification code below:\n\n"+
			"%s\n\n"+
			"This code will expire in 1 hour. If you didn't request this verification code, please ignore this email.\n\n"+
			"Best regards,\nThe Quietly Team\n",
		username, code)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{recipientEmail},
		Subject: "Quietly Verification code",
		Text:    text,
		Html: fmt.Sprintf(
			"<p>Hello <strong>%s</strong>,</p><p>Thank you for choosing Quietly. To complete your registration, please use the verification code below:</p><p><strong>%s</strong></p><p>This code will expire in 1 hour. If you didn't request this verification code, please ignore this email.</p><p>Best regards,<br>The Quietly Team</p>",
			username, code),
	}

	response, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("Resend error: %v", err)
		return err
	}

	log.Printf("Verification email sent. ID: %s", response.Id)
	return nil
}
