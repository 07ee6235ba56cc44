package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"bob", "Bob", "bob_42", "a1_", strings.Repeat("x", 20)}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), "username %q should be valid", u)
	}

	invalid := []string{"", "ab", strings.Repeat("x", 21), "bob!", "bob smith", "böb"}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), "username %q should be invalid", u)
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bob", NormalizeUsername("  Bob "))
	assert.Equal(t, "bob_42", NormalizeUsername("BOB_42"))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("a@x.com"))
	assert.NoError(t, ValidateEmail("alice.smith+tag@sub.example.org"))

	for _, e := range []string{"", "a", "a@x", "a x@y.com", "@x.com"} {
		assert.Error(t, ValidateEmail(e), "email %q should be invalid", e)
	}
}

func TestValidateMessageContent(t *testing.T) {
	t.Parallel()

	require.Error(t, ValidateMessageContent("too short"))
	require.Error(t, ValidateMessageContent(strings.Repeat("x", 501)))
	assert.NoError(t, ValidateMessageContent("exactly ten")) // 11 chars
	assert.NoError(t, ValidateMessageContent(strings.Repeat("x", 10)))
	assert.NoError(t, ValidateMessageContent(strings.Repeat("x", 500)))

	// Bounds count characters, not bytes
	assert.NoError(t, ValidateMessageContent(strings.Repeat("日", 300))) // 900 bytes, 300 chars
	assert.NoError(t, ValidateMessageContent(strings.Repeat("日", 500)))
	require.Error(t, ValidateMessageContent(strings.Repeat("日", 501)))
	require.Error(t, ValidateMessageContent(strings.Repeat("😀", 4))) // 16 bytes, 4 chars
	assert.NoError(t, ValidateMessageContent(strings.Repeat("😀", 10)))
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := ValidateUsername("a")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
	assert.NotEmpty(t, verr.Message)
}
