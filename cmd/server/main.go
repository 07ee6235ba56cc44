package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/arnabjk008/quietly-backend/internal/config"
	"github.com/arnabjk008/quietly-backend/internal/database"
	"github.com/arnabjk008/quietly-backend/internal/handlers"
	"github.com/arnabjk008/quietly-backend/internal/middleware"
	"github.com/arnabjk008/quietly-backend/internal/routes"
	"github.com/arnabjk008/quietly-backend/internal/services"
	"github.com/arnabjk008/quietly-backend/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.ResendAPIKey == "" {
		log.Println("⚠️  WARNING: RESEND_API_KEY not set. Verification emails will fail to send.")
	}

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	mongoDB := database.NewMongo(cfg.MongoURI)
	if err := mongoDB.Connect(context.Background()); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoDB.Disconnect()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	users := store.NewUsers(mongoDB.Database())
	if err := users.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	tokens := services.NewTokenIssuer(cfg.JWTSecret)
	email := services.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	h := handlers.New(users, tokens, email)

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimit(redisClient))
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h, tokens, cfg.FrontendURL)

	log.Println("📋 Registered routes:")
	log.Println("  GET    /health")
	log.Println("  POST   /api/sign-up")
	log.Println("  POST   /api/verify-code")
	log.Println("  POST   /api/sign-in")
	log.Println("  GET    /api/check-username-unique")
	log.Println("  POST   /api/send-message")
	log.Println("  GET    /api/me")
	log.Println("  GET    /api/get-messages")
	log.Println("  DELETE /api/delete-message/{messageID}")
	log.Println("  GET    /api/accept-messages")
	log.Println("  POST   /api/accept-messages")

	log.Printf("🚀 Quietly backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
