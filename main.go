package main

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nucares/booking-gateway/clinic"
	"github.com/nucares/booking-gateway/controllers"
	"github.com/nucares/booking-gateway/cron"
	"github.com/nucares/booking-gateway/flow"
	"github.com/nucares/booking-gateway/redis"
	"github.com/nucares/booking-gateway/routes"
	"github.com/nucares/booking-gateway/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment variables directly")
	}
	initLogger()

	clinicURL := os.Getenv("CLINIC_API_URL")
	if clinicURL == "" {
		log.Fatal().Msg("CLINIC_API_URL is not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	if err := redis.InitRedis(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect duplicate-submission guard")
	}

	store := session.NewStore(sessionTTL())
	if _, err := cron.StartCronJobs(store); err != nil {
		log.Fatal().Err(err).Msg("failed to start session sweep")
	}

	handler := controllers.NewFlowHandler(store, func(token string) flow.API {
		return clinic.NewClient(clinicURL, clinic.StaticToken(token))
	})

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("NU-CARES booking gateway")
	})
	routes.SetupFlowRoutes(app, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Info().Str("port", port).Msg("starting booking gateway")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
	log.Logger = log.Logger.With().Str("service", "booking-gateway").Logger()
}

func sessionTTL() time.Duration {
	raw := os.Getenv("SESSION_TTL")
	if raw == "" {
		return session.DefaultTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("session_ttl", raw).Msg("invalid SESSION_TTL, using default")
		return session.DefaultTTL
	}
	return ttl
}
