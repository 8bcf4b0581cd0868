package main

import (
	"os"
	"time"

	"party-platform/internal"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := internal.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db := internal.MustDB(cfg.DatabaseURL)
	defer db.Close()

	var store internal.PartyStore
	switch cfg.PartyStore {
	case "memory":
		store = internal.NewMemoryPartyStore()
	case "postgres":
		store = internal.NewPgPartyStore(db)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:            cfg.RedisAddress,
			DB:              cfg.RedisDB,
			Password:        cfg.RedisPassword,
			MaxRetries:      3,
			ConnMaxIdleTime: 2 * time.Minute,
		})
		store = internal.NewRedisPartyStore(client, cfg.RedisPartiesKey)
	default:
		log.Fatal().Str("store", cfg.PartyStore).Msg("PARTY_STORE must be memory, postgres or redis")
	}

	hub := internal.NewSignalingHub()
	events := internal.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer events.Close()

	registry := internal.NewPartyRegistry(store, hub, events)

	r := gin.Default()

	// Frontend static
	r.Static("/static", cfg.StaticDir)
	r.GET("/", func(c *gin.Context) { c.File(cfg.StaticDir + "/index.html") })
	r.GET("/login", func(c *gin.Context) { c.File(cfg.StaticDir + "/login.html") })
	r.GET("/register", func(c *gin.Context) { c.File(cfg.StaticDir + "/register.html") })
	r.GET("/dashboard", func(c *gin.Context) { c.File(cfg.StaticDir + "/dashboard.html") })

	api := r.Group("/api")
	{
		api.POST("/auth/register", internal.Register(db))
		api.POST("/auth/login", internal.Login(db, cfg.JWTSecret, cfg.CookieSecure))
		api.POST("/auth/logout", internal.Logout())
		api.GET("/me", internal.Auth(cfg.JWTSecret), internal.Me(db))

		// dashboard polling
		api.GET("/health", internal.Health())
		api.GET("/stats", internal.Auth(cfg.JWTSecret), internal.Stats(db, store))

		// parties
		api.POST("/parties", internal.Auth(cfg.JWTSecret), internal.CreateParty(registry, db))
		api.POST("/parties/:id/join", internal.Auth(cfg.JWTSecret), internal.JoinParty(registry, db))
		api.GET("/parties", internal.Auth(cfg.JWTSecret), internal.DiscoverParties(registry))

		// surveys (mock generation, illustrative earnings)
		api.POST("/surveys/generate", internal.Auth(cfg.JWTSecret), internal.RequireCompany(), internal.GenerateSurvey(db))
		api.POST("/surveys/complete", internal.Auth(cfg.JWTSecret), internal.CompleteSurvey(db))
	}

	// realtime signaling rooms for party peers
	r.GET("/ws/parties/:id", internal.Auth(cfg.JWTSecret), internal.PartyRoomWS(hub))

	log.Info().Str("port", cfg.Port).Str("party_store", cfg.PartyStore).Msg("listening")
	_ = r.Run(":" + cfg.Port)
}
