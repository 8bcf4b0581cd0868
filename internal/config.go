package internal

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string `mapstructure:"PORT"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	CookieSecure    bool   `mapstructure:"COOKIE_SECURE"`
	StaticDir       string `mapstructure:"STATIC_DIR"`
	PartyStore      string `mapstructure:"PARTY_STORE"` // memory|postgres|redis
	RedisAddress    string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	RedisPartiesKey string `mapstructure:"REDIS_PARTIES_KEY"`
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic      string `mapstructure:"KAFKA_TOPIC"`
}

// LoadConfig reads configuration from an app.env file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STATIC_DIR", "./static")
	viper.SetDefault("PARTY_STORE", "memory")
	viper.SetDefault("REDIS_PARTIES_KEY", "parties")
	viper.SetDefault("KAFKA_TOPIC", "party-events")

	viper.AutomaticEnv()
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "COOKIE_SECURE",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "KAFKA_BROKERS",
	} {
		_ = viper.BindEnv(key)
	}

	err = viper.ReadInConfig()
	if err != nil {
		// the env file is optional; plain environment variables still apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
