package configs

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type Conf struct {
	DBDriver          string  `mapstructure:"DB_DRIVER"`
	DBHost            string  `mapstructure:"DB_HOST"`
	DBPort            string  `mapstructure:"DB_PORT"`
	DBUser            string  `mapstructure:"DB_USER"`
	DBPassword        string  `mapstructure:"DB_PASSWORD"`
	DBName            string  `mapstructure:"DB_NAME"`
	DBDSN             string  `mapstructure:"DB_DSN"`
	ContextLifetime   string  `mapstructure:"CONTEXT_LIFETIME"`
	WebServerPort     string  `mapstructure:"WEB_SERVER_PORT"`
	ServiceName       string  `mapstructure:"SERVICE_NAME"`
	LogProduction     bool    `mapstructure:"LOG_PRODUCTION"`
	OTelCollectorAddr string  `mapstructure:"OTEL_COLLECTOR_ADDR"`
	OTelSampleRatio   float64 `mapstructure:"OTEL_SAMPLE_RATIO"`
	Environment       string  `mapstructure:"APP_ENV"`
}

var defaults = map[string]any{
	"DB_DRIVER":           "sqlite",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "",
	"DB_PASSWORD":         "",
	"DB_NAME":             "people",
	"DB_DSN":              "",
	"CONTEXT_LIFETIME":    "scoped",
	"WEB_SERVER_PORT":     "8080",
	"SERVICE_NAME":        "gopeople",
	"LOG_PRODUCTION":      false,
	"OTEL_COLLECTOR_ADDR": "",
	"OTEL_SAMPLE_RATIO":   1.0,
	"APP_ENV":             "development",
}

// LoadConfig reads path/.env when present; environment variables always win.
func LoadConfig(path string) (*Conf, error) {
	var cfg *Conf

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN is the connection string handed to the store. DB_DSN overrides the
// individual settings; for sqlite it is a file path.
func (c *Conf) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == "sqlite" {
		return c.DBName + ".db"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
