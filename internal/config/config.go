package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Env  string `validate:"required,oneof=dev prod"`
	HTTP struct {
		Addr         string `validate:"required"`
		MaxBodyBytes int64  `validate:"gt=0"`
		AuthToken    string
		CORSOrigins  []string `validate:"min=1,dive,required"`
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
	DB struct {
		Driver string `validate:"required,oneof=sqlite postgres"`
		DSN    string `validate:"required"`
	}
	Errors struct {
		MaskGateway bool
		Debug       bool
	}
	Upstream struct {
		URL string `validate:"omitempty,url"`
	}
	Stats struct {
		Schedule string `validate:"required"`
	}
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	var err error
	c.Env = getenv("ENV", "prod")
	c.HTTP.Addr = getenv("HTTP_ADDR", ":8080")
	c.HTTP.AuthToken = os.Getenv("AUTH_TOKEN")
	c.HTTP.CORSOrigins = getlist("CORS_ORIGINS", "*")
	if c.HTTP.MaxBodyBytes, err = getint("MAX_BODY_BYTES", 1<<20); err != nil {
		return Config{}, err
	}
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/server.log")
	c.DB.Driver = strings.ToLower(getenv("DB_DRIVER", "sqlite"))
	c.DB.DSN = getenv("DB_DSN", "data/items.db")
	if c.Errors.MaskGateway, err = getbool("ERRORS_MASK_GATEWAY", true); err != nil {
		return Config{}, err
	}
	if c.Errors.Debug, err = getbool("ERRORS_DEBUG", false); err != nil {
		return Config{}, err
	}
	c.Upstream.URL = os.Getenv("UPSTREAM_URL")
	c.Stats.Schedule = getenv("STATS_SCHEDULE", "@every 1m")

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getlist(k, def string) []string {
	var out []string
	for _, v := range strings.Split(getenv(k, def), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getbool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func getint(k string, def int64) (int64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
