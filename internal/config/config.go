package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env            string        `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger         string        `yaml:"jaeger" env:"JAEGER" env-default:"jaeger"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl" env:"REPORT_CACHE_TTL" env-default:"15m"`
	Log            LogConfig     `yaml:"log"`
	HTTP           HTTPConfig    `yaml:"http"`
	Redis          RedisConfig   `yaml:"redis"`
	Amadeus        AmadeusConfig `yaml:"amadeus"`
	Watch          WatchConfig   `yaml:"watch"`
	Webhook        WebhookConfig `yaml:"webhook"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"45s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// RedisConfig is optional; an empty addr disables the report cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type AmadeusConfig struct {
	Environment       string        `yaml:"environment" env:"AMADEUS_ENVIRONMENT" env-default:"test"`
	BaseURL           string        `yaml:"base_url" env:"AMADEUS_BASE_URL"`
	ClientID          string        `yaml:"client_id" env:"AMADEUS_CLIENT_ID"`
	ClientSecret      string        `yaml:"client_secret" env:"AMADEUS_CLIENT_SECRET"`
	Timeout           time.Duration `yaml:"timeout" env:"AMADEUS_TIMEOUT" env-default:"8s"`
	MaxRetries        int           `yaml:"max_retries" env:"AMADEUS_MAX_RETRIES" env-default:"3"`
	RetryAfterCap     time.Duration `yaml:"retry_after_cap" env:"AMADEUS_RETRY_AFTER_CAP" env-default:"5s"`
	TokenExpirySkew   time.Duration `yaml:"token_expiry_skew" env:"AMADEUS_TOKEN_EXPIRY_SKEW" env-default:"30s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"AMADEUS_RPS" env-default:"2"`
	Burst             int           `yaml:"burst" env:"AMADEUS_BURST" env-default:"2"`
}

type WatchConfig struct {
	Origin              string `yaml:"origin" env:"WATCH_ORIGIN" env-default:"AMS"`
	Destination         string `yaml:"destination" env:"WATCH_DESTINATION" env-default:"BKK"`
	DepartureDate       string `yaml:"departure_date" env:"WATCH_DEPARTURE_DATE"`
	ReturnDate          string `yaml:"return_date" env:"WATCH_RETURN_DATE"`
	FlexDays            int    `yaml:"flex_days" env:"WATCH_FLEX_DAYS" env-default:"1"`
	Cabin               string `yaml:"cabin" env:"WATCH_CABIN" env-default:"BUSINESS"`
	Adults              int    `yaml:"adults" env:"WATCH_ADULTS" env-default:"1"`
	Currency            string `yaml:"currency" env:"WATCH_CURRENCY" env-default:"EUR"`
	MaxResults          int    `yaml:"max_results" env:"WATCH_MAX_RESULTS" env-default:"20"`
	MaxStops            int    `yaml:"max_stops" env:"WATCH_MAX_STOPS" env-default:"1"`
	MaxMinutes          int    `yaml:"max_minutes_per_direction" env:"WATCH_MAX_MINUTES" env-default:"1200"`
	DurationBoundStrict bool   `yaml:"duration_bound_strict" env:"WATCH_DURATION_BOUND_STRICT" env-default:"false"`
	TrustUpstreamCabin  bool   `yaml:"trust_upstream_cabin" env:"WATCH_TRUST_UPSTREAM_CABIN" env-default:"false"`
	AllowInvertedPairs  bool   `yaml:"allow_inverted_pairs" env:"WATCH_ALLOW_INVERTED_PAIRS" env-default:"false"`
	Concurrency         int    `yaml:"concurrency" env:"WATCH_CONCURRENCY" env-default:"3"`
}

// WebhookConfig is optional; an empty URL disables the summary forward.
type WebhookConfig struct {
	URL     string        `yaml:"url" env:"WEBHOOK_URL"`
	Secret  string        `yaml:"secret" env:"WEBHOOK_SECRET"`
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"5s"`
}

// Host resolves the Amadeus API base URL: an explicit base_url wins,
// otherwise the environment selector picks the test or production host.
func (a AmadeusConfig) Host() string {
	if strings.TrimSpace(a.BaseURL) != "" {
		return strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	}
	if strings.EqualFold(strings.TrimSpace(a.Environment), "production") {
		return "https://api.amadeus.com"
	}
	return "https://test.api.amadeus.com"
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exists: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read the config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}
