package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Wishlist_Manager/internal/models"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreAirtable = "airtable"
	StoreMongo    = "mongo"
)

// Config holds the server settings read from the environment.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	Timezone    string   `env:"TIMEZONE"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RecordStore       string `env:"RECORD_STORE" envDefault:"airtable"`
	AirtableAPIKey    string `env:"AIRTABLE_API_KEY"`
	AirtableBaseID    string `env:"AIRTABLE_BASE_ID"`
	AirtableTableName string `env:"AIRTABLE_TABLE_NAME" envDefault:"Wishes"`
	MongoURI          string `env:"MONGO_URI"`
	MongoDB           string `env:"MONGO_DB" envDefault:"wishlist"`

	MinioEndpoint    string        `env:"MINIO_ENDPOINT"`
	MinioAccessKey   string        `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey   string        `env:"MINIO_SECRET_KEY"`
	MinioBucket      string        `env:"MINIO_BUCKET" envDefault:"wishes"`
	MinioUseSSL      bool          `env:"MINIO_USE_SSL"`
	MinioPublicURL   string        `env:"MINIO_PUBLIC_URL"`
	BlobCleanupDelay time.Duration `env:"BLOB_CLEANUP_DELAY" envDefault:"15s"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	// "off" disables the background sweep.
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@hourly"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPSender   string `env:"SMTP_SENDER"`
	PatrikEmail  string `env:"PATRIK_EMAIL"`
	JuliaEmail   string `env:"JULIA_EMAIL"`
	AppURL       string `env:"APP_URL"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.RecordStore {
	case StoreAirtable:
		if c.AirtableAPIKey == "" || c.AirtableBaseID == "" {
			return fmt.Errorf("RECORD_STORE=airtable requires AIRTABLE_API_KEY and AIRTABLE_BASE_ID")
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("RECORD_STORE=mongo requires MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown RECORD_STORE %q", c.RecordStore)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the zone in which "today" is computed.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) SweepEnabled() bool {
	s := strings.TrimSpace(c.SweepSchedule)
	return s != "" && !strings.EqualFold(s, "off")
}

func (c *Config) BlobStorageEnabled() bool {
	return c.MinioEndpoint != ""
}

// MinioBaseURL is the public origin staged objects are served from.
func (c *Config) MinioBaseURL() string {
	if c.MinioPublicURL != "" {
		return strings.TrimRight(c.MinioPublicURL, "/")
	}
	scheme := "http"
	if c.MinioUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.MinioEndpoint
}

// MailAddresses maps each person to their notification address, skipping
// people without one.
func (c *Config) MailAddresses() map[models.Person]string {
	addresses := make(map[models.Person]string, len(models.People))
	if c.PatrikEmail != "" {
		addresses[models.Patrik] = c.PatrikEmail
	}
	if c.JuliaEmail != "" {
		addresses[models.Julia] = c.JuliaEmail
	}
	return addresses
}
