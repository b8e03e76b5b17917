package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Skotchmaster/shop_admin/internal/hash"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"shop-admin"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"LOG_FILE"`

	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"ecommerce-admin"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SiteURL       string        `envconfig:"SITE_URL" default:"http://localhost:8080"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin User"`

	CloudinaryCloudName    string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryUploadPreset string `envconfig:"CLOUDINARY_UPLOAD_PRESET"`
	CloudinaryBaseURL      string `envconfig:"CLOUDINARY_BASE_URL" default:"https://api.cloudinary.com/v1_1"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	RedisAddr            string `envconfig:"REDIS_ADDR"`
	RedisPassword        string `envconfig:"REDIS_PASSWORD"`
	LoginRateLimitPerMin int    `envconfig:"LOGIN_RATE_LIMIT_PER_MIN" default:"10"`

	DebugEndpoints bool `envconfig:"DEBUG_ENDPOINTS" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Notice: %s not loaded: %v. Using system environment variables", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	for key, v := range map[string]string{"DATABASE_URL": cfg.DatabaseURL, "SESSION_SECRET": cfg.SessionSecret} {
		if strings.TrimSpace(v) == "" {
			return Config{}, fmt.Errorf("missing required env %s", key)
		}
	}
	if len(cfg.AdminPassword) > hash.MaxPasswordBytes {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes", hash.MaxPasswordBytes)
	}
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// SecureCookies reports whether the public site is served over TLS.
func (c Config) SecureCookies() bool {
	u, err := url.Parse(c.SiteURL)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
