package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/UkralStul/hub-graphql-service/internal/ratelimit"
)

// Виды хранилища.
const (
	StorageMemory   = "in-memory"
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

const defaultPort = "8080"

type Server struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// AllowedOrigins - Origin, с которых разрешены websocket-подключения. Пусто - любые.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Storage struct {
	Type        string `yaml:"type"`
	DatabaseURL string `yaml:"databaseURL"`
	MongoURL    string `yaml:"mongoURL"`
	MongoDB     string `yaml:"mongoDB"`
	Debug       bool   `yaml:"debug"`
	// Seed заполняет in-memory хранилище тестовыми данными.
	Seed bool `yaml:"seed"`
}

type Auth struct {
	JWTSecret  string        `yaml:"jwtSecret"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
	SessionTTL time.Duration `yaml:"sessionTTL"`
	CookieName string        `yaml:"cookieName"`
	Secure     bool          `yaml:"secureCookie"`
}

type Uploads struct {
	Dir      string   `yaml:"dir"`
	URLPath  string   `yaml:"urlPath"`
	MaxBytes int64    `yaml:"maxBytes"`
	Allow    []string `yaml:"allow"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

type Config struct {
	Server    Server           `yaml:"server"`
	Storage   Storage          `yaml:"storage"`
	Auth      Auth             `yaml:"auth"`
	Uploads   Uploads          `yaml:"uploads"`
	RateLimit ratelimit.Config `yaml:"rateLimit"`
	Logging   Logging          `yaml:"logging"`
}

var (
	ErrConfigFileUnreadable      = errors.New("config file is unreadable")
	ErrConfigFileUnmarshallable  = errors.New("config file is unmarshallable")
	ErrUnknownStorage            = errors.New("unknown storage type")
	ErrDatabaseURLMissing        = errors.New("DATABASE_URL must be set for postgres storage")
	ErrMongoURLMissing           = errors.New("MONGO_URL must be set for mongo storage")
	ErrJWTSecretMissing          = errors.New("JWT_SECRET must be set for persistent storage")
	ErrUnknownLogFormat          = errors.New("logging.format must be text or json")
	ErrUploadsMaxBytesNotAllowed = errors.New("uploads.maxBytes must be positive")
)

// Default возвращает конфигурацию для локального запуска с in-memory хранилищем.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:            defaultPort,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: Storage{
			Type:    StorageMemory,
			MongoDB: "hub",
			Seed:    true,
		},
		Auth: Auth{
			TokenTTL:   24 * time.Hour,
			SessionTTL: 7 * 24 * time.Hour,
			CookieName: "sid",
		},
		Uploads: Uploads{
			Dir:      "uploads",
			URLPath:  "/uploads/",
			MaxBytes: 10 << 20,
			Allow:    []string{"image/*"},
		},
		RateLimit: ratelimit.Config{Limit: 20, Burst: 40},
		Logging:   Logging{Level: "info", Format: "text"},
	}
}

// Load читает yaml-файл поверх значений по умолчанию (пустой путь - только умолчания)
// и применяет переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigFileUnreadable, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigFileUnmarshallable, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// applyEnv переопределяет поля из окружения: PORT, DATABASE_URL, MONGO_URL, JWT_SECRET, STORAGE.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set("PORT", &c.Server.Port)
	set("DATABASE_URL", &c.Storage.DatabaseURL)
	set("MONGO_URL", &c.Storage.MongoURL)
	set("JWT_SECRET", &c.Auth.JWTSecret)
	set("STORAGE", &c.Storage.Type)
}

// Validate проверяет согласованность настроек выбранного хранилища.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return ErrDatabaseURLMissing
		}
	case StorageMongo:
		if c.Storage.MongoURL == "" {
			return ErrMongoURLMissing
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage.Type)
	}
	if c.Storage.Type != StorageMemory && c.Auth.JWTSecret == "" {
		return ErrJWTSecretMissing
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return ErrUnknownLogFormat
	}
	if c.Uploads.MaxBytes <= 0 {
		return ErrUploadsMaxBytesNotAllowed
	}
	return nil
}
