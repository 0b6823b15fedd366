package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug bool `yaml:"debug"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	// URL wins over the MySQL section; with neither, SQLitePath is used
	Database struct {
		URL        string `yaml:"url"`
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"name"`
		SQLitePath string `yaml:"sqlitePath"`
	} `yaml:"database"`

	AI struct {
		APIKey     string        `yaml:"apiKey"`
		BaseURL    string        `yaml:"baseURL"`
		Model      string        `yaml:"model"`
		SiteURL    string        `yaml:"siteURL"`
		SiteName   string        `yaml:"siteName"`
		Structured bool          `yaml:"structured"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	// Auth.APIKeys maps a client name to its key; empty disables auth
	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// Load baca file config.yaml. A missing file is not an error: defaults and
// environment variables are enough to run against SQLite.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadDotEnv copies KEY=value pairs from the given files (default ".env")
// into the environment. Variables already set win; missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Database.URL, "DATABASE_URL")
	set(&c.AI.APIKey, "OPENROUTER_API_KEY")
	set(&c.AI.APIKey, "OPENAI_API_KEY")
	set(&c.AI.Model, "OPENAI_MODEL")
	set(&c.AI.BaseURL, "OPENAI_BASE_URL")
	set(&c.AI.SiteURL, "YOUR_SITE_URL")
	set(&c.AI.SiteName, "YOUR_SITE_NAME")
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("DEBUG"); v != "" {
		c.Debug, _ = strconv.ParseBool(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "threat_database.db"
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.RateLimit.Capacity <= 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate <= 0 {
		c.RateLimit.RefillRate = 1
	}
}

// Driver picks the storage backend: postgres, mysql or sqlite
func (c *Config) Driver() string {
	u := strings.ToLower(c.Database.URL)
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(u, "mysql://"):
		return "mysql"
	case strings.HasPrefix(u, "sqlite://"), strings.HasPrefix(u, "file:"):
		return "sqlite"
	case c.Database.Host != "":
		return "mysql"
	default:
		return "sqlite"
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	if strings.HasPrefix(strings.ToLower(c.Database.URL), "mysql://") {
		dsn := c.Database.URL[len("mysql://"):]
		if !strings.Contains(dsn, "parseTime=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true&charset=utf8mb4&loc=UTC"
		}
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// SQLitePath resolves sqlite:// and file: URLs, falling back to the configured path
func (c *Config) SQLitePath() string {
	u := c.Database.URL
	switch {
	case strings.HasPrefix(strings.ToLower(u), "sqlite://"):
		return u[len("sqlite://"):]
	case strings.HasPrefix(strings.ToLower(u), "file:"):
		return u
	}
	return c.Database.SQLitePath
}

// MinioEnabled reports whether export archiving is configured
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}
