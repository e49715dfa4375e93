package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`

	JWT    JWTConfig    `yaml:"jwt"`
	Gemini GeminiConfig `yaml:"gemini"`
	Media  MediaConfig  `yaml:"media"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	Env Environment `yaml:"-"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	TTL      time.Duration `yaml:"ttl"`
}

type GeminiConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

type MediaConfig struct {
	Provider string `yaml:"provider"`

	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`

	GCSBucket          string `yaml:"gcs_bucket"`
	GCSCredentialsFile string `yaml:"gcs_credentials_file,omitempty"`
	GCSPublicBaseURL   string `yaml:"gcs_public_base_url,omitempty"`

	Folder         string `yaml:"folder"`
	Concurrency    int    `yaml:"concurrency"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		DatabaseURL: "formcraft.db",
		JWT: JWTConfig{
			Issuer:   "formcraft-api",
			Audience: "formcraft-web",
			TTL:      24 * time.Hour,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Media: MediaConfig{
			Provider:       "cloudinary",
			Folder:         "form-submissions",
			Concurrency:    4,
			MaxUploadBytes: 32 << 20,
		},
		AllowedOrigins: []string{"*"},
	}
}

// Load builds the process configuration: defaults, then the YAML file named
// by CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Env = LoadEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.DatabaseURL, "DB_URL")

	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.JWT.Issuer, "JWT_ISSUER")
	setString(&c.JWT.Audience, "JWT_AUDIENCE")
	if v := strings.TrimSpace(os.Getenv("JWT_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.JWT.TTL = d
	}

	setString(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&c.Gemini.Model, "GEMINI_MODEL")
	setString(&c.Gemini.Endpoint, "GEMINI_ENDPOINT")

	setString(&c.Media.Provider, "MEDIA_PROVIDER")
	setString(&c.Media.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&c.Media.APIKey, "CLOUDINARY_API_KEY")
	setString(&c.Media.APISecret, "CLOUDINARY_API_SECRET")
	setString(&c.Media.GCSBucket, "GCS_BUCKET_NAME")
	setString(&c.Media.GCSCredentialsFile, "GCS_CREDENTIALS_FILE")
	setString(&c.Media.GCSPublicBaseURL, "GCS_PUBLIC_BASE_URL")
	setString(&c.Media.Folder, "UPLOAD_FOLDER")
	if v := strings.TrimSpace(os.Getenv("UPLOAD_CONCURRENCY")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("UPLOAD_CONCURRENCY: %w", err)
		}
		c.Media.Concurrency = n
	}
	if v := strings.TrimSpace(os.Getenv("MAX_UPLOAD_BYTES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.Media.MaxUploadBytes = n
	}

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		errs = append(errs, errors.New("JWT issuer and audience must not be empty"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Media.Concurrency <= 0 {
		errs = append(errs, errors.New("UPLOAD_CONCURRENCY must be positive"))
	}
	if c.Media.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
