package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. NEUROMEDI_SERVER_PORT.
const EnvPrefix = "NEUROMEDI"

type Config struct {
	Server    Server    `yaml:"server"`
	Log       Log       `yaml:"log"`
	Detection Detection `yaml:"detection"`
	Inquiry   Inquiry   `yaml:"inquiry"`
	Notify    Notify    `yaml:"notify"`
	Preview   Preview   `yaml:"preview"`
	RateLimit RateLimit `yaml:"rateLimit" split_words:"true"`
}

type Server struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"readTimeout" split_words:"true"`
	WriteTimeout   time.Duration `yaml:"writeTimeout" split_words:"true"`
	IdleTimeout    time.Duration `yaml:"idleTimeout" split_words:"true"`
	AllowedOrigins []string      `yaml:"allowedOrigins" split_words:"true"`
}

type Log struct {
	Environment string `yaml:"environment"`
	Level       string `yaml:"level"`
}

type Detection struct {
	AnalysisDelay  time.Duration `yaml:"analysisDelay" split_words:"true"`
	SessionTTL     time.Duration `yaml:"sessionTTL" split_words:"true"`
	SweepInterval  time.Duration `yaml:"sweepInterval" split_words:"true"`
	MaxUploadBytes int64         `yaml:"maxUploadBytes" split_words:"true"`
	Seed           uint64        `yaml:"seed"`
}

type Inquiry struct {
	SubmitDelay time.Duration `yaml:"submitDelay" split_words:"true"`
}

type Notify struct {
	TTL time.Duration `yaml:"ttl"`
}

type Preview struct {
	Driver string `yaml:"driver"`
	Minio  Minio  `yaml:"minio"`
}

type Minio struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey" split_words:"true"`
	SecretKey  string `yaml:"secretKey" split_words:"true"`
	BucketName string `yaml:"bucketName" split_words:"true"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL" split_words:"true"`
}

type RateLimit struct {
	Capacity   int `yaml:"capacity"`
	RefillRate int `yaml:"refillRate" split_words:"true"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: Log{Environment: "development"},
		Detection: Detection{
			AnalysisDelay:  2500 * time.Millisecond,
			SessionTTL:     30 * time.Minute,
			SweepInterval:  time.Minute,
			MaxUploadBytes: 10 << 20,
		},
		Inquiry:   Inquiry{SubmitDelay: 1500 * time.Millisecond},
		Notify:    Notify{TTL: 5 * time.Second},
		Preview:   Preview{Driver: "memory"},
		RateLimit: RateLimit{Capacity: 60, RefillRate: 10},
	}
}

// Load baca file config.yaml di atas default, lalu override dari environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the service misbehave.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Detection.MaxUploadBytes <= 0 {
		return errors.New("detection.maxUploadBytes must be positive")
	}
	switch c.Preview.Driver {
	case "memory":
	case "minio":
		if c.Preview.Minio.Endpoint == "" || c.Preview.Minio.BucketName == "" {
			return errors.New("preview.minio.endpoint and bucketName are required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown preview.driver %q", c.Preview.Driver)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
