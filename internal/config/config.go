package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"production"`
	PGSQL      PQSQL      `yaml:"pgsql" env-required:"true"`
	Redis      Redis      `yaml:"redis"`
	HTTPServer HTTPServer `yaml:"http_server" env-required:"true"`
	JWTSecret  string     `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	S3         S3         `yaml:"s3" env-required:"true"`
	Upload     Upload     `yaml:"upload"`
	Thumbnails []Variant  `yaml:"thumbnails"`
	Cleanup    Cleanup    `yaml:"cleanup"`
}

type HTTPServer struct {
	Address string `yaml:"address" env-default:"localhost:8080"`
}

type PQSQL struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-default:"postgres"`
	Password string `yaml:"password" env-default:"password"`
	DBName   string `yaml:"dbname" env-default:"raikan_db"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Redis struct {
	Address  string `yaml:"address" env-default:"localhost:6379"`
	Password string `yaml:"password" env-default:""`
	DB       int    `yaml:"db" env-default:"0"`
}

type S3 struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-required:"true"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-required:"true"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-required:"true"`
	UseSSL          bool   `yaml:"use_ssl" env-default:"true"`
	// PublicDomain, when set, is used instead of the endpoint URL when
	// building object URLs (CDN or custom domain in front of the bucket).
	PublicDomain string `yaml:"public_domain" env:"S3_PUBLIC_DOMAIN"`
}

type Upload struct {
	MaxFileSize       int64    `yaml:"max_file_size" env-default:"5242880"`
	MaxBatchFiles     int      `yaml:"max_batch_files" env-default:"10"`
	AllowedImageTypes []string `yaml:"allowed_image_types"`
	AllowedQRTypes    []string `yaml:"allowed_qr_types"`
	RateLimitCapacity int64    `yaml:"rate_limit_capacity" env-default:"30"`
	RateLimitRefill   int64    `yaml:"rate_limit_refill" env-default:"30"`
}

// Variant is one thumbnail rendition. The label is explicit in configuration
// so that resizing a variant never changes which slot it fills.
type Variant struct {
	Label  string `yaml:"label"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type Cleanup struct {
	DailyAt      string        `yaml:"daily_at" env-default:"02:00"`
	WeeklyAt     string        `yaml:"weekly_at" env-default:"03:00"`
	WeeklyDay    string        `yaml:"weekly_day" env-default:"Sunday"`
	MinObjectAge time.Duration `yaml:"min_object_age" env-default:"1h"`
	PageCacheTTL time.Duration `yaml:"page_cache_ttl" env-default:"5m"`
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	applyDefaults(&cfg)

	return &cfg
}

// applyDefaults fills list-valued settings cleanenv cannot default.
func applyDefaults(cfg *Config) {
	if len(cfg.Upload.AllowedImageTypes) == 0 {
		cfg.Upload.AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}
	if len(cfg.Upload.AllowedQRTypes) == 0 {
		cfg.Upload.AllowedQRTypes = []string{"image/jpeg", "image/png", "image/webp", "image/svg+xml"}
	}
	if len(cfg.Thumbnails) == 0 {
		cfg.Thumbnails = DefaultThumbnails()
	}
}

// DefaultThumbnails returns the three standard renditions.
func DefaultThumbnails() []Variant {
	return []Variant{
		{Label: "small", Width: 150, Height: 150},
		{Label: "medium", Width: 300, Height: 300},
		{Label: "large", Width: 800, Height: 600},
	}
}
