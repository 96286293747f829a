package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverR2         = "r2"
	StorageDriverCloudinary = "cloudinary"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	JWTSecret     string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	DBAutoMigrate     bool
	// Storage (upload collaborator)
	StorageDriver     string
	UploadFolder      string
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	CloudinaryURL     string
	// Cache
	CacheCategoryTTL time.Duration
	CacheProductTTL  time.Duration
	// Upload Configuration
	MaxUploadSizeMB int64
	R2UploadTimeout time.Duration
	// Catalog editing
	MaxGalleryImages int
	EditSessionTTL   time.Duration
	AtomicCommit     bool
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars otherwise
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current process environment without
// loading any .env file.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),
		DBAutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverCloudinary)),
		UploadFolder:      getEnv("UPLOAD_FOLDER", "giftcards"),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		CloudinaryURL:     getEnv("CLOUDINARY_URL", ""),

		// Cache defaults: 30m Category, 10m Product
		CacheCategoryTTL: getDurationEnv("CACHE_CATEGORY_TTL", 30*time.Minute),
		CacheProductTTL:  getDurationEnv("CACHE_PRODUCT_TTL", 10*time.Minute),

		// Upload defaults: 10MB max, 30s timeout
		MaxUploadSizeMB: getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		R2UploadTimeout: getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		MaxGalleryImages: getIntEnv("MAX_GALLERY_IMAGES", 3),
		EditSessionTTL:   getDurationEnv("EDIT_SESSION_TTL", 30*time.Minute),
		AtomicCommit:     getBoolEnv("ATOMIC_COMMIT", true),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

// Validate reports the first configuration problem that prevents startup.
func (c *Config) Validate() error {
	if c.DBUrl == "" {
		return errors.New("DB_DSN environment variable is required")
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	if c.MaxGalleryImages < 1 {
		return errors.New("MAX_GALLERY_IMAGES must be at least 1")
	}
	switch c.StorageDriver {
	case StorageDriverCloudinary:
		if c.CloudinaryURL == "" {
			return errors.New("CLOUDINARY_URL is required when STORAGE_DRIVER=cloudinary")
		}
	case StorageDriverR2:
		if c.R2AccountID == "" || c.R2BucketName == "" || c.R2PublicURL == "" {
			return errors.New("R2_ACCOUNT_ID, R2_BUCKET_NAME and R2_PUBLIC_URL are required when STORAGE_DRIVER=r2")
		}
	default:
		return errors.New("STORAGE_DRIVER must be one of: r2, cloudinary")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}
