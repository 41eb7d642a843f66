// Package config はプロセス全体の設定を環境変数から読み込みます。
// .envの読み込みは呼び出し側（cmd/server）で行います。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"places_backend/internal/platform/db"
	"places_backend/internal/platform/externalapi/googlemaps"
	"places_backend/internal/platform/redis"
	"places_backend/internal/platform/storage"
)

// 画像ストレージの種類です。
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config はアプリケーション設定です。
type Config struct {
	Port      string
	APIPrefix string

	// トークンの有効期間はjwt.DefaultTTL(1時間)固定で、設定では変更できない
	JWTKey     string
	BcryptCost int

	DB            db.Config
	RunMigrations bool

	Redis           redis.Config
	GeocodeCacheTTL time.Duration
	Geocoding       googlemaps.Config

	ImageStorage   string
	UploadDir      string
	S3             storage.S3Config
	ImageScreening bool

	CORSAllowedOrigins []string
}

// Load は環境変数から設定を読み込み、値を検証します。
func Load() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		APIPrefix:     getenv("API_PREFIX", "/api"),
		JWTKey:        os.Getenv("JWT_KEY"),
		DB:            db.LoadConfigFromEnv(),
		Redis:         redis.LoadConfigFromEnv(),
		Geocoding:     googlemaps.LoadConfig(),
		ImageStorage:  strings.ToLower(getenv("IMAGE_STORAGE", StorageLocal)),
		UploadDir:     getenv("UPLOAD_DIR", storage.DefaultPrefix),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
		S3: storage.S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Prefix:    storage.DefaultPrefix,
		},
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.GeocodeCacheTTL, err = duration("GEOCODE_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = integer("BCRYPT_COST", 12); err != nil {
		return Config{}, err
	}
	if cfg.ImageScreening, err = boolean("IMAGE_SCREENING", false); err != nil {
		return Config{}, err
	}

	switch cfg.ImageStorage {
	case StorageLocal:
	case StorageS3:
		if cfg.S3.Bucket == "" {
			return Config{}, fmt.Errorf("S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return Config{}, fmt.Errorf("IMAGE_STORAGE must be %q or %q, got %q", StorageLocal, StorageS3, cfg.ImageStorage)
	}
	if !strings.HasPrefix(cfg.APIPrefix, "/") {
		cfg.APIPrefix = "/" + cfg.APIPrefix
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")

	return cfg, nil
}

// Addr はHTTPサーバーの待ち受けアドレスを返します。
func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, v)
	}
	return d, nil
}

func integer(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
