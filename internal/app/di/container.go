// Package di provides the Container that owns every process-wide resource:
// the store handle, the Redis client, the image store and the token service.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"places_backend/internal/app/config"
	authadapters "places_backend/internal/feature/auth/adapters"
	authhandler "places_backend/internal/feature/auth/transport/handler"
	authusecase "places_backend/internal/feature/auth/usecase"
	placesadapters "places_backend/internal/feature/places/adapters"
	"places_backend/internal/feature/places/adapters/vision"
	placeshandler "places_backend/internal/feature/places/transport/handler"
	placesusecase "places_backend/internal/feature/places/usecase"
	"places_backend/internal/platform/cache"
	"places_backend/internal/platform/db"
	"places_backend/internal/platform/externalapi/googlemaps"
	apphttp "places_backend/internal/platform/http"
	jwtmw "places_backend/internal/platform/jwt"
	appredis "places_backend/internal/platform/redis"
	"places_backend/internal/platform/storage"
	"places_backend/internal/shared/ratelimiter"
)

// Components are the collaborators a Container is assembled from.
// Build creates them from configuration; tests may supply their own.
type Components struct {
	DB         *gorm.DB
	Images     placesusecase.ImageStore
	Geocoder   placesusecase.Geocoder
	Screener   placesusecase.ImageScreener // optional
	Tokens     *jwtmw.Service
	BcryptCost int
	// LocalImageDir is set when images are stored on local disk and served statically.
	LocalImageDir string
}

// Container holds the wired handlers and owns teardown of the underlying resources.
type Container struct {
	DB            *gorm.DB
	Tokens        *jwtmw.Service
	Auth          *authhandler.AuthHandler
	Places        *placeshandler.PlacesHandler
	LocalImageDir string

	releases interface{ Wait() }
	closers  []func() error
}

// New wires repositories, usecases and handlers from the given components.
func New(c Components) *Container {
	users := authadapters.NewUserPostgres(c.DB)
	places := placesadapters.NewPlacePostgres(c.DB, placesadapters.DefaultTxTimeout)

	authUC := authusecase.NewAuthUsecase(users, c.Tokens, c.Images, c.BcryptCost)
	placesUC := placesusecase.NewPlacesUsecase(places, c.Geocoder, c.Images, c.Screener)

	return &Container{
		DB:            c.DB,
		Tokens:        c.Tokens,
		Auth:          authhandler.NewAuthHandler(authUC),
		Places:        placeshandler.NewPlacesHandler(placesUC),
		LocalImageDir: c.LocalImageDir,
		releases:      placesUC,
	}
}

// Build connects to the store and the optional services described by cfg and wires the Container.
// Redis is optional: when it is unreachable the service runs without the geocode cache.
func Build(ctx context.Context, cfg config.Config) (*Container, error) {
	var closers []func() error
	fail := func(err error) (*Container, error) {
		closeAll(closers)
		return nil, err
	}

	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.RunMigrations {
		models := append(authadapters.Models(), placesadapters.Models()...)
		if err := db.Migrate(gdb, models...); err != nil {
			return fail(err)
		}
		slog.Info("migrations applied")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if rdb, err = appredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable, running without geocode cache", "error", err)
			rdb = nil
		} else {
			closers = append(closers, rdb.Close)
		}
	}

	comps := Components{
		DB:         gdb,
		Tokens:     jwtmw.NewService(cfg.JWTKey, jwtmw.DefaultTTL),
		BcryptCost: cfg.BcryptCost,
	}

	switch cfg.ImageStorage {
	case config.StorageS3:
		s3Store, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return fail(err)
		}
		comps.Images = s3Store
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return fail(err)
		}
		comps.Images = local
		comps.LocalImageDir = local.Dir()
	}

	comps.Geocoder = newGeocoder(cfg, rdb)

	if cfg.ImageScreening {
		screener, err := vision.NewSafeSearchScreener(ctx)
		if err != nil {
			return fail(fmt.Errorf("image screening: %w", err))
		}
		comps.Screener = screener
		closers = append(closers, screener.Close)
	}

	c := New(comps)
	c.closers = closers
	return c, nil
}

// newGeocoder builds the provider client behind the rate limiter and, when Redis is available, the cache.
func newGeocoder(cfg config.Config, rdb *redis.Client) placesusecase.Geocoder {
	limiter := ratelimiter.NewRateLimiter(cfg.Geocoding.RateLimit, time.Second)
	client := apphttp.NewHTTPClient(cfg.Geocoding.Timeout, "")
	provider := googlemaps.NewGeocoder(cfg.Geocoding, client, limiter)
	if rdb == nil {
		return provider
	}
	return cache.NewCachingGeocoder(rdb, cfg.GeocodeCacheTTL, provider, "geocode")
}

// Close waits for pending image releases, then closes resources in reverse order of creation.
func (c *Container) Close() error {
	if c.releases != nil {
		c.releases.Wait()
	}
	return closeAll(c.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
