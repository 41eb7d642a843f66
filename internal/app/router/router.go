// Package router はginエンジンとルート定義、ミドルウェアの順序を構成します。
package router

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"places_backend/internal/app/di"
	"places_backend/internal/platform/http/handler"
	"places_backend/internal/platform/http/middleware"
	jwtmw "places_backend/internal/platform/jwt"
)

// Options はルーティングの設定です。
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
}

// NewRouter はミドルウェアパイプラインとルートを構成したginエンジンを返します。
// 順序: リクエストログ → リカバリー → CORS → エラー境界 → （保護ルートのみ）認可ゲート → ハンドラー
func NewRouter(c *di.Container, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	r.Use(middleware.ErrorHandler())

	// 認証不要
	// 導通確認用
	health := handler.Health(sqlPinger(c))
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	// ローカル保存した画像の静的配信
	if c.LocalImageDir != "" {
		dir := filepath.ToSlash(filepath.Clean(c.LocalImageDir))
		r.Static("/"+strings.TrimPrefix(dir, "/"), c.LocalImageDir)
	}

	api := r.Group(opts.APIPrefix)

	users := api.Group("/users")
	{
		users.GET("", c.Auth.List)
		users.POST("/signup", c.Auth.Signup)
		users.POST("/login", c.Auth.Login)
	}

	places := api.Group("/places")
	{
		places.GET("/:id", c.Places.GetByID)
		places.GET("/user/:uid", c.Places.GetByUser)

		// 認証必須のルート
		// → リクエストヘッダーに Bearer トークンが必要になる
		protected := places.Group("", jwtmw.AuthRequired(c.Tokens))
		protected.POST("", c.Places.Create)
		protected.PATCH("/:id", c.Places.Update)
		protected.DELETE("/:id", c.Places.Delete)
	}

	r.NoRoute(middleware.NotFound)

	return r
}

// corsConfig はブラウザのSPAから呼び出せるようにCORSを設定します。"*"は全オリジン許可です。
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func sqlPinger(c *di.Container) handler.Pinger {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		slog.Warn("health check runs without store ping", "error", err)
		return nil
	}
	return sqlDB
}
