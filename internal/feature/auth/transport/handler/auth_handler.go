// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"places_backend/internal/feature/auth/domain/entity"
	"places_backend/internal/feature/auth/transport/http/dto"
	"places_backend/internal/feature/auth/usecase"
	"places_backend/internal/platform/upload"
	"places_backend/internal/platform/validation"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録し、トークンを発行します。
	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error)
	// Login はユーザーを認証し、成功時にトークンを発行します。
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	// ListUsers はパスワードを除いたユーザー一覧を返します。
	ListUsers(ctx context.Context) ([]entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// エラーはc.Errorで境界ミドルウェアに渡し、ここでは応答しません。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - multipartフォームをSignupReqにバインドし、画像を検査
// - 検証エラー・メール重複時は422
// - 成功時は201
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := validation.BindMultipart(c, &req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	img, err := upload.ReadImage(req.Image, "image")
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    usecase.ImageUpload{Data: img.Data, ContentType: img.ContentType, Ext: img.Ext},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, toAuthRes(res))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 未登録メールとパスワード不一致は同じ401応答になります。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := validation.BindJSON(c, &req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		_ = c.Error(err)
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	slog.Info("user login successful", "user_id", res.UserID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, toAuthRes(res))
}

// List はユーザー一覧APIエンドポイントを処理します。
func (h *AuthHandler) List(c *gin.Context) {
	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]dto.UserRes, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserRes(u))
	}
	c.JSON(http.StatusOK, dto.UsersRes{Users: out})
}

func toAuthRes(r *usecase.AuthResult) dto.AuthRes {
	return dto.AuthRes{UserID: r.UserID, Email: r.Email, UserName: r.Name, Token: r.Token}
}
