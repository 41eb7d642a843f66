// Package handler はplacesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"places_backend/internal/feature/places/domain/entity"
	"places_backend/internal/feature/places/transport/http/dto"
	"places_backend/internal/feature/places/usecase"
	jwtmw "places_backend/internal/platform/jwt"
	"places_backend/internal/platform/upload"
	"places_backend/internal/platform/validation"
)

// PlacesUsecase はPlace操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PlacesUsecase interface {
	GetByID(ctx context.Context, id string) (*entity.Place, error)
	GetByUser(ctx context.Context, userID string) ([]entity.Place, error)
	Create(ctx context.Context, in usecase.CreatePlaceInput) (*entity.Place, error)
	Update(ctx context.Context, id, callerID, title, description string) (*entity.Place, error)
	Delete(ctx context.Context, id, callerID string) error
}

// PlacesHandler はPlaceのHTTPリクエストを処理します。
type PlacesHandler struct {
	uc PlacesUsecase
}

// NewPlacesHandler は指定されたusecaseでPlacesHandlerの新しいインスタンスを生成します。
func NewPlacesHandler(uc PlacesUsecase) *PlacesHandler {
	return &PlacesHandler{uc: uc}
}

// GetByID はIDでPlaceを返します。
//
// エンドポイント: GET /places/:id
func (h *PlacesHandler) GetByID(c *gin.Context) {
	place, err := h.uc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.PlaceEnvelope{Place: dto.ToPlaceRes(place)})
}

// GetByUser はユーザーのPlace一覧を返します。1件もない場合は404です。
//
// エンドポイント: GET /places/user/:uid
func (h *PlacesHandler) GetByUser(c *gin.Context) {
	places, err := h.uc.GetByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]dto.PlaceRes, 0, len(places))
	for i := range places {
		out = append(out, dto.ToPlaceRes(&places[i]))
	}
	c.JSON(http.StatusOK, dto.PlacesEnvelope{Places: out})
}

// Create は認証済みユーザーを作成者としてPlaceを登録します。
//
// エンドポイント: POST /places
// Content-Type: multipart/form-data
// フィールド: title, description, address, image（png/jpeg、最大5MB）
func (h *PlacesHandler) Create(c *gin.Context) {
	callerID, ok := jwtmw.UserID(c)
	if !ok {
		_ = c.Error(jwtmw.ErrMissingCredential)
		return
	}

	var req dto.CreatePlaceReq
	if err := validation.BindMultipart(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	img, err := upload.ReadImage(req.Image, "image")
	if err != nil {
		_ = c.Error(err)
		return
	}

	place, err := h.uc.Create(c.Request.Context(), usecase.CreatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Image:       usecase.ImageUpload{Data: img.Data, ContentType: img.ContentType, Ext: img.Ext},
		CreatorID:   callerID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto.PlaceEnvelope{Place: dto.ToPlaceRes(place)})
}

// Update は作成者本人によるタイトルと説明の更新を処理します。
//
// エンドポイント: PATCH /places/:id
func (h *PlacesHandler) Update(c *gin.Context) {
	callerID, ok := jwtmw.UserID(c)
	if !ok {
		_ = c.Error(jwtmw.ErrMissingCredential)
		return
	}

	var req dto.UpdatePlaceReq
	if err := validation.BindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	place, err := h.uc.Update(c.Request.Context(), c.Param("id"), callerID, req.Title, req.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.PlaceEnvelope{Place: dto.ToPlaceRes(place)})
}

// Delete は作成者本人によるPlaceの削除を処理します。
//
// エンドポイント: DELETE /places/:id
func (h *PlacesHandler) Delete(c *gin.Context) {
	callerID, ok := jwtmw.UserID(c)
	if !ok {
		_ = c.Error(jwtmw.ErrMissingCredential)
		return
	}

	if err := h.uc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Deleted place."})
}
