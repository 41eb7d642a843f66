// Package dto はplacesフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"mime/multipart"

	"places_backend/internal/feature/places/domain/entity"
)

// CreatePlaceReq はPOST /placesのmultipartフォームです。
type CreatePlaceReq struct {
	Title       string                `form:"title" binding:"required"`
	Description string                `form:"description" binding:"required,min=5"`
	Address     string                `form:"address" binding:"required"`
	Image       *multipart.FileHeader `form:"image" binding:"required"`
}

// UpdatePlaceReq はPATCH /places/:idのJSONボディです。
type UpdatePlaceReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
}

// LocationRes は座標のJSON表現です。
type LocationRes struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceRes はPlaceのJSON表現です。
type PlaceRes struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Address     string      `json:"address"`
	Location    LocationRes `json:"location"`
	Creator     string      `json:"creator"`
}

// PlaceEnvelope は{"place": ...}形式のレスポンスです。
type PlaceEnvelope struct {
	Place PlaceRes `json:"place"`
}

// PlacesEnvelope は{"places": [...]}形式のレスポンスです。
type PlacesEnvelope struct {
	Places []PlaceRes `json:"places"`
}

// MessageRes は{"message": ...}形式のレスポンスです。
type MessageRes struct {
	Message string `json:"message"`
}

// ToPlaceRes はエンティティをレスポンス表現に変換します。
func ToPlaceRes(p *entity.Place) PlaceRes {
	return PlaceRes{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Address:     p.Address,
		Location:    LocationRes{Lat: p.Location.Lat, Lng: p.Location.Lng},
		Creator:     p.CreatorID,
	}
}
