package adapters

import (
	"time"

	"places_backend/internal/feature/places/domain/entity"
)

// PlaceModel はplacesテーブルの行を表します。
type PlaceModel struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Title       string  `gorm:"size:255;not null"`
	Description string  `gorm:"type:text;not null"`
	Address     string  `gorm:"size:512;not null"`
	Lat         float64 `gorm:"not null"`
	Lng         float64 `gorm:"not null"`
	Image       string  `gorm:"size:512;not null"`
	CreatorID   string  `gorm:"size:36;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName はテーブル名を返します。
func (PlaceModel) TableName() string { return "places" }

// ownerRow はusersテーブルのうち、所有者の存在確認とロックに必要な列だけを読みます。
// usersテーブル自体はauthフィーチャーが管理します。
type ownerRow struct {
	ID string `gorm:"primaryKey;size:36"`
}

func (ownerRow) TableName() string { return "users" }

// membershipRow はuser_placesテーブルの行で、User.placesの1要素です。
type membershipRow struct {
	UserID  string `gorm:"primaryKey;size:36"`
	PlaceID string `gorm:"primaryKey;size:36;index"`
}

func (membershipRow) TableName() string { return "user_places" }

// Models はマイグレーション対象のモデル一覧を返します。
func Models() []any {
	return []any{&PlaceModel{}}
}

func (m *PlaceModel) toEntity() *entity.Place {
	return &entity.Place{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Address:     m.Address,
		Location:    entity.Location{Lat: m.Lat, Lng: m.Lng},
		Image:       m.Image,
		CreatorID:   m.CreatorID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromEntity(p *entity.Place) *PlaceModel {
	return &PlaceModel{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Lat:         p.Location.Lat,
		Lng:         p.Location.Lng,
		Image:       p.Image,
		CreatorID:   p.CreatorID,
	}
}
