package adapters

import (
	"time"

	"places_backend/internal/feature/auth/domain/entity"
)

// UserModel はusersテーブルの行を表します。
type UserModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Password  string `gorm:"size:255;not null"`
	Image     string `gorm:"size:512;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName はテーブル名を返します。
func (UserModel) TableName() string { return "users" }

// UserPlaceModel はuser_placesテーブルの行で、User.placesの1要素です。
type UserPlaceModel struct {
	UserID  string `gorm:"primaryKey;size:36"`
	PlaceID string `gorm:"primaryKey;size:36;index"`
}

// TableName はテーブル名を返します。
func (UserPlaceModel) TableName() string { return "user_places" }

// Models はマイグレーション対象のモデル一覧を返します。
func Models() []any {
	return []any{&UserModel{}, &UserPlaceModel{}}
}

func (m *UserModel) toEntity(places []string) *entity.User {
	if places == nil {
		places = []string{}
	}
	return &entity.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Password:  m.Password,
		Image:     m.Image,
		Places:    places,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Image:    u.Image,
	}
}
