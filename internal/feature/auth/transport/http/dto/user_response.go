package dto

import "places_backend/internal/feature/auth/domain/entity"

// AuthRes は登録・ログイン成功時のレスポンスです。
type AuthRes struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Token    string `json:"token"`
}

// UserRes はパスワードを含まないユーザー表現です。
type UserRes struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Image  string   `json:"image"`
	Places []string `json:"places"`
}

// UsersRes はGET /usersのレスポンスです。
type UsersRes struct {
	Users []UserRes `json:"users"`
}

// ToUserRes はエンティティをレスポンス表現に変換します。
func ToUserRes(u entity.User) UserRes {
	places := u.Places
	if places == nil {
		places = []string{}
	}
	return UserRes{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, Places: places}
}
