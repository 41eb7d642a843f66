// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"places_backend/internal/feature/auth/domain/entity"
	"places_backend/internal/feature/auth/usecase"
	"places_backend/internal/platform/db"
)

// userPostgres はUserRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用してデータベース操作を行います。
type userPostgres struct {
	db *gorm.DB
}

// userPostgresがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userPostgres)(nil)

// NewUserPostgres は指定されたgorm.DB接続でuserPostgresの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserPostgres(db *gorm.DB) *userPostgres {
	return &userPostgres{db: db}
}

// Create はユーザーをデータベースに追加し、u.IDとタイムスタンプを設定します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userPostgres) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	m := fromEntity(u)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = m.ID
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	if u.Places == nil {
		u.Places = []string{}
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userPostgres) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	places, err := r.placeIDs(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	return m.toEntity(places[m.ID]), nil
}

// List はすべてのユーザーを登録順に取得します。
func (r *userPostgres) List(ctx context.Context) ([]entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(models) == 0 {
		return []entity.User{}, nil
	}

	ids := make([]string, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	places, err := r.placeIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]entity.User, len(models))
	for i := range models {
		users[i] = *models[i].toEntity(places[models[i].ID])
	}
	return users, nil
}

// placeIDs はユーザーIDごとの所有Place IDを返します。
func (r *userPostgres) placeIDs(ctx context.Context, userIDs []string) (map[string][]string, error) {
	var rows []UserPlaceModel
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("place_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load user places: %w", err)
	}

	out := make(map[string][]string, len(userIDs))
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.PlaceID)
	}
	return out, nil
}
