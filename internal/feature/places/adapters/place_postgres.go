// Package adapters はplacesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"places_backend/internal/feature/places/domain"
	"places_backend/internal/feature/places/domain/entity"
	"places_backend/internal/feature/places/usecase"
	"places_backend/internal/platform/apperr"
)

// DefaultTxTimeout はトランザクション1回に許容する時間です。
const DefaultTxTimeout = 15 * time.Second

// placePostgres はPlaceRepositoryインターフェースのPostgreSQL実装です。
// GORMを使用してデータベース操作を行います。
type placePostgres struct {
	db        *gorm.DB
	txTimeout time.Duration
}

// placePostgresがPlaceRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PlaceRepository = (*placePostgres)(nil)

// NewPlacePostgres は指定されたgorm.DB接続でplacePostgresの新しいインスタンスを生成します。
// txTimeoutが0以下の場合はDefaultTxTimeoutを使用します。
func NewPlacePostgres(db *gorm.DB, txTimeout time.Duration) *placePostgres {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &placePostgres{db: db, txTimeout: txTimeout}
}

// FindByID はIDでPlaceを取得します。
func (r *placePostgres) FindByID(ctx context.Context, id string) (*entity.Place, error) {
	var m PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlaceNotFound
		}
		return nil, fmt.Errorf("find place: %w", err)
	}
	return m.toEntity(), nil
}

// FindByCreator はユーザーのplaces集合に含まれるPlaceを作成順に取得します。
// ユーザーが存在しない場合domain.ErrOwnerNotFoundを返します。
func (r *placePostgres) FindByCreator(ctx context.Context, userID string) ([]entity.Place, error) {
	db := r.db.WithContext(ctx)

	var owner ownerRow
	if err := db.Select("id").Where("id = ?", userID).Take(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("find owner: %w", err)
	}

	var models []PlaceModel
	if err := db.
		Joins("JOIN user_places ON user_places.place_id = places.id").
		Where("user_places.user_id = ?", userID).
		Order("places.created_at, places.id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find places by creator: %w", err)
	}

	places := make([]entity.Place, len(models))
	for i := range models {
		places[i] = *models[i].toEntity()
	}
	return places, nil
}

// UpdateDetails は作成者本人の場合に限りタイトルと説明を更新します。
// 所有者の確認と更新の間に削除されないよう、Place行をロックします。
func (r *placePostgres) UpdateDetails(ctx context.Context, id, callerID, title, description string) (*entity.Place, error) {
	var updated PlaceModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPlace(tx, id, &updated); err != nil {
			return err
		}
		if updated.CreatorID != callerID {
			return domain.ErrEditForbidden
		}

		updated.Title = title
		updated.Description = description
		return tx.Model(&updated).Select("title", "description", "updated_at").Updates(&updated).Error
	})
	if err != nil {
		return nil, classify(err, domain.ErrUpdateFailed)
	}
	return updated.toEntity(), nil
}

// lockPlace はPlace行をSELECT ... FOR UPDATEで読み込みます。
func lockPlace(tx *gorm.DB, id string, dst *PlaceModel) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrPlaceNotFound
	}
	return err
}

// lockOwner は所有者のusers行をロックします。同じ所有者への書き込みはここで直列化されます。
func lockOwner(tx *gorm.DB, userID string) error {
	var owner ownerRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", userID).Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrOwnerNotFound
	}
	return err
}

// classify は分類済みのエラーはそのまま返し、それ以外をfallbackでラップします。
func classify(err, fallback error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
