package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"places_backend/internal/feature/places/domain"
	"places_backend/internal/feature/places/domain/entity"
)

// CreateWithOwner はPlaceの保存と所有者のplacesへの追加を一つのトランザクションで行います。
// コミットの成否をストアだけが決めるよう、呼び出し元のキャンセルから切り離して実行します。
func (r *placePostgres) CreateWithOwner(ctx context.Context, place *entity.Place) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.txTimeout)
	defer cancel()

	m := fromEntity(place)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, place.CreatorID); err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("insert place: %w", err)
		}
		if err := tx.Create(&membershipRow{UserID: place.CreatorID, PlaceID: m.ID}).Error; err != nil {
			return fmt.Errorf("append to owner places: %w", err)
		}
		return nil
	})
	if err != nil {
		return classify(err, domain.ErrCreateFailed)
	}

	place.CreatedAt = m.CreatedAt
	place.UpdatedAt = m.UpdatedAt
	return nil
}

// DeleteWithOwner は作成者本人の場合に限り、Placeの削除と所有者のplacesからの除去を
// 一つのトランザクションで行います。同じPlaceへの同時削除は一方だけが成功し、
// もう一方はdomain.ErrPlaceNotFoundになります。
func (r *placePostgres) DeleteWithOwner(ctx context.Context, id, callerID string) (*entity.Place, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.txTimeout)
	defer cancel()

	var deleted PlaceModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPlace(tx, id, &deleted); err != nil {
			return err
		}
		if deleted.CreatorID != callerID {
			return domain.ErrDeleteForbidden
		}

		if err := lockOwner(tx, deleted.CreatorID); err != nil {
			if errors.Is(err, domain.ErrOwnerNotFound) {
				return violation("owner record missing", id, deleted.CreatorID)
			}
			return err
		}

		res := tx.Where("id = ?", id).Delete(&PlaceModel{})
		if res.Error != nil {
			return fmt.Errorf("delete place: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrPlaceNotFound
		}

		res = tx.Where("user_id = ? AND place_id = ?", deleted.CreatorID, id).Delete(&membershipRow{})
		if res.Error != nil {
			return fmt.Errorf("remove from owner places: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return violation("owner does not reference place", id, deleted.CreatorID)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, domain.ErrDeleteFailed)
	}
	return deleted.toEntity(), nil
}

// violation はUser.placesとPlace.creatorの不整合を記録し、ロールバック用のエラーを返します。
func violation(reason, placeID, creatorID string) error {
	slog.Error("place ownership is inconsistent", "reason", reason, "place_id", placeID, "creator_id", creatorID)
	return fmt.Errorf("%w: %s", domain.ErrConsistencyViolation, reason)
}
