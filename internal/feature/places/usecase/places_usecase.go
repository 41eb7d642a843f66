// Package usecase はplacesフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"places_backend/internal/feature/places/domain"
	"places_backend/internal/feature/places/domain/entity"
	"places_backend/internal/platform/apperr"
)

// imageReleaseTimeout は削除後の画像解放に許容する時間です。
const imageReleaseTimeout = 30 * time.Second

// PlaceRepository はPlaceの永続化と、User.placesとの整合性を保つ原子的な操作を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PlaceRepository interface {
	// FindByID はIDでPlaceを取得します。存在しない場合domain.ErrPlaceNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.Place, error)

	// FindByCreator はユーザーが所有するPlaceを取得します。
	// ユーザーが存在しない場合domain.ErrOwnerNotFoundを返します。
	FindByCreator(ctx context.Context, userID string) ([]entity.Place, error)

	// UpdateDetails は作成者本人の場合に限りタイトルと説明を更新します。
	UpdateDetails(ctx context.Context, id, callerID, title, description string) (*entity.Place, error)

	// CreateWithOwner はPlaceの保存と所有者のplacesへの追加を一つのトランザクションで行います。
	CreateWithOwner(ctx context.Context, place *entity.Place) error

	// DeleteWithOwner は作成者本人の場合に限り、Placeの削除と所有者のplacesからの除去を
	// 一つのトランザクションで行い、削除したPlaceを返します。
	DeleteWithOwner(ctx context.Context, id, callerID string) (*entity.Place, error)
}

// Geocoder は住所を座標に変換する外部サービスを抽象化します。
type Geocoder interface {
	Geocode(ctx context.Context, address string) (entity.Location, error)
}

// ImageStore はアップロード画像のBlobストレージを抽象化します。
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType, ext string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageScreener はアップロード画像の内容を検査します。不適切な画像はエラーを返します。
type ImageScreener interface {
	Screen(ctx context.Context, data []byte) error
}

// ImageUpload は検査済みのアップロード画像です。
type ImageUpload struct {
	Data        []byte
	ContentType string
	Ext         string
}

// CreatePlaceInput はPlace作成の入力です。
type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	Image       ImageUpload
	CreatorID   string
}

// placesUsecase はPlaceのライフサイクルを管理します。
type placesUsecase struct {
	places   PlaceRepository
	geocoder Geocoder
	images   ImageStore
	screener ImageScreener

	releases sync.WaitGroup
}

// NewPlacesUsecase はplacesUsecaseの新しいインスタンスを生成します。
// screenerがnilの場合、画像検査は行いません。
func NewPlacesUsecase(places PlaceRepository, geocoder Geocoder, images ImageStore, screener ImageScreener) *placesUsecase {
	return &placesUsecase{
		places:   places,
		geocoder: geocoder,
		images:   images,
		screener: screener,
	}
}

// GetByID はIDでPlaceを取得します。
func (u *placesUsecase) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	return u.places.FindByID(ctx, id)
}

// GetByUser はユーザーのPlace一覧を取得します。
// ユーザーが存在しない場合も、Placeを1件も持たない場合もdomain.ErrPlacesNotFoundを返します。
func (u *placesUsecase) GetByUser(ctx context.Context, userID string) ([]entity.Place, error) {
	places, err := u.places.FindByCreator(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrPlacesNotFound, err)
		}
		return nil, err
	}
	if len(places) == 0 {
		return nil, domain.ErrPlacesNotFound
	}
	return places, nil
}

// Create は住所を解決し、画像を保存してからPlaceを所有者と原子的に登録します。
// 登録に失敗した場合、保存済みの画像はベストエフォートで削除します。
func (u *placesUsecase) Create(ctx context.Context, in CreatePlaceInput) (*entity.Place, error) {
	// 副作用の前に住所を解決する
	loc, err := u.geocoder.Geocode(ctx, in.Address)
	if err != nil {
		return nil, classifyGeocodeError(err)
	}

	if u.screener != nil {
		if err := u.screener.Screen(ctx, in.Image.Data); err != nil {
			return nil, err
		}
	}

	key, err := u.images.Save(ctx, in.Image.Data, in.Image.ContentType, in.Image.Ext)
	if err != nil {
		return nil, fmt.Errorf("%w: save image: %v", domain.ErrCreateFailed, err)
	}

	place := &entity.Place{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location:    loc,
		Image:       key,
		CreatorID:   in.CreatorID,
	}
	if err := u.places.CreateWithOwner(ctx, place); err != nil {
		u.discardImage(ctx, key)
		return nil, err
	}

	slog.Info("place created", "place_id", place.ID, "creator_id", place.CreatorID)
	return place, nil
}

// Update はタイトルと説明を更新します。住所・画像・作成者は変更できません。
func (u *placesUsecase) Update(ctx context.Context, id, callerID, title, description string) (*entity.Place, error) {
	place, err := u.places.UpdateDetails(ctx, id, callerID, title, description)
	if err != nil {
		return nil, err
	}
	slog.Info("place updated", "place_id", id, "creator_id", callerID)
	return place, nil
}

// Delete はPlaceを所有者と原子的に削除し、コミット後に画像を非同期で解放します。
// 画像の解放失敗はログに記録するのみで、削除結果には影響しません。
func (u *placesUsecase) Delete(ctx context.Context, id, callerID string) error {
	deleted, err := u.places.DeleteWithOwner(ctx, id, callerID)
	if err != nil {
		return err
	}
	slog.Info("place deleted", "place_id", id, "creator_id", callerID)

	u.releases.Add(1)
	go func(key string) {
		defer u.releases.Done()
		u.discardImage(ctx, key)
	}(deleted.Image)
	return nil
}

// Wait は実行中の画像解放が終わるまで待機します。シャットダウン時に呼び出します。
func (u *placesUsecase) Wait() {
	u.releases.Wait()
}

// discardImage は画像をベストエフォートで削除します。
// リクエストのキャンセルに影響されないよう、独立したコンテキストで実行します。
func (u *placesUsecase) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), imageReleaseTimeout)
	defer cancel()

	if err := u.images.Delete(ctx, key); err != nil {
		slog.Warn("failed to release place image", "image", key, "error", err)
	}
}

// classifyGeocodeError は分類されていないジオコーディングのエラーをプロバイダー障害として扱います。
func classifyGeocodeError(err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindGeocodeInput, apperr.KindGeocodeUpstream:
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrGeocodingUnavailable, err)
	}
}
