package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"places_backend/internal/feature/places/domain"
	"places_backend/internal/feature/places/domain/entity"
	"places_backend/internal/feature/places/usecase"
	"places_backend/internal/platform/externalapi/googlemaps/dto"
	"places_backend/internal/shared/ratelimiter"
)

// Geocoder はGoogle Maps Geocoding APIで住所を座標に変換するGeocoder実装です。
type Geocoder struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// GeocoderがGeocoderインターフェースを実装していることをコンパイル時に検証します。
var _ usecase.Geocoder = (*Geocoder)(nil)

// NewGeocoder は指定された設定とHTTPクライアントでGeocoderを生成します。
// limiterがnilの場合はレート制限を行いません。
func NewGeocoder(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *Geocoder {
	return &Geocoder{cfg: cfg, client: client, limiter: limiter}
}

// Geocode は住所を解決し、最初の候補の座標を返します。
// 住所が見つからない場合はdomain.ErrAddressNotFound、
// プロバイダー側の失敗はdomain.ErrGeocodingUnavailableを返します。
func (g *Geocoder) Geocode(ctx context.Context, address string) (entity.Location, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return entity.Location{}, fmt.Errorf("%w: %v", domain.ErrGeocodingUnavailable, err)
		}
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.cfg.APIKey)

	// URLを生成
	u := fmt.Sprintf("%s/maps/api/geocode/json?%s", g.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Location{}, fmt.Errorf("%w: %v", domain.ErrGeocodingUnavailable, err)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return entity.Location{}, fmt.Errorf("%w: %v", domain.ErrGeocodingUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.Location{}, fmt.Errorf("%w: geocode http %d", domain.ErrGeocodingUnavailable, res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.GeocodeResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Location{}, fmt.Errorf("%w: decode: %v", domain.ErrGeocodingUnavailable, err)
	}

	switch body.Status {
	case "OK":
		if len(body.Results) == 0 {
			return entity.Location{}, domain.ErrAddressNotFound
		}
		loc := body.Results[0].Geometry.Location
		return entity.Location{Lat: loc.Lat, Lng: loc.Lng}, nil
	case "ZERO_RESULTS", "INVALID_REQUEST":
		return entity.Location{}, fmt.Errorf("%w: %s", domain.ErrAddressNotFound, body.Status)
	default:
		// OVER_QUERY_LIMIT, REQUEST_DENIED, UNKNOWN_ERROR など
		slog.Error("geocoding provider returned an error", "status", body.Status, "message", body.ErrorMessage)
		return entity.Location{}, fmt.Errorf("%w: %s %s", domain.ErrGeocodingUnavailable, body.Status, body.ErrorMessage)
	}
}
