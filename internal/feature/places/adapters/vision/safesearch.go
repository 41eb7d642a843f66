// Package vision はGoogle Cloud Vision APIのSafeSearch検出による画像検査を提供します。
package vision

import (
	"context"
	"fmt"
	"log/slog"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"places_backend/internal/feature/places/domain"
	"places_backend/internal/feature/places/usecase"
)

// annotateFunc はBatchAnnotateImagesの呼び出しです。テストで差し替えます。
type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// SafeSearchScreener はアダルト・暴力表現の可能性が高い画像を拒否します。
type SafeSearchScreener struct {
	annotate annotateFunc
	close    func() error
}

// SafeSearchScreenerがImageScreenerを実装していることをコンパイル時に検証します。
var _ usecase.ImageScreener = (*SafeSearchScreener)(nil)

// NewSafeSearchScreener はADCを使用してSafeSearchScreenerの新しいインスタンスを生成します。
func NewSafeSearchScreener(ctx context.Context) (*SafeSearchScreener, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &SafeSearchScreener{
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
		close: client.Close,
	}, nil
}

// Close はVision APIクライアントを解放します。
func (s *SafeSearchScreener) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Screen は画像をSafeSearchで判定し、不適切な場合はdomain.ErrImageRejectedを返します。
// API呼び出しに失敗した場合は画像を受け付けず、domain.ErrCreateFailedを返します。
func (s *SafeSearchScreener) Screen(ctx context.Context, imageData []byte) error {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
				},
			},
		},
	}

	resp, err := s.annotate(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: vision API request failed: %v", domain.ErrCreateFailed, err)
	}
	if len(resp.GetResponses()) == 0 {
		return fmt.Errorf("%w: vision API returned no response", domain.ErrCreateFailed)
	}

	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return fmt.Errorf("%w: vision API error: %s", domain.ErrCreateFailed, r.GetError().GetMessage())
	}

	ann := r.GetSafeSearchAnnotation()
	if likely(ann.GetAdult()) || likely(ann.GetViolence()) {
		slog.Warn("image rejected by safe search", "adult", ann.GetAdult().String(), "violence", ann.GetViolence().String())
		return domain.ErrImageRejected
	}
	return nil
}

func likely(l visionpb.Likelihood) bool {
	return l == visionpb.Likelihood_LIKELY || l == visionpb.Likelihood_VERY_LIKELY
}
