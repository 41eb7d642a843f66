// Package upload はmultipartで受け取った画像ファイルの読み込みと検査を行います。
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"

	"places_backend/internal/platform/apperr"
	"places_backend/internal/platform/validation"
)

// MaxImageSize はアップロード画像の最大サイズ（5MiB）です。
const MaxImageSize = 5 << 20

// allowedTypes は受け付けるMIMEタイプと保存時の拡張子の対応です。
var allowedTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// Image は検査済みの画像データです。
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ReadImage はフォームファイルを読み込み、サイズと実際の内容からMIMEタイプを検査します。
// 拒否された場合はfieldに対するValidationErrorを返します。
func ReadImage(fh *multipart.FileHeader, field string) (*Image, error) {
	if fh == nil {
		return nil, invalid(field, "required")
	}
	if fh.Size > MaxImageSize {
		return nil, invalid(field, "max_size")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close uploaded file", "error", err)
		}
	}()

	// ヘッダーのサイズを信用せず、上限+1バイトまで読む
	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, invalid(field, "max_size")
	}
	if len(data) == 0 {
		return nil, invalid(field, "required")
	}

	mt := mimetype.Detect(data)
	for contentType, ext := range allowedTypes {
		if mt.Is(contentType) {
			return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
		}
	}
	slog.Warn("rejected upload with unsupported type", "detected", mt.String(), "declared", fh.Header.Get("Content-Type"))
	return nil, invalid(field, "mime")
}

func invalid(field, rule string) error {
	return apperr.Validation(validation.InvalidInputsMessage, apperr.FieldViolation{Field: field, Rule: rule})
}
