// Package storage はアップロード画像のBlobストレージ実装（ローカルディスク、S3）を提供します。
// 保存された画像は不透明なキーで参照されます。
package storage

import (
	"path"

	"github.com/google/uuid"
)

// DefaultPrefix は画像キーの既定プレフィックスです。
const DefaultPrefix = "uploads/images"

// newKey はprefix配下に衝突しないランダムなキーを生成します。
func newKey(prefix, ext string) string {
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(prefix, name)
}
