package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// LocalStore はローカルディスクに画像を保存します。
// キーはディレクトリを含む相対パス（例: uploads/images/<uuid>.png）で、
// 同じパスで静的配信されることを想定しています。
type LocalStore struct {
	dir string
}

// NewLocalStore は保存先ディレクトリを作成し、LocalStoreを生成します。
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = DefaultPrefix
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %q: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir は保存先ディレクトリを返します。
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save は画像をディスクに書き込み、キーを返します。
func (s *LocalStore) Save(ctx context.Context, data []byte, contentType, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := newKey(filepath.ToSlash(s.dir), ext)
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return key, nil
}

// Delete はキーに対応するファイルを削除します。既に存在しない場合は成功扱いです。
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image %q: %w", key, err)
	}
	return nil
}

// path はキーのファイル名部分だけを使い、保存先ディレクトリ外を指さないようにします。
func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, path.Base(key))
}
