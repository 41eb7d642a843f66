// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"places_backend/internal/feature/auth/domain"
	"places_backend/internal/feature/auth/domain/entity"
)

const (
	// DefaultBcryptCost はパスワードハッシュの既定コストです。
	DefaultBcryptCost = 12

	// imageCleanupTimeout は登録失敗時の画像削除に許容する時間です。
	imageCleanupTimeout = 30 * time.Second
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// List はすべてのユーザーを所有するPlaceのID付きで取得します。
	List(ctx context.Context) ([]entity.User, error)
}

// TokenIssuer は認証トークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// Issue は指定されたユーザーの署名済みトークンを生成します。
	Issue(userID, email string) (string, error)
}

// ImageStore はプロフィール画像のBlobストレージを抽象化します。
type ImageStore interface {
	Save(ctx context.Context, data []byte, contentType, ext string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageUpload は検査済みのアップロード画像です。
type ImageUpload struct {
	Data        []byte
	ContentType string
	Ext         string
}

// SignupInput は新規登録の入力です。
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    ImageUpload
}

// AuthResult は登録・ログイン成功時の結果です。
type AuthResult struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	tokens     TokenIssuer
	images     ImageStore
	bcryptCost int
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// bcryptCostが範囲外の場合はDefaultBcryptCostを使用します。
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, images ImageStore, bcryptCost int) *authUsecase {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = DefaultBcryptCost
	}
	return &authUsecase{
		users:      users,
		tokens:     tokens,
		images:     images,
		bcryptCost: bcryptCost,
	}
}

// NormalizeEmail は比較・保存用にメールアドレスを正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、トークンを発行します。
// ユーザーIDはここで採番し、登録前にトークンを発行します。
// メールアドレスは大文字小文字を区別せず一意です。
func (u *authUsecase) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)

	// 画像保存やハッシュ計算の前に重複を確認する
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("%w: lookup: %v", domain.ErrSignupFailed, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", domain.ErrSignupFailed, err)
	}

	// トークン発行に失敗した場合に何も残さないよう、画像保存と登録の前に発行する
	userID := uuid.NewString()
	token, err := u.tokens.Issue(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	key, err := u.images.Save(ctx, in.Image.Data, in.Image.ContentType, in.Image.Ext)
	if err != nil {
		return nil, fmt.Errorf("%w: save image: %v", domain.ErrSignupFailed, err)
	}

	user := &entity.User{
		ID:       userID,
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Image:    key,
		Places:   []string{},
	}
	if err := u.users.Create(ctx, user); err != nil {
		u.discardImage(ctx, key)
		// 同時登録で一意制約に違反した場合
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSignupFailed, err)
	}

	slog.Info("user signup successful", "user_id", user.ID)
	return &AuthResult{UserID: user.ID, Email: user.Email, Name: user.Name, Token: token}, nil
}

// Login はユーザーを認証し、成功時にトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	// メールアドレスでユーザーを検索
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// bcrypt.CompareHashAndPasswordが常に呼ばれることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // ダミーハッシュ
	if err == nil {
		passwordHash = user.Password
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、同じエラーを返す
	if err != nil || compareErr != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{UserID: user.ID, Email: user.Email, Name: user.Name, Token: token}, nil
}

// ListUsers はパスワードを除いたユーザー一覧を返します。
func (u *authUsecase) ListUsers(ctx context.Context) ([]entity.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchUsersFailed, err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// discardImage は登録に失敗したユーザーの画像をベストエフォートで削除します。
func (u *authUsecase) discardImage(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), imageCleanupTimeout)
	defer cancel()

	if err := u.images.Delete(ctx, key); err != nil {
		slog.Warn("failed to remove image of failed signup", "image", key, "error", err)
	}
}
