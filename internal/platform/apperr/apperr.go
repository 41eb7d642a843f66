// Package apperr はアプリケーション全体で共有するエラー分類を提供します。
// すべての失敗はいずれかのKindに分類され、HTTP境界で一意のステータスコードに変換されます。
package apperr

import (
	"errors"
	"net/http"
)

// Kind はエラーの分類です。
type Kind int

const (
	// KindInternal は予期しないストア/インフラ障害です。
	KindInternal Kind = iota
	// KindValidation は入力値の検証エラーです。
	KindValidation
	// KindAuth は認証情報の欠落・不正・期限切れ、またはログイン失敗です。
	KindAuth
	// KindForbidden は認証済みだがリソースへの権限がない場合です。
	KindForbidden
	// KindNotFound はリソースが存在しない場合です。
	KindNotFound
	// KindConflict はメールアドレス重複などの競合です。
	KindConflict
	// KindGeocodeInput は住所が座標に解決できない場合です（呼び出し側の入力に起因）。
	KindGeocodeInput
	// KindGeocodeUpstream はジオコーディングプロバイダー側の障害です。
	KindGeocodeUpstream
	// KindConsistencyViolation はUser.placesとPlace.creatorの不整合を検出した場合です。
	KindConsistencyViolation
)

// String はログ出力用のKind名を返します。
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindGeocodeInput:
		return "geocode_input"
	case KindGeocodeUpstream:
		return "geocode_upstream"
	case KindConsistencyViolation:
		return "consistency_violation"
	default:
		return "internal"
	}
}

// Status はKindに対応するHTTPステータスコードを返します。
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindGeocodeInput:
		return http.StatusUnprocessableEntity
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindGeocodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FieldViolation は検証に失敗した1つのフィールドを表します。
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Error は分類済みのアプリケーションエラーです。
// Messageはクライアントに返してよい文言で、内部原因はErrに保持します。
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldViolation
	Err     error
}

// New は分類済みエラーを生成します。センチネルエラーの定義に使います。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap は内部原因を保持した分類済みエラーを生成します。
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation はフィールド違反の一覧を持つ検証エラーを生成します。
func Validation(message string, fields ...FieldViolation) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf はerrチェーン中の最初の*Errorの分類を返します。見つからなければKindInternalです。
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind はerrが指定の分類に属するかを判定します。
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
