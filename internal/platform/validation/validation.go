// Package validation はgin/validator.v10によるリクエスト検証を行い、
// 違反をapperr.FieldViolationの一覧に変換します。
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"places_backend/internal/platform/apperr"
)

// InvalidInputsMessage は検証エラー時にクライアントへ返す文言です。
const InvalidInputsMessage = "Invalid inputs passed, please check your data."

var (
	registerOnce sync.Once
	emailCheck   = validator.New()
)

// Register はginのバリデーターにフィールド名解決とカスタムルールを登録します。
// 複数回呼び出しても一度だけ実行されます。
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// 違反フィールド名は構造体名ではなくform/jsonタグ名で返す
		v.RegisterTagNameFunc(tagName)
		_ = v.RegisterValidation("notemail", notEmail)
	})
}

// BindJSON はJSONボディをreqにバインドし、失敗時はValidationErrorを返します。
func BindJSON(c *gin.Context, req any) error {
	Register()
	if err := c.ShouldBindJSON(req); err != nil {
		return Translate(err)
	}
	return nil
}

// BindMultipart はmultipart/formボディをreqにバインドし、失敗時はValidationErrorを返します。
func BindMultipart(c *gin.Context, req any) error {
	Register()
	if err := c.ShouldBindWith(req, binding.FormMultipart); err != nil {
		return Translate(err)
	}
	return nil
}

// Translate はバインド/検証エラーをフィールド違反付きのapperr.Errorに変換します。
// validator以外のエラー（JSON構文エラー等）はフィールドなしの検証エラーになります。
func Translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &apperr.Error{Kind: apperr.KindValidation, Message: InvalidInputsMessage, Err: err}
	}

	fields := make([]apperr.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldViolation{Field: fe.Field(), Rule: fe.Tag()})
	}
	return &apperr.Error{Kind: apperr.KindValidation, Message: InvalidInputsMessage, Fields: fields, Err: err}
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// notEmail は値がメールアドレスの形式でないことを要求します。
// 表示名にメールアドレスを使わせないためのルールです。
func notEmail(fl validator.FieldLevel) bool {
	return emailCheck.Var(fl.Field().String(), "email") != nil
}
