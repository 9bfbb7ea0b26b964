// Package validator plugs validator/v10 into gin binding and translates its errors
// Package validator 将 validator/v10 接入 gin 参数绑定并翻译校验错误
package validator

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator gin binding.StructValidator backed by validator/v10
// CustomValidator 基于 validator/v10 的 gin 校验器
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct validates structs, pointers to structs and slices of them
// ValidateStruct 校验结构体、结构体指针及其切片
func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		v.lazyinit()
		return v.validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// Engine returns the underlying *validator.Validate
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
		v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.validate.RegisterValidation("nodecolor", validateNodeColor)
	})
}

var (
	colorNameRe = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
	colorCheck  = validator.New()
)

// validateNodeColor accepts empty, any CSS hex/rgb/hsl color or a plain color keyword
// validateNodeColor 允许空值、CSS 十六进制/rgb/hsl 颜色或颜色关键字
func validateNodeColor(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || IsNodeColor(s)
}

// IsNodeColor reports whether s is a CSS color a node can carry
func IsNodeColor(s string) bool {
	if colorNameRe.MatchString(s) {
		return true
	}
	return colorCheck.Var(s, "iscolor") == nil
}

// NewTranslator registers en and zh translations on the validator engine
// NewTranslator 在校验引擎上注册中英文翻译
func NewTranslator(v *CustomValidator) (*ut.UniversalTranslator, error) {
	validate := v.Engine().(*validator.Validate)
	uni := ut.New(en.New(), en.New(), zh.New())

	enTran, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	zhTran, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	return uni, nil
}

// Translate renders validation errors through trans, other errors are returned verbatim
// Translate 使用翻译器输出校验错误，非校验错误原样返回
func Translate(err error, trans ut.Translator) []string {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || trans == nil {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Translate(trans))
	}
	return out
}
