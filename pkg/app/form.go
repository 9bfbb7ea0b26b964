package app

import (
	"strings"

	"github.com/haierkeys/fast-roadmap-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
)

// ValidErrors translated binding errors
// ValidErrors 翻译后的参数校验错误
type ValidErrors []string

func (v ValidErrors) Error() string {
	return strings.Join(v, ",")
}

// ErrorsToString 返回错误列表
func (v ValidErrors) ErrorsToString() []string {
	return v
}

// BindAndValid binds the JSON body (and uri params) into v and validates it.
// Messages use the translator stored under "trans" by the lang middleware.
// BindAndValid 绑定请求体与路径参数并校验，错误消息使用 lang 中间件设置的翻译器
func BindAndValid(c *gin.Context, v any) (bool, ValidErrors) {
	if len(c.Params) > 0 {
		if err := c.ShouldBindUri(v); err != nil {
			return false, ValidErrors(validator.Translate(err, translator(c)))
		}
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindWith(v, binding.JSON); err != nil {
			return false, ValidErrors(validator.Translate(err, translator(c)))
		}
		return true, nil
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return false, ValidErrors(validator.Translate(err, translator(c)))
	}
	return true, nil
}

func translator(c *gin.Context) ut.Translator {
	if v, ok := c.Get("trans"); ok {
		if t, ok := v.(ut.Translator); ok {
			return t
		}
	}
	return nil
}
