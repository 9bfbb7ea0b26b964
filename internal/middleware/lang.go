package middleware

import (
	"strings"

	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// TransKey gin.Context 中存储校验翻译器的键
const TransKey = "trans"

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// 语言取自 ?lang= 或 lang 请求头，zh-CN 形式会先按完整名称再按主语言查找翻译器
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		trans, found := uni.GetTranslator(lang)
		if !found {
			primary, _, _ := strings.Cut(lang, "_")
			trans, found = uni.GetTranslator(primary)
		}
		if !found {
			trans, _ = uni.GetTranslator("en")
		}
		c.Set(TransKey, trans)

		if lang != "" {
			code.SetGlobalDefaultLang(lang)
		}

		c.Next()
	}
}

// GetTranslator 从 gin.Context 获取翻译器，未设置时返回 nil
func GetTranslator(c *gin.Context) ut.Translator {
	if v, ok := c.Get(TransKey); ok {
		if t, ok := v.(ut.Translator); ok {
			return t
		}
	}
	return nil
}
