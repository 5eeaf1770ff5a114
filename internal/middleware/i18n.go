// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ContextKeyLang, negotiateLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// negotiateLanguage picks the first supported tag from a header such as
// "zh-TW,zh;q=0.9,en;q=0.8".
func negotiateLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}

		switch tag {
		case "zh-TW", "zh-Hant", "zh_TW", "zh-HK":
			tag = "zh_TW"
		default:
			tag = strings.ToLower(strings.SplitN(strings.ReplaceAll(tag, "_", "-"), "-", 2)[0])
		}

		if i18n.IsSupported(tag) {
			return tag
		}
	}
	return i18n.DefaultLanguage()
}
