package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HeaderRecaptchaToken はクライアントがreCAPTCHAトークンを送るヘッダー名。
const HeaderRecaptchaToken = "X-Recaptcha-Token"

// CORS は指定されたオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// allowedOriginsが空、または "*" を含む場合はすべてのオリジンを許可する。
// OPTIONSリクエストはOriginヘッダーの有無に関わらずこのミドルウェアで204を返して終了し、
// 後段の検証には進まない。許可されていないオリジンからのリクエストは403で終了する。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", HeaderRecaptchaToken},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        24 * time.Hour,
	}

	if allowsAll(allowedOrigins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	handler := cors.New(cfg)
	return func(c *gin.Context) {
		handler(c)
		// Originの無いOPTIONSや同一オリジンのOPTIONSはcorsが素通しする
		if !c.IsAborted() && c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
		}
	}
}

// allowsAll は全オリジン許可として扱うかどうかを返す。
func allowsAll(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
