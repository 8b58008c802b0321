package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// contextKeyLogger はGinコンテキストにリクエスト単位のロガーを格納するキー。
const contextKeyLogger = "logger"

// Logger はリクエスト単位のロガーを用意し、完了時にアクセスログを1行出力するGinミドルウェアを返す。
// ステータスが500以上ならerror、400以上ならwarn、それ以外はinfoで出力する。
func Logger(base logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := base.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Set(contextKeyLogger, entry)

		c.Next()

		access := entry.WithFields(logrus.Fields{
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"bytes":      c.Writer.Size(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			access.Error("リクエスト完了")
		case status >= http.StatusBadRequest:
			access.Warn("リクエスト完了")
		default:
			access.Info("リクエスト完了")
		}
	}
}

// GetLogger はGinコンテキストからリクエスト単位のロガーを取得する。
// Loggerミドルウェアが適用されていない場合は標準ロガーを返す。
func GetLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(contextKeyLogger); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}
