package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/recaptcha-gateway/pkg/middleware"
	"github.com/sirupsen/logrus"
)

// headerUpstreamAPIKey は転送先チャットAPIの認証キーを送るヘッダー名。
const headerUpstreamAPIKey = "X-Api-Key"

// forwardContextKey はリクエストのコンテキストに forwardState を格納するキー。
type forwardContextKey struct{}

// forwardState は転送1回分の、ゲートウェイ側の状態。
type forwardState struct {
	// log はリクエスト単位のロガー。
	log logrus.FieldLogger
	// header はゲートウェイが既に設定したレスポンスヘッダー。
	header http.Header
}

// forwardStateFrom はコンテキストから forwardState を取り出す。
func forwardStateFrom(ctx context.Context) (forwardState, bool) {
	st, ok := ctx.Value(forwardContextKey{}).(forwardState)
	return st, ok
}

// newUpstreamProxy は target へ転送するリバースプロキシを生成する。
// apiKeyが空でなければ x-api-key ヘッダーを付与する。それ以外のヘッダーとボディは変更しない。
// 受信したX-Forwarded-*ヘッダーは転送しない。タイムアウトやリトライは設定しない。
func newUpstreamProxy(target *url.URL, apiKey string, logger logrus.FieldLogger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			// Hostヘッダーも転送先に合わせる
			r.SetURL(target)
			if apiKey != "" {
				r.Out.Header.Set(headerUpstreamAPIKey, apiKey)
			}
		},
		// 転送先が返したヘッダーはゲートウェイが設定した同名のヘッダーより優先する
		ModifyResponse: func(resp *http.Response) error {
			st, ok := forwardStateFrom(resp.Request.Context())
			if !ok || st.header == nil {
				return nil
			}
			for k := range resp.Header {
				st.header.Del(k)
			}
			return nil
		},
		// ストリーミング応答を逐次クライアントに流す
		FlushInterval: -1,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			var log logrus.FieldLogger = logger
			if st, ok := forwardStateFrom(r.Context()); ok && st.log != nil {
				log = st.log
			}
			if errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("転送中にクライアントが切断しました")
			} else {
				log.WithError(err).WithField("upstream", target.Host).Error("転送先との通信に失敗しました")
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"bad_gateway"}`))
		},
	}
}

// handleForward は検証済みのリクエストを転送先に送るハンドラーを返す。
func (s *Server) handleForward() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), forwardContextKey{}, forwardState{
			log:    middleware.GetLogger(c),
			header: c.Writer.Header(),
		})
		s.proxy.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	}
}
