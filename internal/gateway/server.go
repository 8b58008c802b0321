package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/recaptcha-gateway/internal/config"
	"github.com/nao1215/recaptcha-gateway/internal/logging"
	"github.com/nao1215/recaptcha-gateway/internal/recaptcha"
	"github.com/nao1215/recaptcha-gateway/pkg/middleware"
	"github.com/sirupsen/logrus"
)

const (
	// chatPathPrefix は転送対象のパス。この配下のリクエストだけを転送する。
	chatPathPrefix = "/chat"
	// readHeaderTimeout はリクエストヘッダー読み込みのタイムアウト。
	readHeaderTimeout = 10 * time.Second
	// shutdownTimeout はグレースフルシャットダウンの待ち時間。
	shutdownTimeout = 15 * time.Second
)

// Server はreCAPTCHA検証ゲートウェイのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に読み込んだ設定。変更しない。
	cfg *config.Config
	// logger はサーバー全体で共有するロガー。
	logger *logrus.Logger
	// gate はreCAPTCHAトークンの検証ゲート。
	gate *recaptcha.Gate
	// proxy は転送先チャットAPIへのリバースプロキシ。
	proxy *httputil.ReverseProxy
}

// NewServer は新しいゲートウェイサーバーを生成する。
func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	target, err := url.Parse(cfg.UpstreamBaseURL)
	if err != nil {
		return nil, fmt.Errorf("転送先URLの解析に失敗: %w", err)
	}

	verifier := recaptcha.NewSiteVerifyClient(cfg.RecaptchaVerifyURL)

	s := &Server{
		router: gin.New(),
		cfg:    cfg,
		logger: logger,
		gate:   recaptcha.NewGate(verifier, cfg.RecaptchaSecret, cfg.ScoreThreshold),
		proxy:  newUpstreamProxy(target, cfg.UpstreamAPIKey, logger),
	}
	s.setupRoutes()

	return s, nil
}

// Handler はサーバーのHTTPハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run は設定されたポートでHTTPサーバーを起動する。
// ctxがキャンセルされると処理中のリクエストを待ってから終了する。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("ポート %d のリッスンに失敗: %w", s.cfg.Port, err)
	}
	return s.serve(ctx, ln)
}

// serve はlnでHTTPサーバーを起動し、ctxのキャンセルでシャットダウンする。
func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.WithFields(logrus.Fields{
		"addr":      ln.Addr().String(),
		"env":       s.cfg.Env,
		"threshold": s.cfg.ScoreThreshold,
	}).Info("ゲートウェイを起動しました")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーが異常終了: %w", err)
	case <-ctx.Done():
		s.logger.Info("シャットダウンを開始します")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("シャットダウンに失敗: %w", err)
		}
		return nil
	}
}

// pipeline は全リクエストに適用する前段の処理を適用順に返す。
// Recovery は Logger の内側に置き、パニックしたリクエストもアクセスログに出力する。
func (s *Server) pipeline() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.RequestID(),
		middleware.Logger(s.logger),
		middleware.Recovery(s.logger),
		middleware.SecurityHeaders(),
		middleware.CORS(s.cfg.CORSOrigins),
	}
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.Use(s.pipeline()...)

	// ヘルスチェック（検証不要）
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": logging.ServiceName})
	})

	gate := s.verifyRecaptcha()

	chat := s.router.Group(chatPathPrefix, gate)
	{
		chat.Any("", s.handleForward())
		chat.Any("/*path", s.handleForward())
	}

	// 転送対象外のパスも検証を通してから404を返す
	s.router.NoRoute(gate, s.handleNotFound())
}

// verifyRecaptcha はreCAPTCHAトークンを検証するハンドラーを返す。
// 拒否時は {"error": "<コード>"} だけを返し、スコアや閾値は含めない。
func (s *Server) verifyRecaptcha() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(middleware.HeaderRecaptchaToken)
		decision := s.gate.Check(c.Request.Context(), middleware.GetLogger(c), token)
		if !decision.Allowed() {
			c.AbortWithStatusJSON(decision.Status, gin.H{"error": string(decision.Reason)})
			return
		}
		c.Next()
	}
}

// handleNotFound は転送対象外のパスに404を返すハンドラーを返す。
func (s *Server) handleNotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	}
}
