// reCAPTCHA検証ゲートウェイのエントリポイント。
// チャットAPIの前段に立ち、reCAPTCHAトークンを検証してから転送する。
// 設定が不正な場合はすべての違反を出力して非ゼロで終了する。
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nao1215/recaptcha-gateway/internal/config"
	"github.com/nao1215/recaptcha-gateway/internal/gateway"
	"github.com/nao1215/recaptcha-gateway/internal/logging"
)

func main() {
	// .env が無ければ環境変数だけで起動する
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf(".envの読み込みに失敗: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.New(cfg.Env, os.Stdout)

	server, err := gateway.NewServer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("ゲートウェイの初期化に失敗しました")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.WithError(err).Fatal("ゲートウェイの実行に失敗しました")
	}
}
