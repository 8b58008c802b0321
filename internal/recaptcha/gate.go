package recaptcha

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Gate はトークンを検証し、リクエストを通すかどうかを判定する。
// 内部状態を持たないため、複数のゴルーチンから同時に利用できる。
type Gate struct {
	// verifier は検証APIのクライアント。
	verifier Verifier
	// secret は検証APIに渡すシークレット。ログに出力しない。
	secret string
	// threshold は通過に必要な最小スコア。
	threshold float64
}

// NewGate は新しいGateを生成する。
func NewGate(verifier Verifier, secret string, threshold float64) *Gate {
	return &Gate{
		verifier:  verifier,
		secret:    secret,
		threshold: threshold,
	}
}

// Threshold は通過に必要な最小スコアを返す。
func (g *Gate) Threshold() float64 {
	return g.threshold
}

// Check はトークンを検証して判定を返す。拒否の詳細は log に出力する。
// トークンは存在だけを確認し、形式の検証は検証APIに任せる。
func (g *Gate) Check(ctx context.Context, log logrus.FieldLogger, token string) Decision {
	if token == "" {
		return deny(ReasonTokenMissing, http.StatusBadRequest)
	}

	// 設定読み込み時に保証されているため通常は到達しない
	if g.secret == "" {
		log.Error("reCAPTCHAのシークレットキーが設定されていません")
		return fail(ReasonServerMisconfigured)
	}

	outcome, err := g.verifier.Verify(ctx, g.secret, token)
	if err != nil {
		log.WithError(err).Error("reCAPTCHAの検証中にエラーが発生しました")
		return fail(ReasonInternalError)
	}

	if !outcome.Success {
		log.WithFields(outcome.Fields()).Error("reCAPTCHAの検証に失敗しました")
		return deny(ReasonVerificationFailed, http.StatusForbidden)
	}

	if outcome.Score < g.threshold {
		log.WithFields(outcome.Fields()).
			WithField("threshold", g.threshold).
			Error("reCAPTCHAのスコアが閾値を下回りました")
		return deny(ReasonVerificationFailed, http.StatusForbidden)
	}

	return allow()
}
