package recaptcha

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nao1215/recaptcha-gateway/pkg/httpclient"
)

// DefaultVerifyURL はGoogleのreCAPTCHA検証APIのURL。
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier はトークンを検証APIに問い合わせる。
type Verifier interface {
	// Verify はシークレットとトークンを送信し、検証結果を返す。
	// 送信失敗、2xx以外の応答、デコード失敗はエラーとして返す。
	Verify(ctx context.Context, secret, token string) (*Outcome, error)
}

// SiteVerifyClient はsiteverify APIを呼び出すVerifier。
type SiteVerifyClient struct {
	client *httpclient.Client
}

// NewSiteVerifyClient は verifyURL に問い合わせるクライアントを生成する。
func NewSiteVerifyClient(verifyURL string, opts ...httpclient.Option) *SiteVerifyClient {
	return &SiteVerifyClient{client: httpclient.New(verifyURL, opts...)}
}

// Verify はボディなしのPOSTでシークレットとトークンをクエリパラメータとして送信する。
// 1回だけ送信し、リトライはしない。
func (c *SiteVerifyClient) Verify(ctx context.Context, secret, token string) (*Outcome, error) {
	query := url.Values{
		"secret":   {secret},
		"response": {token},
	}

	var outcome Outcome
	if err := c.client.PostQuery(ctx, "", query, &outcome); err != nil {
		return nil, fmt.Errorf("reCAPTCHA検証APIの呼び出しに失敗: %w", err)
	}
	return &outcome, nil
}
