package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrorBodySize はStatusErrorに保持するレスポンスボディの上限バイト数。
const maxErrorBodySize = 64 << 10

// Client は外部API呼び出し用のHTTPクライアント。
// リトライは行わず、タイムアウトは呼び出し元のコンテキストに委ねる。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先のベースURL。
	baseURL string
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先のベースURL（例: "https://www.google.com/recaptcha/api/siteverify"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError は2xx以外のレスポンスを表すエラー。
type StatusError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Body はレスポンスボディ（先頭64KiBまで）。
	Body string
}

// Error はステータスコードとボディを含むメッセージを返す。
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, body=%s", e.StatusCode, e.Body)
}

// PostQuery はクエリパラメータのみを付けてボディなしのPOSTリクエストを送信する。
// レスポンスボディをresultにデシリアライズする。
func (c *Client) PostQuery(ctx context.Context, path string, query url.Values, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, query, result)
}

// doJSON はJSONレスポンスを返すHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("URLの解析に失敗: %w", redactURLError(err))
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", redactURLError(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// redactedURL はクエリ文字列とユーザー情報を除いたURLを返す。
func redactedURL(u *url.URL) string {
	cp := *u
	cp.User = nil
	cp.RawQuery = ""
	cp.ForceQuery = false
	return cp.String()
}

// redactURLError は *url.Error に含まれるURLからクエリ文字列を取り除く。
// net/httpの送信エラーはURL全体をメッセージに含むため、そのままではシークレットが漏れる。
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		return &url.Error{Op: urlErr.Op, URL: redactedURL(u), Err: urlErr.Err}
	}
	return &url.Error{Op: urlErr.Op, URL: "(redacted)", Err: urlErr.Err}
}
