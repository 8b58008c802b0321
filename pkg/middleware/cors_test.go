package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newCORSRouter はCORSミドルウェアと /test ハンドラーを持つルーターを生成する。
// handlerCalledにはハンドラーが呼ばれたかどうかが記録される。
func newCORSRouter(origins []string, handlerCalled *bool) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	router.Any("/test", func(c *gin.Context) {
		*handlerCalled = true
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// TestCORS はCORSミドルウェアを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("オリジン未指定の場合は全オリジンが許可されること", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter(nil, &called)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.Header.Set("Origin", "https://anywhere.example.org")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
		}
		if !called {
			t.Error("ハンドラーが呼ばれるべき")
		}
	})

	t.Run("オリジン一覧に*が含まれる場合は全オリジンが許可されること", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"https://app.example.org", "*"}, &called)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://other.example.org")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
		}
	})

	t.Run("許可されたオリジンからのリクエストにCORSヘッダーが設定されること", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"http://localhost:3000", "https://app.example.org"}, &called)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://app.example.org")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.org" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "https://app.example.org")
		}
		if !strings.Contains(strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), strings.ToLower(HeaderRequestID)) {
			t.Errorf("Access-Control-Expose-Headers = %q, want to contain %q",
				w.Header().Get("Access-Control-Expose-Headers"), HeaderRequestID)
		}
	})

	t.Run("許可されていないオリジンからのリクエストが403で中断されること", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"http://localhost:3000"}, &called)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty string", got)
		}
		if called {
			t.Error("ハンドラーが呼ばれるべきではない")
		}
	})

	t.Run("Originヘッダーが無いリクエストはそのまま通過すること", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"http://localhost:3000"}, &called)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty string", got)
		}
		if !called {
			t.Error("ハンドラーが呼ばれるべき")
		}
	})

	t.Run("プリフライトで204が返りトークンヘッダーが許可されハンドラーが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"http://localhost:3000"}, &called)

		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "x-recaptcha-token")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if called {
			t.Error("プリフライトでハンドラーが呼ばれるべきではない")
		}
		if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(strings.ToLower(got), strings.ToLower(HeaderRecaptchaToken)) {
			t.Errorf("Access-Control-Allow-Headers = %q, want to contain %q", got, HeaderRecaptchaToken)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
			t.Errorf("Access-Control-Allow-Methods = %q, want to contain %q", got, http.MethodPost)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "86400" {
			t.Errorf("Access-Control-Max-Age = %q, want %q", got, "86400")
		}
	})

	t.Run("Originヘッダーが無いOPTIONSも204で終了しハンドラーが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		var called bool
		router := newCORSRouter([]string{"http://localhost:3000"}, &called)

		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if called {
			t.Error("OPTIONSでハンドラーが呼ばれるべきではない")
		}
	})
}

// TestAllowsAll はallowsAll関数を検証する。
func TestAllowsAll(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		origins []string
		want    bool
	}{
		{name: "nil", origins: nil, want: true},
		{name: "空スライス", origins: []string{}, want: true},
		{name: "ワイルドカード", origins: []string{"*"}, want: true},
		{name: "具体的なオリジンのみ", origins: []string{"http://localhost:3000"}, want: false},
	}
	for _, tc := range cases {
		if got := allowsAll(tc.origins); got != tc.want {
			t.Errorf("%s: allowsAll() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
