package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 実行モード。
const (
	// EnvDevelopment は開発モード。ログを人間向けのテキスト形式で出力する。
	EnvDevelopment = "development"
	// EnvProduction は本番モード。ログをJSON形式で出力する。
	EnvProduction = "production"
)

// 環境変数名。
const (
	keyEnv                = "APP_ENV"
	keyPort               = "PORT"
	keyRecaptchaSecret    = "RECAPTCHA_SECRET_KEY"
	keyScoreThreshold     = "RECAPTCHA_SCORE_THRESHOLD"
	keyRecaptchaVerifyURL = "RECAPTCHA_VERIFY_URL"
	keyUpstreamBaseURL    = "RAGPI_BASE_URL"
	keyUpstreamAPIKey     = "RAGPI_API_KEY"
	keyCORSOrigins        = "CORS_ORIGINS"
)

// デフォルト値。
const (
	defaultEnv                = EnvProduction
	defaultPort               = 8080
	defaultScoreThreshold     = 0.5
	defaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
)

// Config はゲートウェイの設定。Load で生成した後は変更しない。
type Config struct {
	// Env は実行モード（development または production）。
	Env string `env:"APP_ENV" validate:"oneof=development production"`
	// Port はHTTPサーバーのリッスンポート。
	Port int `env:"PORT" validate:"gte=1,lte=65535"`
	// RecaptchaSecret はreCAPTCHA検証APIに渡すシークレットキー。ログに出力してはならない。
	RecaptchaSecret string `env:"RECAPTCHA_SECRET_KEY" validate:"required"`
	// ScoreThreshold はリクエストを許可する最小スコア。
	ScoreThreshold float64 `env:"RECAPTCHA_SCORE_THRESHOLD" validate:"gte=0,lte=1"`
	// RecaptchaVerifyURL はreCAPTCHA検証APIのURL。
	RecaptchaVerifyURL string `env:"RECAPTCHA_VERIFY_URL" validate:"required,http_url"`
	// UpstreamBaseURL は転送先チャットAPIのベースURL。
	UpstreamBaseURL string `env:"RAGPI_BASE_URL" validate:"required,http_url"`
	// UpstreamAPIKey は転送時に x-api-key ヘッダーとして付与するキー。空なら付与しない。
	UpstreamAPIKey string `env:"RAGPI_API_KEY"`
	// CORSOrigins はクロスオリジンを許可するオリジンの一覧。空なら全オリジンを許可する。
	CORSOrigins []string `env:"CORS_ORIGINS" validate:"omitempty,dive,http_url|eq=*"`
}

// IsDevelopment は開発モードかどうかを返す。
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Violation は1件の設定違反。
type Violation struct {
	// Field は違反した環境変数名。
	Field string
	// Message は違反内容。
	Message string
}

// ConfigurationError は設定の検証で見つかったすべての違反を保持するエラー。
type ConfigurationError struct {
	// Violations は検出順の違反一覧。
	Violations []Violation
}

// Error は違反を1行ずつ列挙したメッセージを返す。
func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("設定が不正です:")
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.Field)
		b.WriteString(": ")
		b.WriteString(v.Message)
	}
	return b.String()
}

// Has は指定した環境変数の違反が含まれているかを返す。
func (e *ConfigurationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func (e *ConfigurationError) add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// validate は設定スキーマの検証器。validator.Validate は並行利用できる。
var validate = newValidator()

// newValidator はフィールド名として環境変数名を報告する検証器を生成する。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load はプロセスの環境変数から設定を読み込む。
// 何度呼び出しても環境変数を読む以外の副作用はない。
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom は lookup から設定を読み込み、検証する。
// 違反がある場合はすべてを列挙した *ConfigurationError を返す。
func LoadFrom(lookup func(key string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfgErr := &ConfigurationError{}
	cfg := &Config{
		Env:                defaultEnv,
		Port:               defaultPort,
		RecaptchaSecret:    get(keyRecaptchaSecret),
		ScoreThreshold:     defaultScoreThreshold,
		RecaptchaVerifyURL: defaultRecaptchaVerifyURL,
		UpstreamBaseURL:    get(keyUpstreamBaseURL),
		UpstreamAPIKey:     get(keyUpstreamAPIKey),
		CORSOrigins:        splitOrigins(get(keyCORSOrigins)),
	}

	if v := get(keyEnv); v != "" {
		cfg.Env = v
	}
	if v := get(keyRecaptchaVerifyURL); v != "" {
		cfg.RecaptchaVerifyURL = v
	}
	if v := get(keyPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			cfgErr.add(keyPort, "数値ではありません: "+strconv.Quote(v))
		} else {
			cfg.Port = port
		}
	}
	if v := get(keyScoreThreshold); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			cfgErr.add(keyScoreThreshold, "数値ではありません: "+strconv.Quote(v))
		} else {
			cfg.ScoreThreshold = threshold
		}
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			// パースに失敗した項目は二重に報告しない
			if cfgErr.Has(fe.Field()) {
				continue
			}
			cfgErr.add(fe.Field(), violationMessage(fe))
		}
	}

	if len(cfgErr.Violations) > 0 {
		return nil, cfgErr
	}
	return cfg, nil
}

// violationMessage は検証タグごとの違反メッセージを返す。
func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です"
	case "gte":
		return "最小値 " + fe.Param() + " 以上である必要があります"
	case "lte":
		return "最大値 " + fe.Param() + " 以下である必要があります"
	case "oneof":
		return "次のいずれかである必要があります: " + fe.Param()
	case "http_url":
		return "http または https の絶対URLである必要があります"
	case "http_url|eq=*":
		return "http または https のオリジン、または * である必要があります: " + strconv.Quote(fmt.Sprint(fe.Value()))
	default:
		return "値が不正です（" + fe.Tag() + "）"
	}
}

// splitOrigins はカンマ区切りのオリジン一覧を分割する。空要素は除外する。
// ブラウザが送るOriginと比較できるよう、小文字にして末尾の "/" を取り除く。
func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
