// Package middleware はゲートウェイのHTTPパイプラインで使用する共通ミドルウェアを提供する。
//
// パニックリカバリ、リクエストID付与、構造化アクセスログ、
// セキュリティヘッダー、CORS設定を含む。いずれもリクエスト間で
// 可変状態を共有しないため、並行リクエストに対して安全に使用できる。
package middleware
