// Package gateway はreCAPTCHA検証ゲートウェイのHTTPサーバーを提供する。
//
// 受け付けたリクエストは、パニックリカバリ → リクエストID → アクセスログ →
// セキュリティヘッダー → CORS → reCAPTCHA検証 → 転送 の順に処理される。
// 検証を通過した /chat 配下のリクエストは、メソッド・パス・ヘッダー・ボディを
// 変更せずに転送先チャットAPIへ送られ、レスポンスはそのままクライアントに返る。
package gateway
