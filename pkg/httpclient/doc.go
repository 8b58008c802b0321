// Package httpclient は外部APIを呼び出すためのJSONクライアントを提供する。
//
// reCAPTCHA検証APIのように、クエリパラメータで認証情報を渡す
// エンドポイントを想定している。送信エラーのメッセージには
// クエリ文字列を含めないため、シークレットがログに漏れることはない。
package httpclient
