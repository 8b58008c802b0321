// Package recaptcha はreCAPTCHAトークンの検証とリクエスト通過可否の判定を提供する。
//
// Gate はトークン1件につき検証APIを1回だけ呼び出し、結果を
// Allow / Deny / Error の3種類の Decision として返す。HTTPへの応答は
// 呼び出し側（gatewayパッケージ）が Decision を元に組み立てる。
//
// スコア不足と検証失敗はどちらも verification_failed としてクライアントに返し、
// 両者の区別はサーバー側のログでのみ行う。
package recaptcha
