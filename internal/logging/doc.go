// Package logging はゲートウェイ全体で共有する構造化ロガーを生成する。
//
// 本番モードではログ収集基盤向けにJSON形式、開発モードでは
// 人間が読みやすいテキスト形式で出力する。
package logging
