// Package config は環境変数からゲートウェイの設定を読み込み、検証する。
//
// 設定はプロセス起動時に一度だけ読み込まれ、以降は不変の値として
// 検証ゲートや転送処理に明示的に渡される。必須項目の欠落や範囲外の値は
// 最初の1件だけでなく、すべての違反をまとめて ConfigurationError として返す。
package config
