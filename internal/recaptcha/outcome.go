package recaptcha

import "github.com/sirupsen/logrus"

// Outcome はreCAPTCHA検証APIの応答。1リクエストの判定にのみ使い、保持しない。
type Outcome struct {
	// Success はトークンが有効だったかどうか。
	Success bool `json:"success"`
	// Score は0.0〜1.0のスコア。1.0に近いほど人間らしい。
	Score float64 `json:"score"`
	// Action はトークン発行時に指定されたアクション名。
	Action string `json:"action"`
	// ChallengeTS はチャレンジが実施された時刻（ISO 8601）。
	ChallengeTS string `json:"challenge_ts"`
	// Hostname はトークンが発行されたサイトのホスト名。
	Hostname string `json:"hostname"`
	// ErrorCodes は検証失敗時のエラーコード一覧。
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Fields は応答の全項目をログ用のフィールドとして返す。
func (o *Outcome) Fields() logrus.Fields {
	return logrus.Fields{
		"success":      o.Success,
		"score":        o.Score,
		"action":       o.Action,
		"challenge_ts": o.ChallengeTS,
		"hostname":     o.Hostname,
		"error_codes":  o.ErrorCodes,
	}
}
