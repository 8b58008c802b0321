package recaptcha

import "net/http"

// Kind は判定の種類。
type Kind int

const (
	// KindAllow はリクエストを次の段へ通す。
	KindAllow Kind = iota
	// KindDeny はクライアント起因でリクエストを拒否する。
	KindDeny
	// KindError はサーバー側の問題でリクエストを処理できない。
	KindError
)

// String は判定の種類を文字列で返す。
func (k Kind) String() string {
	switch k {
	case KindAllow:
		return "allow"
	case KindDeny:
		return "deny"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Reason はクライアントに返すエラーコード。
type Reason string

const (
	// ReasonTokenMissing はトークンヘッダーが無い場合のコード。
	ReasonTokenMissing Reason = "token_missing"
	// ReasonServerMisconfigured はシークレットが未設定の場合のコード。
	ReasonServerMisconfigured Reason = "server_misconfigured"
	// ReasonInternalError は検証APIの呼び出しに失敗した場合のコード。
	ReasonInternalError Reason = "internal_error"
	// ReasonVerificationFailed は検証失敗またはスコア不足の場合のコード。
	ReasonVerificationFailed Reason = "verification_failed"
)

// Decision は1リクエストに対するゲートの判定。
type Decision struct {
	// Kind は判定の種類。
	Kind Kind
	// Reason は拒否理由。Allowの場合は空。
	Reason Reason
	// Status は拒否時に返すHTTPステータスコード。Allowの場合は0。
	Status int
}

// Allowed はリクエストを通すかどうかを返す。
func (d Decision) Allowed() bool {
	return d.Kind == KindAllow
}

// allow はリクエストを通す判定を返す。
func allow() Decision {
	return Decision{Kind: KindAllow}
}

// deny はクライアント起因の拒否判定を返す。
func deny(reason Reason, status int) Decision {
	return Decision{Kind: KindDeny, Reason: reason, Status: status}
}

// fail はサーバー起因の拒否判定を返す。ステータスは常に500。
func fail(reason Reason) Decision {
	return Decision{Kind: KindError, Reason: reason, Status: http.StatusInternalServerError}
}
