package domain

import "time"

// AuthorizationCode is an issued, single-use authorization code. Only the
// fingerprint of the code is stored.
type AuthorizationCode struct {
	ID                  string
	CodeHash            string
	ClientID            string
	AccountID           string
	InteractionUID      string
	RedirectURI         string
	Scopes              []string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	AMR                 []string
	AuthTime            time.Time
	ExpiresAt           time.Time
	UsedAt              *time.Time
	CreatedAt           time.Time
}
