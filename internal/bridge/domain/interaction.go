package domain

import "time"

const (
	PromptLogin = "login"

	ReasonNoSession = "no_session"
)

// Interaction is one suspended authorization attempt waiting for the user
// to log in. It is created by the authorization endpoint and consumed at
// most once, either by a finished login or by an error result.
type Interaction struct {
	UID    string
	Prompt Prompt
	Params AuthorizationParams

	// Result is the last submission recorded for this interaction.
	Result *InteractionResult

	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// IsActive reports whether the interaction can still be resolved.
func (i Interaction) IsActive(now time.Time) bool {
	return i.ConsumedAt == nil && now.Before(i.ExpiresAt)
}

// Prompt describes what the user must resolve before the flow resumes.
type Prompt struct {
	Name    string         `json:"name"`
	Reasons []string       `json:"reasons"`
	Details map[string]any `json:"details,omitempty"`
}

// AuthorizationParams are the validated parameters of the originating
// authorization request.
type AuthorizationParams struct {
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
	ResponseType        string `json:"response_type"`
	Scope               string `json:"scope"`
	State               string `json:"state,omitempty"`
	Nonce               string `json:"nonce,omitempty"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
	Prompt              string `json:"prompt,omitempty"`
	MaxAge              string `json:"max_age,omitempty"`
	LoginHint           string `json:"login_hint,omitempty"`
}

// Scopes returns the granted scopes of the request.
func (p AuthorizationParams) Scopes() []string {
	return ParseScope(p.Scope)
}

// InteractionResult is what the login step hands back to the engine. Either
// Login or Error is set.
type InteractionResult struct {
	Login            *LoginResult `json:"login,omitempty"`
	Error            string       `json:"error,omitempty"`
	ErrorDescription string       `json:"error_description,omitempty"`
}

// LoginResult names the account that authenticated.
type LoginResult struct {
	AccountID string    `json:"accountId"`
	AMR       []string  `json:"amr,omitempty"`
	Remember  bool      `json:"remember,omitempty"`
	AuthTime  time.Time `json:"ts"`
}

// Merge lays r over the previous submission the way an object spread
// would: fields set in r win, fields only set in last survive.
func (r InteractionResult) Merge(last *InteractionResult) InteractionResult {
	if last == nil {
		return r
	}
	out := *last
	if r.Login != nil {
		out.Login = r.Login
	}
	if r.Error != "" {
		out.Error = r.Error
	}
	if r.ErrorDescription != "" {
		out.ErrorDescription = r.ErrorDescription
	}
	return out
}
