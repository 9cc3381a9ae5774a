package domain

// Account is a user record as held by the identity backend.
type Account struct {
	ID            string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
	Disabled      bool
}

// Claims derives the claims the engine may release for the account.
func (a Account) Claims() AccountClaims {
	return AccountClaims{
		Subject:       a.ID,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
		Name:          a.DisplayName,
		Picture:       a.PhotoURL,
	}
}

// AccountClaims are resolved per request and never cached.
type AccountClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// ForScopes returns the claims released for scopes. sub is always present.
func (c AccountClaims) ForScopes(scopes []string) map[string]any {
	out := map[string]any{"sub": c.Subject}
	if HasScope(scopes, ScopeEmail) {
		if c.Email != "" {
			out["email"] = c.Email
		}
		out["email_verified"] = c.EmailVerified
	}
	if HasScope(scopes, ScopeProfile) {
		if c.Name != "" {
			out["name"] = c.Name
		}
		if c.Picture != "" {
			out["picture"] = c.Picture
		}
	}
	return out
}

// ResolvedIdentity is the outcome of a successful password verification.
// Token is the backend-issued ID token and is only forwarded in token
// completion mode.
type ResolvedIdentity struct {
	AccountID string
	Token     string
}

// LoginSubmission is the login form body. It is never persisted.
type LoginSubmission struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}
