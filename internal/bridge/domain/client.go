package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	ResponseTypeCode = "code"

	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeRefreshToken      = "refresh_token"

	AuthMethodNone              = "none"
	AuthMethodClientSecretBasic = "client_secret_basic"
	AuthMethodClientSecretPost  = "client_secret_post"
)

// Client is a registered relying party.
type Client struct {
	ID                      string
	Name                    string
	SecretHash              string // argon2id, empty for public clients
	RedirectURIs            []string
	ResponseTypes           []string
	GrantTypes              []string
	TokenEndpointAuthMethod string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsPublic reports whether the client authenticates at the token endpoint
// with its id alone.
func (c Client) IsPublic() bool {
	return c.TokenEndpointAuthMethod == "" || c.TokenEndpointAuthMethod == AuthMethodNone
}

// AllowsRedirectURI requires an exact string match against a registered URI.
func (c Client) AllowsRedirectURI(uri string) bool {
	return uri != "" && slices.Contains(c.RedirectURIs, uri)
}

// AllowsResponseType compares response types as unordered sets, so
// "id_token code" matches a registered "code id_token".
func (c Client) AllowsResponseType(responseType string) bool {
	want := normalizeResponseType(responseType)
	if want == "" {
		return false
	}
	for _, rt := range c.ResponseTypes {
		if normalizeResponseType(rt) == want {
			return true
		}
	}
	return false
}

func (c Client) AllowsGrantType(grantType string) bool {
	return slices.Contains(c.GrantTypes, grantType)
}

func normalizeResponseType(rt string) string {
	parts := strings.Fields(rt)
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
