package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIssuer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		issuer   string
		basePath string
		wantErr  bool
	}{
		{name: "origin only", raw: "https://auth.example.com", issuer: "https://auth.example.com"},
		{name: "trailing slash", raw: "https://auth.example.com/", issuer: "https://auth.example.com"},
		{name: "with prefix", raw: "http://example.com/test", issuer: "http://example.com/test", basePath: "/test"},
		{name: "nested prefix", raw: "http://example.com/a/b/", issuer: "http://example.com/a/b", basePath: "/a/b"},
		{name: "port", raw: "http://localhost:8080", issuer: "http://localhost:8080"},
		{name: "bad scheme", raw: "ftp://example.com", wantErr: true},
		{name: "no host", raw: "http:///path", wantErr: true},
		{name: "query", raw: "https://example.com?x=1", wantErr: true},
		{name: "relative", raw: "/just/a/path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, err := ParseIssuer(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidIssuer)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.issuer, ic.Issuer())
			require.Equal(t, tt.basePath, ic.BasePath())
		})
	}
}

func TestIssuerContext_URL(t *testing.T) {
	t.Parallel()

	ic := MustParseIssuer("http://example.com/test")
	require.Equal(t, "http://example.com/test/auth", ic.URL("/auth"))
	require.Equal(t, "http://example.com/test/interaction/abc/login", ic.URL("interaction/abc/login"))
	require.Equal(t, "http://example.com/test", ic.URL("/"))
	require.Equal(t, "example.com", ic.Host())
	require.Equal(t, "http", ic.Scheme())
}

func TestIssuerContext_RoutePath(t *testing.T) {
	t.Parallel()

	ic := MustParseIssuer("https://auth.example.com/test", "/project/us-central1/oidc", "/project")

	tests := []struct {
		in, out  string
		stripped bool
	}{
		{"/test/auth", "/auth", true},
		{"/test", "/", true},
		{"/testing/auth", "/testing/auth", false},
		{"/project/us-central1/oidc/.well-known/openid-configuration", "/.well-known/openid-configuration", true},
		{"/project/jwks", "/jwks", true},
		{"/auth", "/auth", false},
	}
	for _, tt := range tests {
		got, ok := ic.RoutePath(tt.in)
		require.Equal(t, tt.out, got, tt.in)
		require.Equal(t, tt.stripped, ok, tt.in)
	}
}

func TestIssuerContext_InternalPrefixesIsCopy(t *testing.T) {
	t.Parallel()

	ic := MustParseIssuer("https://a.example.com", "/fn")
	p := ic.InternalPrefixes()
	p[0] = "/mutated"
	require.Equal(t, []string{"/fn"}, ic.InternalPrefixes())
}
