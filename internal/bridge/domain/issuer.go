package domain

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var ErrInvalidIssuer = errors.New("domain: invalid issuer URL")

// IssuerContext is the externally visible identity of the provider: the
// origin and path prefix every generated URL is built from. It is resolved
// once at startup and is immutable afterwards; its fields are unexported so
// a copy can be shared freely across requests.
type IssuerContext struct {
	scheme   string
	host     string
	basePath string
	internal []string
}

// ParseIssuer validates the issuer URL. internalPrefixes are extra mount
// paths a gateway may deliver requests on (for example a serverless
// function path) that must be stripped before routing.
func ParseIssuer(raw string, internalPrefixes ...string) (IssuerContext, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return IssuerContext{}, fmt.Errorf("%w: %v", ErrInvalidIssuer, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return IssuerContext{}, fmt.Errorf("%w: scheme must be http or https", ErrInvalidIssuer)
	}
	if u.Host == "" {
		return IssuerContext{}, fmt.Errorf("%w: missing host", ErrInvalidIssuer)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return IssuerContext{}, fmt.Errorf("%w: query, fragment and userinfo are not allowed", ErrInvalidIssuer)
	}

	ic := IssuerContext{
		scheme:   u.Scheme,
		host:     u.Host,
		basePath: cleanPrefix(u.Path),
	}
	for _, p := range internalPrefixes {
		p = cleanPrefix(p)
		if p != "" && p != ic.basePath && !slices.Contains(ic.internal, p) {
			ic.internal = append(ic.internal, p)
		}
	}
	// Longest first so nested mounts strip completely.
	slices.SortFunc(ic.internal, func(a, b string) int { return len(b) - len(a) })

	return ic, nil
}

// MustParseIssuer is ParseIssuer for tests and constants.
func MustParseIssuer(raw string, internalPrefixes ...string) IssuerContext {
	ic, err := ParseIssuer(raw, internalPrefixes...)
	if err != nil {
		panic(err)
	}
	return ic
}

// Issuer returns the issuer identifier, origin plus prefix without a
// trailing slash.
func (c IssuerContext) Issuer() string {
	return c.scheme + "://" + c.host + c.basePath
}

// URL returns the absolute external URL of path.
func (c IssuerContext) URL(path string) string {
	if path == "" || path == "/" {
		return c.Issuer()
	}
	return c.Issuer() + "/" + strings.TrimPrefix(path, "/")
}

func (c IssuerContext) Scheme() string   { return c.scheme }
func (c IssuerContext) Host() string     { return c.host }
func (c IssuerContext) BasePath() string { return c.basePath }

// InternalPrefixes returns a copy of the configured internal mount paths.
func (c IssuerContext) InternalPrefixes() []string {
	return slices.Clone(c.internal)
}

// IsZero reports whether the context was never parsed.
func (c IssuerContext) IsZero() bool {
	return c.host == ""
}

// RoutePath maps an inbound request path onto the route space of the
// provider by removing the external prefix or an internal mount prefix.
// ok is false when the path is already prefix free.
func (c IssuerContext) RoutePath(path string) (string, bool) {
	if c.basePath != "" {
		if rest, ok := trimMount(path, c.basePath); ok {
			return rest, true
		}
	}
	for _, p := range c.internal {
		if rest, ok := trimMount(path, p); ok {
			return rest, true
		}
	}
	return path, false
}

func trimMount(path, prefix string) (string, bool) {
	if path == prefix {
		return "/", true
	}
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix):], true
	}
	return "", false
}

func cleanPrefix(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
