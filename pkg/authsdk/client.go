package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for an oidcbridge deployment.
//
// BaseURL is where requests are sent. Issuer is the externally visible issuer
// the bridge puts into every redirect and document; when the two differ (a
// reverse proxy, a container port mapping) absolute URLs returned by the
// bridge are rewritten from Issuer onto BaseURL before they are followed.
type SDKClient struct {
	BaseURL    string
	Issuer     string
	HTTPClient *http.Client
}

// NewSDKClient creates a client whose issuer equals its base URL.
func NewSDKClient(baseURL string) *SDKClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &SDKClient{
		BaseURL: baseURL,
		Issuer:  baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithIssuer sets the external issuer URL and returns the client.
func (c *SDKClient) WithIssuer(issuer string) *SDKClient {
	c.Issuer = strings.TrimSuffix(issuer, "/")
	return c
}

// noRedirectClient returns a copy of the HTTP client that surfaces redirects
// instead of following them.
func (c *SDKClient) noRedirectClient() *http.Client {
	cp := *c.HTTPClient
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}
