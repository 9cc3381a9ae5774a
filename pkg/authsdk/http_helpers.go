package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// resolve maps a URL produced by the bridge onto BaseURL. Relative
// references are resolved against BaseURL, absolute URLs under Issuer are
// rebased, anything else is returned unchanged.
func (c *SDKClient) resolve(ref string) (string, error) {
	if c.Issuer != "" && c.Issuer != c.BaseURL && strings.HasPrefix(ref, c.Issuer) {
		return c.BaseURL + strings.TrimPrefix(ref, c.Issuer), nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.IsAbs() {
		return ref, nil
	}

	base, err := url.Parse(c.BaseURL + "/")
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}

// doRequest performs an HTTP request with the SDKClient's HTTP client.
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// postForm sends an application/x-www-form-urlencoded POST to path.
func (c *SDKClient) postForm(
	ctx context.Context,
	path string,
	data url.Values,
	headers map[string]string,
) (*http.Response, error) {
	h := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		h[k] = v
	}
	return c.doRequest(ctx, http.MethodPost, path, strings.NewReader(data.Encode()), h)
}

// decodeJSON decodes a JSON response into the target interface.
// Returns a typed OAuth2Error if the response indicates an error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// checkStatus returns a typed error if the response status is not expected.
func checkStatus(resp *http.Response, expectedStatus int) error {
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
