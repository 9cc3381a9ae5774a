package main

import (
	"html/template"
	"net/http"
	"net/url"
	"sync"
)

// callbackResult is what the authorization server sent back to the
// redirect URI, from the query or, in fragment mode, from the fragment.
type callbackResult struct {
	Code             string
	State            string
	Issuer           string
	IDToken          string
	Error            string
	ErrorDescription string
}

func resultFromValues(v url.Values) callbackResult {
	return callbackResult{
		Code:             v.Get("code"),
		State:            v.Get("state"),
		Issuer:           v.Get("iss"),
		IDToken:          v.Get("id_token"),
		Error:            v.Get("error"),
		ErrorDescription: v.Get("error_description"),
	}
}

// forwardFragment posts the URL fragment back to the same path, since the
// browser never sends it to the server.
var forwardFragment = template.Must(template.New("forward").Parse(`<!DOCTYPE html>
<html lang="en">
  <head><meta charset="utf-8"><title>oidctester</title></head>
  <body>
    <p id="status">Completing login...</p>
    <script>
      fetch(window.location.pathname, {
        method: "POST",
        headers: {"Content-Type": "application/x-www-form-urlencoded"},
        body: window.location.hash.substring(1)
      }).then(function () {
        document.getElementById("status").textContent = "Login complete. You can close this window.";
      });
    </script>
  </body>
</html>
`))

const donePage = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>oidctester</title></head>
<body><p>Login complete. You can close this window.</p></body></html>
`

// callbackHandler delivers the first result on its channel and ignores the
// rest.
type callbackHandler struct {
	fragment bool
	results  chan callbackResult
	once     sync.Once
}

func newCallbackHandler(fragment bool) *callbackHandler {
	return &callbackHandler{fragment: fragment, results: make(chan callbackResult, 1)}
}

func (h *callbackHandler) deliver(res callbackResult) {
	h.once.Do(func() { h.results <- res })
}

func (h *callbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && h.fragment && r.URL.RawQuery == "":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = forwardFragment.Execute(w, nil)

	case r.Method == http.MethodGet:
		h.deliver(resultFromValues(r.URL.Query()))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(donePage))

	case r.Method == http.MethodPost && h.fragment:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad fragment", http.StatusBadRequest)
			return
		}
		h.deliver(resultFromValues(r.PostForm))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
