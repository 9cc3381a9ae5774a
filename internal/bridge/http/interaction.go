package http

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/oidcbridge/internal/bridge/domain"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/identity"
	"github.com/aussiebroadwan/oidcbridge/internal/bridge/service"
	"github.com/aussiebroadwan/oidcbridge/pkg/authsdk"
	"github.com/aussiebroadwan/oidcbridge/pkg/httpx"
	"github.com/aussiebroadwan/oidcbridge/pkg/slogx"
)

// PasswordVerifier checks credentials against the identity backend.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (domain.ResolvedIdentity, error)
}

// CompletionMode decides what a successful login hands back to the client.
type CompletionMode string

const (
	// CompletionCode finishes the interaction and redirects with an
	// authorization code.
	CompletionCode CompletionMode = "code"

	// CompletionToken forwards the backend's own ID token in the redirect
	// fragment and leaves the interaction open.
	CompletionToken CompletionMode = "token"
)

// ParseCompletionMode accepts "code" and "token".
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch m := CompletionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case CompletionCode, CompletionToken:
		return m, nil
	case "":
		return CompletionCode, nil
	default:
		return "", errors.New("completion mode must be code or token")
	}
}

const loginFailed = "login_failed"

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Login</title>
  </head>
  <body>
    <h1>Login</h1>
    {{- if .Failed}}
    <p role="alert">Login failed. Check your email and password and try again.</p>
    {{- end}}
    <form method="post" action="{{.Action}}">
      <label>Email: <input type="email" name="email" value="{{.LoginHint}}" autocomplete="username" required></label><br/>
      <label>Password: <input type="password" name="password" autocomplete="current-password" required></label><br/>
      <button type="submit">Login</button>
    </form>
    <form method="post" action="{{.AbortAction}}">
      <button type="submit">Cancel</button>
    </form>
  </body>
</html>
`))

type loginPageData struct {
	Action      string
	AbortAction string
	LoginHint   string
	Failed      bool
}

// InteractionHandler is the login step of the authorization flow: it shows
// the login form, checks the submitted credentials against the identity
// backend and hands the result back to the engine.
type InteractionHandler struct {
	Engine   *service.Engine
	Identity PasswordVerifier
	Mode     CompletionMode

	validate *validator.Validate
}

// NewInteractionHandler builds an InteractionHandler. An empty mode means
// CompletionCode.
func NewInteractionHandler(engine *service.Engine, idp PasswordVerifier, mode CompletionMode) *InteractionHandler {
	if mode == "" {
		mode = CompletionCode
	}
	return &InteractionHandler{
		Engine:   engine,
		Identity: idp,
		Mode:     mode,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HandleGet godoc
//
//	@Summary		Login Form
//	@Description	Renders the login form of a pending interaction. error=login_failed shows a generic failure message.
//	@Tags			Interaction
//	@Produce		html
//	@Param			uid		path		string					true	"Interaction uid"
//	@Param			error	query		string					false	"Previous attempt outcome"	Enums(login_failed)
//	@Success		200		{string}	string					"HTML login form"
//	@Failure		400		{object}	authsdk.ErrorResponse	"unknown or expired interaction"
//	@Router			/interaction/{uid} [get].
func (h *InteractionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	i, err := h.Engine.InteractionDetails(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := loginPageData{
		Action:      h.Engine.Issuer.URL("/interaction/" + uid + "/login"),
		AbortAction: h.Engine.Issuer.URL("/interaction/" + uid + "/abort"),
		LoginHint:   i.Params.LoginHint,
		Failed:      r.URL.Query().Get("error") == loginFailed,
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "DENY")
	w.WriteHeader(http.StatusOK)
	if err := loginPage.Execute(w, data); err != nil {
		slogx.FromContext(r.Context()).Error("render login page", "err", err)
	}
}

// HandleLogin godoc
//
//	@Summary		Submit Login
//	@Description	Verifies the credentials with the identity backend. On failure the user agent is sent back to the form with error=login_failed.
//	@Description	In code mode the interaction is finished and the user agent is redirected to the client with an authorization code.
//	@Description	In token mode the user agent is redirected to the client with the backend ID token in the URL fragment.
//	@Tags			Interaction
//	@Accept			application/x-www-form-urlencoded
//	@Param			uid			path		string					true	"Interaction uid"
//	@Param			email		formData	string					true	"Email"
//	@Param			password	formData	string					true	"Password"
//	@Success		303			"Redirect to the client"
//	@Success		302			"Redirect back to the login form, or to the client in token mode"
//	@Failure		400			{object}	authsdk.ErrorResponse	"missing fields or unknown interaction"
//	@Failure		429			{object}	authsdk.ErrorResponse	"too many attempts"
//	@Router			/interaction/{uid}/login [post].
func (h *InteractionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := r.PathValue("uid")
	log := slogx.FromContext(ctx).With(slog.String("uid", uid))

	if !httpx.IsFormRequest(r) {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	i, err := h.Engine.InteractionDetails(ctx, uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	sub := domain.LoginSubmission{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validate.Struct(sub); err != nil {
		errMissingCredentials.WriteError(w)
		return
	}

	id, err := h.Identity.VerifyPassword(ctx, sub.Email, sub.Password)
	if err != nil {
		if errors.Is(err, identity.ErrAuthFailure) {
			log.Warn(loginFailed, slog.String("reason", "auth_failure"), slog.String("err", err.Error()))
		} else {
			log.Error(loginFailed, slog.String("reason", "upstream_unavailable"), slog.String("err", err.Error()))
		}
		http.Redirect(w, r, h.Engine.Issuer.URL("/interaction/"+uid)+"?error="+loginFailed, http.StatusFound)
		return
	}

	result := domain.InteractionResult{
		Login: &domain.LoginResult{
			AccountID: id.AccountID,
			AMR:       []string{"pwd"},
			AuthTime:  time.Now(),
		},
	}

	if h.Mode == CompletionToken {
		if err := h.Engine.SaveResult(ctx, uid, result); err != nil {
			writeServiceError(w, r, err)
			return
		}
		log.Info("login succeeded", slog.String("account_id", id.AccountID), slog.String("mode", string(h.Mode)))
		http.Redirect(w, r, tokenRedirect(i.Params, id.Token), http.StatusFound)
		return
	}

	loc, err := h.Engine.InteractionFinished(ctx, uid, result, service.FinishOptions{MergeWithLastSubmission: false})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Info("login succeeded", slog.String("account_id", id.AccountID), slog.String("mode", string(h.Mode)))
	http.Redirect(w, r, loc, http.StatusSeeOther)
}

// HandleAbort godoc
//
//	@Summary		Abort Login
//	@Description	Ends the interaction and redirects to the client with error=access_denied.
//	@Tags			Interaction
//	@Param			uid	path	string	true	"Interaction uid"
//	@Success		303	"Redirect to the client"
//	@Failure		400	{object}	authsdk.ErrorResponse	"unknown interaction"
//	@Router			/interaction/{uid}/abort [post].
func (h *InteractionHandler) HandleAbort(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Engine.InteractionFinished(r.Context(), r.PathValue("uid"), domain.InteractionResult{
		Error:            authsdk.ErrorCodeAccessDenied,
		ErrorDescription: "End-User aborted interaction",
	}, service.FinishOptions{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, loc, http.StatusSeeOther)
}

// tokenRedirect puts the backend ID token in the fragment of the client's
// redirect URI, so it never reaches a server log.
func tokenRedirect(p domain.AuthorizationParams, idToken string) string {
	v := url.Values{}
	v.Set("id_token", idToken)
	if p.State != "" {
		v.Set("state", p.State)
	}
	base, _, _ := strings.Cut(p.RedirectURI, "#")
	return base + "#" + v.Encode()
}
