package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/ui/config"
	"github.com/constella-app/constella-web/internal/ui/templates"
	"github.com/constella-app/constella-web/internal/ui/types"
	"github.com/constella-app/constella-web/internal/wizard"
)

const msgLoginFailed = "Invalid email or password"

func (h *HandlerService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.LoginPage(templates.LoginView{Layout: layout(r, "Log in")}), "login page")
}

// renderLogin shows the form again: as a fragment for htmx, otherwise as the full page
func (h *HandlerService) renderLogin(w http.ResponseWriter, r *http.Request, view templates.LoginView) {
	if isHtmx(r) {
		h.render(w, r, templates.LoginForm(view), "login form")
		return
	}
	view.Layout = layout(r, "Log in")
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.render(w, r, templates.LoginPage(view), "login page")
}

// HandleLoginPost checks the form locally, authenticates with the API and writes the session cookies
func (h *HandlerService) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	view := templates.LoginView{Email: email}

	if fieldErrors := wizard.ValidateLogin(email, password); len(fieldErrors) > 0 {
		view.FieldErrors = fieldErrors
		view.IsError = true
		view.Message = wizard.MsgLoginFixErrors
		h.renderLogin(w, r, view)
		return
	}

	loginResponse, err := h.ApiClient.Login(r.Context(), email, password)
	if err != nil {
		view.IsError = true
		view.Message = userMessage(r, err, msgLoginFailed, "Authentication")
		h.renderLogin(w, r, view)
		return
	}

	user := types.User{
		ID:    loginResponse.ID,
		Name:  loginResponse.Name,
		Email: loginResponse.Email,
	}
	if err := h.Sessions.SetSession(w, loginResponse.Token, user); err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to set session cookies", slog.String("error", err.Error()))
		h.RenderError(w, r, msgInternalError)
		return
	}

	// a new login starts a new signup
	if cookie, err := r.Cookie(config.WizardSessionCookieName); err == nil {
		if err := h.Store.Delete(r.Context(), cookie.Value); err != nil {
			logger.ContextRequestLogger(r.Context()).Warn("Failed to delete wizard session", slog.String("error", err.Error()))
		}
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("user_id", user.ID),
		slog.String("user_email", user.Email),
	)

	if !isHtmx(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	view.Message = "Welcome back"
	if user.Name != "" {
		view.Message += ", " + user.Name
	}
	w.Header().Set("HX-Trigger", "login-succeeded")
	h.render(w, r, templates.LoginForm(view), "login form")
}

// HandleLogout ends the session and discards any wizard state
func (h *HandlerService) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearSession(w)

	if cookie, err := r.Cookie(config.WizardSessionCookieName); err == nil {
		if err := h.Store.Delete(r.Context(), cookie.Value); err != nil {
			logger.ContextRequestLogger(r.Context()).Warn("Failed to delete wizard session", slog.String("error", err.Error()))
		}
		h.clearWizardCookie(w)
	}

	redirect(w, r, "/")
}
