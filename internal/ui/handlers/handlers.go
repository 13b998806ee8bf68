package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/ui/auth"
	"github.com/constella-app/constella-web/internal/ui/client"
	"github.com/constella-app/constella-web/internal/ui/templates"
	"github.com/constella-app/constella-web/internal/ui/wizardstore"
)

const msgInternalError = "An error occurred. Please try again."

type HandlerService struct {
	Sessions       *auth.SessionService
	ApiClient      *client.Client
	Store          wizardstore.Store
	Environment    string
	MaxUploadBytes int64
	WizardTTLSecs  int
}

func isHtmx(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render writes the component, logging any failure
func (h *HandlerService) render(w http.ResponseWriter, r *http.Request, component templ.Component, name string) {
	if err := component.Render(r.Context(), w); err != nil {
		reqLogger := logger.ContextRequestLogger(r.Context())
		reqLogger.Error("Failed to render "+name, slog.String("error", err.Error()))
	}
}

// RenderError shows an error banner. htmx requests get a fragment appended to the current target.
func (h *HandlerService) RenderError(w http.ResponseWriter, r *http.Request, msg string) {
	if !isHtmx(r) {
		http.Error(w, msg, http.StatusInternalServerError)
		return
	}
	w.Header().Set("HX-Reswap", "beforeend")
	h.render(w, r, templates.ErrorAlert(msg), "error alert")
}

// userMessage returns the text to show for a failed API call and logs the technical detail
func userMessage(r *http.Request, err error, fallback string, while string) string {
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error(while+" failed", slog.String("error", err.Error()))

	var ce *client.ClientError
	if errors.As(err, &ce) && ce.UserError() != "" {
		return ce.UserError()
	}
	return fallback
}

// redirect sends the browser to path, using HX-Redirect for htmx requests
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHtmx(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// layout builds the common page data from the request context
func layout(r *http.Request, title string) templates.Layout {
	user, _ := auth.ContextUser(r.Context())
	return templates.Layout{Title: title, User: user}
}
