package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/skills"
	"github.com/constella-app/constella-web/internal/ui/auth"
	"github.com/constella-app/constella-web/internal/ui/client"
	"github.com/constella-app/constella-web/internal/ui/config"
	"github.com/constella-app/constella-web/internal/ui/templates"
	"github.com/constella-app/constella-web/internal/ui/types"
	"github.com/constella-app/constella-web/internal/ui/wizardstore"
	"github.com/constella-app/constella-web/internal/wizard"
)

// multipart forms above this size are spooled to disk while parsing
const maxMemoryMultipart = 1 << 20

// wizardSessionID returns the id in the wizard_session cookie, issuing a new one when missing
func (h *HandlerService) wizardSessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(config.WizardSessionCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     config.WizardSessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   h.WizardTTLSecs,
		HttpOnly: true,
		Secure:   h.Environment == "prod" || h.Environment == "staging",
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *HandlerService) clearWizardCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.WizardSessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Environment == "prod" || h.Environment == "staging",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *HandlerService) signupView(r *http.Request, state wizard.State) templates.SignupView {
	return templates.NewSignupView(layout(r, "Sign up"), state, formatUploadLimit(h.MaxUploadBytes))
}

func formatUploadLimit(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// HandleSignup renders the wizard at its current position
func (h *HandlerService) HandleSignup(w http.ResponseWriter, r *http.Request) {
	id := h.wizardSessionID(w, r)

	state, found, err := h.Store.Get(r.Context(), id)
	if err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Failed to load wizard state", slog.String("error", err.Error()))
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	if !found {
		state = wizard.Initial()
	}

	h.render(w, r, templates.SignupPage(h.signupView(r, state)), "signup page")
}

// renderSignup sends the wizard fragment to htmx, other clients are redirected back to GET /signup
func (h *HandlerService) renderSignup(w http.ResponseWriter, r *http.Request, state wizard.State) {
	if !isHtmx(r) {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}
	h.render(w, r, templates.SignupForm(h.signupView(r, state)), "signup form")
}

// HandleSignupAction handles POST /signup/{action}.
//
// The submitted form fields are recorded first so nothing typed is lost when the user navigates.
// Actions that call the API (upload, finish and skip on the last screen) do so outside the store
// update and apply the result in a second update.
func (h *HandlerService) HandleSignupAction(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(chi.URLParam(r, "*"), "/")
	reqLogger := logger.ContextRequestLogger(r.Context())

	if err := parseForm(r); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RenderError(w, r, fmt.Sprintf("File is too large. Maximum size is %s.", formatUploadLimit(h.MaxUploadBytes)))
			return
		}
		reqLogger.Warn("Failed to parse signup form", slog.String("error", err.Error()))
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	id := h.wizardSessionID(w, r)
	logger.ContextWithLogAttrs(r.Context(), slog.String("wizard_action", action))

	var submit bool
	var reducer wizardstore.UpdateFunc

	switch action {
	case "next":
		reducer = wizard.Next
	case "back":
		reducer = wizard.Back
	case "continue":
		reducer = wizard.Continue
	case "role":
		role, ok := wizard.ParseRole(r.PostForm.Get("role"))
		if !ok {
			http.Error(w, "Invalid role", http.StatusBadRequest)
			return
		}
		reducer = func(s wizard.State) wizard.State { return wizard.SelectRole(s, role) }
	case "skill/add":
		category, ok := skills.ParseCategory(r.PostForm.Get("category"))
		if !ok {
			category = skills.Hard
		}
		skill := r.PostForm.Get("new_skill")
		reducer = func(s wizard.State) wizard.State { return wizard.AddSkill(s, category, skill) }
	case "skill/remove":
		skill := r.PostForm.Get("skill")
		reducer = func(s wizard.State) wizard.State { return wizard.RemoveSkill(s, skill) }
	case "file/remove":
		reducer = wizard.DetachFile
	case "skip":
		reducer = func(s wizard.State) wizard.State {
			next, ready := wizard.Skip(s)
			submit = ready
			return next
		}
	case "finish":
		submit = true
	case "reset":
		if err := h.Store.Delete(r.Context(), id); err != nil {
			reqLogger.Error("Failed to reset wizard state", slog.String("error", err.Error()))
			h.RenderError(w, r, msgInternalError)
			return
		}
		h.renderSignup(w, r, wizard.Initial())
		return
	case "upload":
		h.handleUpload(w, r, id)
		return
	default:
		http.NotFound(w, r)
		return
	}

	inputs := inputReducer(r.PostForm)
	state, err := h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
		s = inputs(s)
		if reducer != nil {
			s = reducer(s)
		}
		return s
	})
	if err != nil {
		reqLogger.Error("Failed to update wizard state", slog.String("error", err.Error()))
		h.RenderError(w, r, msgInternalError)
		return
	}

	if submit {
		state, err = h.submit(w, r, id)
		if err != nil {
			reqLogger.Error("Failed to update wizard state", slog.String("error", err.Error()))
			h.RenderError(w, r, msgInternalError)
			return
		}
	}

	h.renderSignup(w, r, state)
}

// submit validates the collected data and creates the account
func (h *HandlerService) submit(w http.ResponseWriter, r *http.Request, id string) (wizard.State, error) {
	var signupRequest *types.SignupRequest
	var ready bool

	state, err := h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
		next, req, ok := wizard.PrepareSubmit(s)
		signupRequest, ready = req, ok
		return next
	})
	if err != nil || !ready {
		return state, err
	}

	signupResponse, err := h.ApiClient.Signup(r.Context(), signupRequest)
	if err != nil {
		msg := userMessage(r, err, wizard.DefaultFailureMessage, "Signup")
		return h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
			return wizard.SubmitFailed(s, msg)
		})
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("signup_role", signupRequest.Role))

	if signupResponse.Token != "" {
		h.startSession(w, r, signupRequest, signupResponse)
	}

	return h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
		return wizard.SubmitSucceeded(s, signupResponse.Message)
	})
}

// startSession logs the new user in when the API issued a token and stores their skills against the account
func (h *HandlerService) startSession(w http.ResponseWriter, r *http.Request, req *types.SignupRequest, resp *types.SignupResponse) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	user := types.User{ID: resp.ID, Name: resp.Name, Email: resp.Email}
	if user.Name == "" {
		user.Name = req.Name
	}
	if user.Email == "" {
		user.Email = req.Email
	}

	if err := h.Sessions.SetSession(w, resp.Token, user); err != nil {
		reqLogger.Warn("Failed to set session after signup", slog.String("error", err.Error()))
		return
	}

	if len(req.Skills) == 0 {
		return
	}

	ctx := contextWithToken(r.Context(), resp.Token, &user)
	saved, err := h.ApiClient.SaveSkills(ctx, req.Skills)
	if err != nil {
		reqLogger.Warn("Failed to save skills after signup", slog.String("error", err.Error()))
		return
	}
	reqLogger.Debug("Saved skills", slog.Int("saved_skills", saved))
}

func contextWithToken(ctx context.Context, token string, user *types.User) context.Context {
	ctx = client.ContextWithAccessToken(ctx, token)
	return auth.ContextWithUser(ctx, user)
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMemoryMultipart)
	}
	return r.ParseForm()
}

// inputReducer records the wizard fields present in the form. Fields not on the current screen are left alone.
func inputReducer(form url.Values) wizardstore.UpdateFunc {
	return func(s wizard.State) wizard.State {
		if form.Has("name") || form.Has("email") || form.Has("password") {
			c := s.Credentials
			if form.Has("name") {
				c.Name = form.Get("name")
			}
			if form.Has("email") {
				c.Email = form.Get("email")
			}
			// the password is never sent back to the page, so a blank field keeps the one already entered
			if pw := form.Get("password"); pw != "" {
				c.Password = pw
			}
			s = wizard.SetCredentials(s, c)
		}

		if form.Has("totalHours") || form.Has("availableHours") || form.Has("department") {
			p := s.Profile
			if form.Has("totalHours") {
				p.TotalHours = form.Get("totalHours")
			}
			if form.Has("availableHours") {
				p.AvailableHours = form.Get("availableHours")
			}
			if form.Has("department") {
				p.Department = form.Get("department")
			}
			s = wizard.SetProfile(s, p)
		}
		return s
	}
}
