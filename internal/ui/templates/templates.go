// Package templates renders the UI pages and the htmx fragments that replace parts of them.
// Pages are html/template files embedded in the binary and exposed as templ components.
package templates

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"github.com/a-h/templ"
	"github.com/constella-app/constella-web/internal/skills"
	"github.com/constella-app/constella-web/internal/ui/types"
	"github.com/constella-app/constella-web/internal/wizard"
)

//go:embed html/*.html
var htmlFiles embed.FS

//go:embed static
var staticFiles embed.FS

var funcs = template.FuncMap{
	"seq": func(n int) []int {
		s := make([]int, n)
		for i := range s {
			s[i] = i + 1
		}
		return s
	},
}

var pages = template.Must(template.New("pages").Funcs(funcs).ParseFS(htmlFiles, "html/*.html"))

// Static returns the stylesheet and other assets served under /static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func component(name string, data any) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}

// Layout is the data every full page needs
type Layout struct {
	Title string
	User  *types.User
}

type HomeView struct {
	Layout
}

type LoginView struct {
	Layout
	Email       string
	FieldErrors wizard.FieldErrors
	Message     string
	IsError     bool
}

type SignupView struct {
	Layout
	State      wizard.State
	Categories []skills.Category
	Roles      []wizard.Role
	Accept     string
	MaxUpload  string
}

// PrimaryLabel is the text of the main button on the current screen
func (v SignupView) PrimaryLabel() string {
	switch {
	case v.State.Step() == 1:
		return "Create account"
	case v.State.SubStep() == 1:
		return "Continue"
	case v.State.Loading:
		return "Finishing..."
	default:
		return "Finish setup"
	}
}

// PrimaryAction is the signup action posted by the main button
func (v SignupView) PrimaryAction() string {
	switch {
	case v.State.Step() == 1:
		return "next"
	case v.State.SubStep() == 1:
		return "continue"
	default:
		return "finish"
	}
}

// NewSignupView fills in the fixed parts of the signup screen
func NewSignupView(layout Layout, state wizard.State, maxUpload string) SignupView {
	return SignupView{
		Layout:     layout,
		State:      state,
		Categories: skills.Categories,
		Roles:      []wizard.Role{wizard.RoleProjectManager, wizard.RoleEmployee},
		Accept:     strings.Join(skills.AllowedExtensions, ","),
		MaxUpload:  maxUpload,
	}
}

type DashboardView struct {
	Layout
}

func HomePage(v HomeView) templ.Component { return component("home", v) }

func LoginPage(v LoginView) templ.Component { return component("login", v) }

// LoginForm is the login form fragment swapped in by htmx after a failed attempt
func LoginForm(v LoginView) templ.Component { return component("login_form", v) }

func SignupPage(v SignupView) templ.Component { return component("signup", v) }

// SignupForm is the wizard fragment swapped in by htmx after each action
func SignupForm(v SignupView) templ.Component { return component("signup_form", v) }

func DashboardPage(v DashboardView) templ.Component { return component("dashboard", v) }

// ErrorAlert is a standalone error banner
func ErrorAlert(message string) templ.Component { return component("error_alert", message) }
