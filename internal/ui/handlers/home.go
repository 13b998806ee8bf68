package handlers

import (
	"net/http"

	"github.com/constella-app/constella-web/internal/ui/templates"
)

// HandleHome renders the landing page
func (h *HandlerService) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.HomePage(templates.HomeView{Layout: layout(r, "")}), "home page")
}

// HandleDashboard greets the logged in user (the route requires auth)
func (h *HandlerService) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, templates.DashboardPage(templates.DashboardView{Layout: layout(r, "Dashboard")}), "dashboard")
}

// HandleLiveness reports that the server is up
func (h *HandlerService) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
