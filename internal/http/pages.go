package http

import (
	"log/slog"
	"net/http"

	"genfin/internal/core"
)

// pageData is handed to every page template.
type pageData struct {
	Account *core.Account
	Active  string
}

// page renders one template. Protected pages redirect anonymous visitors
// to the login form instead of replying 401.
func (s *Server) page(name string, protected bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.sessionAccount(r)
		if protected && err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		s.render(w, r, name, pageData{Account: account, Active: name})
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if s.templates == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template rendering failed", "template", name, "error", err)
	}
}
