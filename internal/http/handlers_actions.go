package http

import (
	"bytes"
	"net/http"

	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/render"
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.Create(r.Context()))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	id := sanitizeInput(r.PostForm.Get("id"))
	if id == "" {
		BadRequestError("Missing invoice id").Write(w)
		return
	}
	s.respond(w, r, s.session.Select(r.Context(), id))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.Back(r.Context()))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.Save(r.Context()))
}

func (s *Server) handleOpenDirectView(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.OpenDirectView(r.Context()))
}

func (s *Server) handleOpenSettings(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.OpenSettings(r.Context()))
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.SaveSettings(r.Context()))
}

// respond finishes an action. Plain form posts are redirected back to the
// index; HTMX requests get the new view with notification triggers.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeView(w, r)
}

// writeView renders the "view" fragment for the current state.
func (s *Server) writeView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	layout := render.ParseLayout(r.URL.Query().Get("layout"))
	data, err := s.currentPage(ctx, sanitizeInput(r.URL.Query().Get("q")), layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "view", data); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Template execution failed", "error", err, "template", "view")
		InternalServerError("Template error").Write(w)
		return
	}

	resp := NewHTMXResponse().TriggerViewChanged(data.View)
	if data.Notification != nil {
		resp.TriggerNotification(*data.Notification, s.notifyDelay)
	}
	resp.BodyHTML(buf.String()).Write(w)
}
