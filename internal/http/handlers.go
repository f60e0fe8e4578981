package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"gstinvoicer/internal/controller"
	"gstinvoicer/internal/core"
	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/notify"
	"gstinvoicer/internal/render"
	"gstinvoicer/internal/store"
)

// pageData feeds layout.html and every view template.
type pageData struct {
	View         string
	Notification *notify.Message
	NotifyMs     int64

	Dashboard controller.DashboardData

	Invoice  *core.Invoice
	Totals   core.Totals
	Document *render.Document
	Layout   string

	Draft   *core.BusinessProfile
	Profile core.BusinessProfile

	// Standalone is the read-only viewer opened by a share link.
	Standalone bool
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	st := s.pdfCache.Stats()
	checks["pdf_cache"] = map[string]any{"entries": st.Entries, "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients(), "status": "ok"}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	st := s.pdfCache.Stats()

	metric := func(name, typ, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, typ, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", atomic.LoadInt64(&s.metrics.requests))
	metric("pdf_cache_hits_total", "counter", "Rendered PDF cache hits", st.Hits)
	metric("pdf_cache_misses_total", "counter", "Rendered PDF cache misses", st.Misses)
	metric("pdf_cache_entries", "gauge", "Current rendered PDF cache entries", st.Entries)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", atomic.LoadInt64(&s.metrics.rateLimitHits))
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", atomic.LoadInt64(&s.metrics.suspiciousRequests))
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.rateLimiter.ActiveClients())
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))
}

// handleIndex renders the current view. With ?mode=pdf&id=... it renders
// the standalone document viewer for a stored invoice instead.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.EqualFold(q.Get("mode"), controller.StartModePdf) {
		s.handleViewer(w, r, strings.TrimSpace(q.Get("id")))
		return
	}

	data, err := s.currentPage(r.Context(), sanitizeInput(q.Get("q")), render.ParseLayout(q.Get("layout")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderPage(w, r, http.StatusOK, data)
}

// handleViewer shows only saved invoices: share links must not expose
// drafts or unsaved edits.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	inv, err := s.session.StoredInvoice(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	profile, err := s.session.Profile(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	layout := render.ParseLayout(r.URL.Query().Get("layout"))
	doc := render.RenderInvoice(inv, profile, layout)
	s.renderPage(w, r, http.StatusOK, pageData{
		View:       string(controller.ViewPdf),
		Invoice:    &inv,
		Totals:     doc.Totals,
		Document:   &doc,
		Layout:     string(layout),
		Profile:    profile,
		Standalone: true,
		NotifyMs:   s.notifyDelay.Milliseconds(),
	})
}

// currentPage snapshots the session into template data.
func (s *Server) currentPage(ctx context.Context, query string, layout render.Layout) (pageData, error) {
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		return pageData{}, err
	}
	data := pageData{
		View:         string(snap.View),
		Notification: snap.Notification,
		NotifyMs:     s.notifyDelay.Milliseconds(),
		Invoice:      snap.Invoice,
		Totals:       snap.Totals,
		Draft:        snap.Draft,
		Profile:      snap.Profile,
		Layout:       string(layout),
	}
	switch snap.View {
	case controller.ViewDashboard:
		dash, err := s.session.Dashboard(ctx, query)
		if err != nil {
			return pageData{}, err
		}
		data.Dashboard = dash
	case controller.ViewEditor, controller.ViewPdf:
		doc := render.Render(*snap.Invoice, snap.Profile, snap.Totals, layout)
		data.Document = &doc
	}
	return data, nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	s.renderTemplate(w, r, status, "layout", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// fail maps domain errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := applog.FromContext(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFoundError("Invoice not found").Write(w)
	case errors.Is(err, controller.ErrUnsupportedEvent):
		ConflictError("That action is not available in the current view").Write(w)
	case errors.Is(err, core.ErrItemNotFound), errors.Is(err, core.ErrUnknownField):
		UnprocessableEntityError(err.Error()).Write(w)
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, applog.FieldPath, r.URL.Path)
		InternalServerError("Something went wrong").Write(w)
	}
}
