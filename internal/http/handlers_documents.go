package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/render"
)

// handlePreview renders the live document preview for the open invoice.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	layout := render.ParseLayout(r.URL.Query().Get("layout"))
	data, err := s.currentPage(r.Context(), "", layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if data.Document == nil {
		ConflictError("No invoice is open").Write(w)
		return
	}
	s.renderTemplate(w, r, http.StatusOK, "document", data.Document)
}

func (s *Server) document(r *http.Request) (render.Document, error) {
	ctx := r.Context()
	inv, err := s.session.Invoice(ctx, r.PathValue("id"))
	if err != nil {
		return render.Document{}, err
	}
	profile, err := s.session.Profile(ctx)
	if err != nil {
		return render.Document{}, err
	}
	return render.RenderInvoice(inv, profile, render.ParseLayout(r.URL.Query().Get("layout"))), nil
}

// handlePDF serves the invoice as a PDF. Rendered files are cached by
// document fingerprint.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pdf, hit, err := s.pdfCache.GetOrCreate(doc.Fingerprint(), func() ([]byte, error) {
		var buf bytes.Buffer
		if err := render.WritePDF(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		s.reqLog.LogError(r.Context(), "PDF render failed", err, applog.ComponentRender, applog.OpRender, nil)
		InternalServerError("Could not render PDF").Write(w)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "PDF served",
		applog.FieldInvoiceID, doc.InvoiceID, applog.FieldLayout, string(doc.Layout), "cache_hit", hit)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s-%s.pdf"`, doc.InvoiceID, doc.Layout))
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Text()))
}

type shareResponse struct {
	Text     string `json:"text"`
	Link     string `json:"link"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sh, err := s.session.ShareMessage(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(shareResponse{Text: sh.Text, Link: sh.Link, WhatsApp: sh.WhatsApp})
}
