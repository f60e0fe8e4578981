package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gstinvoicer/internal/notify"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger should not be set without triggers")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerViewChanged("dashboard").
		TriggerNotification(notify.Message{Kind: notify.Success, Text: "Invoice saved successfully!"}, 3*time.Second).
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{
		`"view:changed"`,
		`"view":"dashboard"`,
		`"show-notification"`,
		`"type":"success"`,
		`"message":"Invoice saved successfully!"`,
		`"duration":3000`,
	} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *HTMXResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{"not found", NotFoundError("missing"), http.StatusNotFound},
		{"conflict", ConflictError("wrong view"), http.StatusConflict},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
				t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
			}
		})
	}

	w := httptest.NewRecorder()
	ErrorResponse(http.StatusBadRequest, `<script>alert(1)</script>`).Write(w)
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}
