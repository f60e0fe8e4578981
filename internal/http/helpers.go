package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formFields returns the sanitized values of the named form keys that are
// present in the request, in the order given.
func formFields(r *http.Request, keys ...string) [][2]string {
	var out [][2]string
	for _, k := range keys {
		if _, ok := r.PostForm[k]; !ok {
			continue
		}
		out = append(out, [2]string{k, sanitizeInput(r.PostForm.Get(k))})
	}
	return out
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
