package http

import (
	"net/http"

	"gstinvoicer/internal/core"
)

var customerKeys = []string{
	string(core.CustomerName),
	string(core.CustomerPhone),
	string(core.CustomerGST),
	string(core.CustomerState),
	string(core.InvoiceNotes),
}

var itemKeys = []string{
	string(core.ItemDescription),
	string(core.ItemQuantity),
	string(core.ItemUnitPrice),
	string(core.ItemGSTRate),
}

var profileKeys = []string{
	string(core.ProfileName),
	string(core.ProfileTaxID),
	string(core.ProfileAddress),
	string(core.ProfilePhone),
	string(core.ProfileStateCode),
}

// handleCustomerFields applies every customer field present in the form.
func (s *Server) handleCustomerFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	ctx := r.Context()
	for _, kv := range formFields(r, customerKeys...) {
		if err := s.session.SetCustomerField(ctx, core.CustomerField(kv[0]), kv[1]); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.respond(w, r, nil)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	_, err := s.session.AddItem(r.Context())
	s.respond(w, r, err)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	ctx := r.Context()
	itemID := r.PathValue("itemID")
	fields := formFields(r, itemKeys...)
	if len(fields) == 0 {
		BadRequestError("No item field given").Write(w)
		return
	}
	for _, kv := range fields {
		if err := s.session.UpdateItem(ctx, itemID, core.ItemField(kv[0]), kv[1]); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.respond(w, r, nil)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.session.RemoveItem(r.Context(), r.PathValue("itemID")))
}

func (s *Server) handleProfileFields(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form data").Write(w)
		return
	}
	ctx := r.Context()
	for _, kv := range formFields(r, profileKeys...) {
		if err := s.session.SetProfileField(ctx, core.ProfileField(kv[0]), kv[1]); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	s.respond(w, r, nil)
}
