package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/bikeledger/internal/form"
	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// FormController is the part of form.Controller the handlers drive.
type FormController interface {
	SelectModel(model string) form.Fields
	Submit(in form.Fields) (form.Outcome, error)
	Refresh() ([]types.BikeEntry, error)
}

// CatalogReader lists the known models.
type CatalogReader interface {
	Entries() []types.CatalogEntry
}

// Handler serves the form API.
type Handler struct {
	Form    FormController
	Catalog CatalogReader
}

// submitResponse is the body of POST /api/entries. Error carries the
// validation rule or store failure when the submit did not fully succeed.
type submitResponse struct {
	form.Outcome
	Error string `json:"error,omitempty"`
}

// ListModels handles GET /api/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Entries())
}

// SelectModel handles GET /api/models/{model}. The router has already
// decoded the path. An unknown model is not an error: the derived fields
// come back empty.
func (h *Handler) SelectModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Form.SelectModel(chi.URLParam(r, "model")))
}

// ListEntries handles GET /api/entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Form.Refresh()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Submit handles POST /api/entries. The body carries the five form fields
// as strings, exactly as a user would type them.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in form.Fields
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	out, err := h.Form.Submit(in)
	resp := submitResponse{Outcome: out}
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, resp)
	case errors.Is(err, types.ErrInvalidInput):
		resp.Error = err.Error()
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case out.Entry.ID != 0:
		// Inserted, but the list could not be re-read.
		resp.Error = err.Error()
		writeJSON(w, http.StatusCreated, resp)
	default:
		resp.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
