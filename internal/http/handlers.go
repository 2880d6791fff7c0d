package http

import (
	"fmt"
	"net/http"
	"strconv"

	"pocketwise/internal/app"
	"pocketwise/internal/export"
	applog "pocketwise/internal/log"
)

type createResponse struct {
	ID   string   `json:"id"`
	View app.View `json:"view"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Options())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !s.decode(w, r, &req) {
		return
	}
	txn, err := s.ctrl.Create(r.Context(), req.draft())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: txn.ID, View: s.ctrl.View()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirmed {
		writeError(w, http.StatusPreconditionRequired, "deletion must be confirmed with confirm=true")
		return
	}

	removed, err := s.ctrl.Delete(r.Context(), id, app.AlwaysConfirm)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !removed {
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction not found",
			applog.FieldTxnID, id, applog.FieldErrorType, applog.ErrorTypeNotFound)
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.ctrl.SetFilters(r.Context(), req.config())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.ResetFilters(r.Context()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Immediate {
		writeJSON(w, http.StatusOK, s.ctrl.SearchNow(r.Context(), req.Query))
		return
	}
	if !s.ctrl.Search(r.Context(), req.Query) {
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ctrl.Export(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
