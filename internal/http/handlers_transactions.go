package http

import (
	"net/http"

	"finledger/internal/core"
)

// handleListTransactions serves ?type=All|Revenue|Expense&limit&offset.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		respondError(w, r, err)
		return
	}

	page, err := s.svc.Transactions.List(r.Context(), ownerID(r), r.URL.Query().Get("type"), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "transactions retrieved", page)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.svc.Transactions.Create(r.Context(), ownerID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "transaction created", result)
}
