package http

import (
	"net/http"

	"finledger/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.List(r.Context(), ownerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "accounts retrieved", accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in core.AccountInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	account, err := s.svc.Accounts.Create(r.Context(), ownerID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "account created", account)
}

func (s *Server) handleAccountDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account")
	if err != nil {
		respondError(w, r, err)
		return
	}
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

	detail, err := s.svc.Accounts.Detail(r.Context(), ownerID(r), id, limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "account retrieved", detail)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var patch core.AccountPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, r, err)
		return
	}

	account, err := s.svc.Accounts.Update(r.Context(), ownerID(r), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "account updated", account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "account")
	if err != nil {
		respondError(w, r, err)
		return
	}

	deletion, err := s.svc.Accounts.Delete(r.Context(), ownerID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "account deleted", deletion)
}
