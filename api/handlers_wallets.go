package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
)

type createWalletRequest struct {
	Currency   string `json:"currency"`
	Blockchain string `json:"blockchain"`
}

func (s *Server) createWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	id, err := s.engine.Wallets.CreateWallet(r.Context(), userID,
		currency.NewCode(req.Currency), currency.NewBlockchain(req.Blockchain))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		ID int64 `json:"id"`
	}{ID: id})
}

func (s *Server) listWallets(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := s.engine.Wallets.ListWallets(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	type walletRow struct {
		ID       int64  `json:"id"`
		Currency string `json:"currency"`
		Kind     string `json:"kind"`
		Active   bool   `json:"active"`
	}
	out := make([]walletRow, len(rows))
	for x := range rows {
		out[x] = walletRow{
			ID:       rows[x].ID,
			Currency: rows[x].Currency.String(),
			Kind:     rows[x].Kind,
			Active:   rows[x].Active,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	balances, err := s.engine.Wallets.GetBalances(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderBalances(balances))
}
