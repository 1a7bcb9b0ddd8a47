package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/repository/exchangerate"
	"github.com/rhinoxpay/rhinoxcore/money"
)

type quoteView struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Rate    money.Amount `json:"rate"`
	Inverse money.Amount `json:"inverse"`
}

func (s *Server) getRate(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	q, err := s.engine.Rates.GetRate(r.Context(),
		currency.NewCode(vars["from"]), currency.NewCode(vars["to"]))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteView{
		From:    q.From.String(),
		To:      q.To.String(),
		Rate:    q.Rate,
		Inverse: q.Inverse,
	})
}

type rateRow struct {
	From      string       `json:"from"`
	To        string       `json:"to"`
	Rate      money.Amount `json:"rate"`
	Inverse   string       `json:"inverse,omitempty"`
	Active    bool         `json:"active"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func renderRates(rows []exchangerate.ExchangeRate) []rateRow {
	out := make([]rateRow, len(rows))
	for x := range rows {
		e := &rows[x]
		out[x] = rateRow{
			From:      e.FromCurrency.String(),
			To:        e.ToCurrency.String(),
			Rate:      e.Rate,
			Inverse:   e.InverseRate.String,
			Active:    e.Active,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return out
}

// listRates serves the rate table, optionally narrowed to one base currency
func (s *Server) listRates(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		writeError(w, err)
		return
	}
	base := r.URL.Query().Get("base")
	if base != "" {
		rows, err := s.engine.Rates.ListFromBase(r.Context(), currency.NewCode(base))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, renderRates(rows))
		return
	}
	rows, err := s.engine.Rates.List(r.Context(), r.URL.Query().Get("all") != "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderRates(rows))
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	amount, err := parseAmount("amount", q.Get("amount"))
	if err != nil {
		writeError(w, err)
		return
	}
	from := currency.NewCode(q.Get("from"))
	to := currency.NewCode(q.Get("to"))
	converted, err := s.engine.Rates.Convert(r.Context(), amount, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Amount    money.Amount `json:"amount"`
		From      string       `json:"from"`
		To        string       `json:"to"`
		Converted money.Amount `json:"converted"`
	}{Amount: amount, From: from.String(), To: to.String(), Converted: converted})
}

// setRate administers a rate pair. Admin only: the caller must present a
// valid one-time password alongside the session principal.
func (s *Server) setRate(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		writeError(w, err)
		return
	}
	if err := s.requireAdminOTP(r); err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		From    string `json:"from"`
		To      string `json:"to"`
		Rate    string `json:"rate"`
		Inverse string `json:"inverse"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	rate, err := parseAmount("rate", req.Rate)
	if err != nil {
		writeError(w, err)
		return
	}
	var inverse *money.Amount
	if req.Inverse != "" {
		inv, err := parseAmount("inverse", req.Inverse)
		if err != nil {
			writeError(w, err)
			return
		}
		inverse = &inv
	}
	err = s.engine.Rates.SetRate(r.Context(),
		currency.NewCode(req.From), currency.NewCode(req.To), rate, inverse)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
