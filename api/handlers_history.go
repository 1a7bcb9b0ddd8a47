package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/history"
)

// periodRange pulls the period selector and optional custom bounds off the
// query string. The month window is the default.
func periodRange(q url.Values) (period string, start, end time.Time, err error) {
	period = q.Get("period")
	if period == "" {
		period = history.PeriodMonth
	}
	if raw := q.Get("start"); raw != "" {
		start, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return "", time.Time{}, time.Time{},
				fmt.Errorf("%w: malformed start %q", common.ErrInvalidInput, raw)
		}
	}
	if raw := q.Get("end"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return "", time.Time{}, time.Time{},
				fmt.Errorf("%w: malformed end %q", common.ErrInvalidInput, raw)
		}
	}
	return period, start, end, nil
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	period, start, end, err := periodRange(q)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := s.engine.History.GetHistory(r.Context(), userID, period, start, end,
		currency.NewCode(q.Get("currency")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderHistory(view))
}

// listTransactions serves the user's ledger entries, optionally narrowed to a
// comma separated list of entry types (deposit, withdrawal, transfer,
// bill_payment, p2p)
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	period, start, end, err := periodRange(q)
	if err != nil {
		writeError(w, err)
		return
	}
	var types []string
	if raw := q.Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	limit, offset := pagination(q.Get("limit"), q.Get("offset"))
	entries, err := s.engine.History.ListByType(r.Context(), userID, types,
		period, start, end, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransactions(entries))
}

func (s *Server) transactionDetails(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	txID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := s.engine.History.TransactionDetails(r.Context(), userID, txID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(entry))
}
