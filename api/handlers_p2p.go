package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/repository/p2porder"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/p2p"
)

type adRequest struct {
	AdType           string  `json:"adType"`
	CryptoCurrency   string  `json:"cryptoCurrency"`
	FiatCurrency     string  `json:"fiatCurrency"`
	Price            string  `json:"price"`
	Volume           string  `json:"volume"`
	MinOrder         string  `json:"minOrder"`
	MaxOrder         string  `json:"maxOrder"`
	AutoAccept       bool    `json:"autoAccept"`
	PaymentMethodIDs []int64 `json:"paymentMethodIds"`
	ProcessingTime   int     `json:"processingTimeMinutes"`
	IsOnline         bool    `json:"isOnline"`
}

func (req *adRequest) params() (*p2p.AdParams, error) {
	price, err := parseAmount("price", req.Price)
	if err != nil {
		return nil, err
	}
	volume, err := parseAmount("volume", req.Volume)
	if err != nil {
		return nil, err
	}
	minOrder, err := parseAmount("minOrder", req.MinOrder)
	if err != nil {
		return nil, err
	}
	maxOrder, err := parseAmount("maxOrder", req.MaxOrder)
	if err != nil {
		return nil, err
	}
	return &p2p.AdParams{
		AdType:           req.AdType,
		CryptoCurrency:   currency.NewCode(req.CryptoCurrency),
		FiatCurrency:     currency.NewCode(req.FiatCurrency),
		Price:            price,
		Volume:           volume,
		MinOrder:         minOrder,
		MaxOrder:         maxOrder,
		AutoAccept:       req.AutoAccept,
		PaymentMethodIDs: req.PaymentMethodIDs,
		ProcessingTime:   req.ProcessingTime,
		IsOnline:         req.IsOnline,
	}, nil
}

func parseAmount(field, raw string) (money.Amount, error) {
	if raw == "" {
		return money.Zero, fmt.Errorf("%w: %s is required", common.ErrInvalidInput, field)
	}
	a, err := money.Parse(raw)
	if err != nil {
		return money.Zero, fmt.Errorf("%w: malformed %s %q", common.ErrInvalidInput, field, raw)
	}
	return a, nil
}

func (s *Server) createAd(w http.ResponseWriter, r *http.Request) {
	vendorID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req adRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	ad, err := s.engine.P2P.CreateAd(r.Context(), vendorID, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderAd(ad))
}

func (s *Server) listMyAds(w http.ResponseWriter, r *http.Request) {
	vendorID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ads, err := s.engine.P2P.ListMyAds(r.Context(), vendorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAds(ads))
}

func (s *Server) browseAds(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	limit, offset := pagination(q.Get("limit"), q.Get("offset"))
	ads, err := s.engine.P2P.BrowseAds(r.Context(), &p2p.BrowseFilter{
		AdType:         q.Get("adType"),
		CryptoCurrency: currency.NewCode(q.Get("cryptoCurrency")),
		FiatCurrency:   currency.NewCode(q.Get("fiatCurrency")),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAds(ads))
}

func (s *Server) getAd(w http.ResponseWriter, r *http.Request) {
	if _, err := principal(r); err != nil {
		writeError(w, err)
		return
	}
	adID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ad, err := s.engine.P2P.GetAd(r.Context(), adID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAd(ad))
}

func (s *Server) updateAd(w http.ResponseWriter, r *http.Request) {
	vendorID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	adID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req adRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	ad, err := s.engine.P2P.UpdateAd(r.Context(), vendorID, adID, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAd(ad))
}

func (s *Server) updateAdStatus(w http.ResponseWriter, r *http.Request) {
	vendorID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	adID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status   string `json:"status"`
		IsOnline bool   `json:"isOnline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	ad, err := s.engine.P2P.UpdateAdStatus(r.Context(), vendorID, adID, req.Status, req.IsOnline)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderAd(ad))
}

func (s *Server) matchingMethods(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	adID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	methods, err := s.engine.P2P.UserMatchingPaymentMethods(r.Context(), userID, adID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderMethods(methods))
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		AdID            int64  `json:"adId"`
		CryptoAmount    string `json:"cryptoAmount"`
		PaymentMethodID int64  `json:"paymentMethodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
		return
	}
	amount, err := parseAmount("cryptoAmount", req.CryptoAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := s.engine.P2P.CreateOrder(r.Context(), userID, &p2p.OrderParams{
		AdID:            req.AdID,
		CryptoAmount:    amount,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderOrder(order))
}

func (s *Server) listMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	limit, offset := pagination(q.Get("limit"), q.Get("offset"))
	orders, err := s.engine.P2P.ListMyOrders(r.Context(), userID, q.Get("status"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderOrders(orders))
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	orderID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := s.engine.P2P.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderOrder(order))
}

func (s *Server) getUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	profile, err := s.engine.P2P.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderProfile(profile))
}

// transition serves the shared shape of the order lifecycle endpoints: parse
// the order id, run the service transition as the caller, return the order
func (s *Server) transition(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, int64, int64) (*p2porder.Order, error),
) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	orderID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := fn(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderOrder(order))
}

func (s *Server) acceptOrder(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.P2P.Accept)
}

func (s *Server) declineOrder(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.P2P.Decline)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.P2P.Cancel)
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.P2P.ConfirmPayment)
}

func (s *Server) paymentReceived(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.P2P.MarkPaymentReceived)
}

func (s *Server) disputeOrder(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.P2P.Dispute)
}

func pagination(rawLimit, rawOffset string) (limit, offset int) {
	if n, err := strconv.Atoi(rawLimit); err == nil && n > 0 {
		limit = n
	}
	if n, err := strconv.Atoi(rawOffset); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}
