// Package api is the HTTP boundary. It extracts the caller's principal from
// the transport, translates domain errors onto status codes and keeps all
// money on the wire as decimal strings.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rhinoxpay/rhinoxcore/config"
	"github.com/rhinoxpay/rhinoxcore/engine"
	"github.com/rhinoxpay/rhinoxcore/log"
)

// Server serves the REST boundary over an engine
type Server struct {
	engine *engine.Engine
	cfg    *config.Config
	http   *http.Server
}

// NewServer returns a REST server over the engine
func NewServer(e *engine.Engine, cfg *config.Config) *Server {
	s := &Server{engine: e, cfg: cfg}
	s.http = &http.Server{
		Addr:         cfg.API.ListenAddress,
		Handler:      s.newRouter(),
		ReadTimeout:  cfg.API.RequestTimeout,
		WriteTimeout: cfg.API.RequestTimeout,
	}
	return s
}

// Route binds one handler into the router table
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

func (s *Server) routes() []Route {
	return []Route{
		{"CreateWallet", http.MethodPost, "/v1/wallets", s.createWallet},
		{"ListWallets", http.MethodGet, "/v1/wallets", s.listWallets},
		{"GetBalances", http.MethodGet, "/v1/balances", s.getBalances},

		{"CreateAd", http.MethodPost, "/v1/p2p/ads", s.createAd},
		{"ListMyAds", http.MethodGet, "/v1/p2p/ads/mine", s.listMyAds},
		{"BrowseAds", http.MethodGet, "/v1/p2p/board", s.browseAds},
		{"GetAd", http.MethodGet, "/v1/p2p/ads/{id:[0-9]+}", s.getAd},
		{"UpdateAd", http.MethodPut, "/v1/p2p/ads/{id:[0-9]+}", s.updateAd},
		{"UpdateAdStatus", http.MethodPut, "/v1/p2p/ads/{id:[0-9]+}/status", s.updateAdStatus},
		{"MatchingMethods", http.MethodGet, "/v1/p2p/ads/{id:[0-9]+}/matching-methods", s.matchingMethods},

		{"CreateOrder", http.MethodPost, "/v1/p2p/orders", s.createOrder},
		{"ListMyOrders", http.MethodGet, "/v1/p2p/orders", s.listMyOrders},
		{"GetOrder", http.MethodGet, "/v1/p2p/orders/{id:[0-9]+}", s.getOrder},
		{"GetUserProfile", http.MethodGet, "/v1/p2p/profile", s.getUserProfile},
		{"AcceptOrder", http.MethodPost, "/v1/p2p/orders/{id:[0-9]+}/accept", s.acceptOrder},
		{"DeclineOrder", http.MethodPost, "/v1/p2p/orders/{id:[0-9]+}/decline", s.declineOrder},
		{"CancelOrder", http.MethodPost, "/v1/p2p/orders/{id:[0-9]+}/cancel", s.cancelOrder},
		{"ConfirmPayment", http.MethodPost, "/v1/p2p/orders/{id:[0-9]+}/confirm-payment", s.confirmPayment},
		{"PaymentReceived", http.MethodPost, "/v1/p2p/orders/{id:[0-9]+}/payment-received", s.paymentReceived},
		{"DisputeOrder", http.MethodPost, "/v1/p2p/orders/{id:[0-9]+}/dispute", s.disputeOrder},

		{"GetRate", http.MethodGet, "/v1/rates/{from}/{to}", s.getRate},
		{"ListRates", http.MethodGet, "/v1/rates", s.listRates},
		{"Convert", http.MethodGet, "/v1/convert", s.convert},
		{"SetRate", http.MethodPost, "/v1/rates", s.setRate},

		{"GetHistory", http.MethodGet, "/v1/history", s.getHistory},
		{"ListTransactions", http.MethodGet, "/v1/history/transactions", s.listTransactions},
		{"TransactionDetails", http.MethodGet, "/v1/history/transactions/{id:[0-9]+}", s.transactionDetails},
	}
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	for _, route := range s.routes() {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(restLogger(route.HandlerFunc, route.Name))
	}
	return router
}

// restLogger logs each request with its handler name and latency
func restLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Debugf(log.APIServerMgr, "%s %s %s %s",
			r.Method, r.RequestURI, name, time.Since(start))
	})
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Serve blocks on the listener until Shutdown
func (s *Server) Serve() error {
	log.Infof(log.APIServerMgr, "REST server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
