package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/api"
	"github.com/rhinoxpay/rhinoxcore/config"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
	"github.com/rhinoxpay/rhinoxcore/database/testhelpers"
	"github.com/rhinoxpay/rhinoxcore/engine"
)

const adminSecret = "JBSWY3DPEHPK3PXP"

type fixture struct {
	handler http.Handler
	db      *database.Instance
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	instance := testhelpers.NewTestDatabase(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.AdminTOTPSecret = adminSecret
	e, err := engine.New(cfg, instance)
	require.NoError(t, err)
	return &fixture{handler: api.NewServer(e, cfg).Handler(), db: instance}
}

// do runs one request as the given user (0 leaves the principal header off)
// and returns the recorded response
func (f *fixture) do(t *testing.T, method, path string, userID int64, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req.Header.Set("X-Rhinox-User", strconv.FormatInt(userID, 10))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out),
		"body: %s", rec.Body.String())
}

func insertBankMethod(t *testing.T, instance *database.Instance, userID int64, bank string) int64 {
	t.Helper()
	db, err := instance.GetSQL()
	require.NoError(t, err)
	id, err := paymentmethod.Insert(context.Background(), db, &paymentmethod.PaymentMethod{
		UserID:   userID,
		Type:     paymentmethod.TypeBankAccount,
		BankName: null.StringFrom(bank),
		IsActive: true,
	})
	require.NoError(t, err)
	return id
}

func TestPrincipalRequired(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/v1/wallets", 0, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/balances", 0, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateWalletFlow(t *testing.T) {
	f := newFixture(t)
	userID := testhelpers.InsertUser(t, f.db, "api1")

	rec := f.do(t, http.MethodPost, "/v1/wallets", userID,
		map[string]string{"currency": "NGN"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// same (user, currency, kind) twice conflicts
	rec = f.do(t, http.MethodPost, "/v1/wallets", userID,
		map[string]string{"currency": "NGN"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/wallets", userID,
		map[string]string{"currency": "USDT"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/balances", userID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances struct {
		Fiat []struct {
			Currency string `json:"currency"`
			Balance  string `json:"balance"`
		} `json:"fiat"`
		Crypto []struct {
			Blockchain string `json:"blockchain"`
			Currency   string `json:"currency"`
		} `json:"crypto"`
		TotalUSD string `json:"totalUsd"`
	}
	decode(t, rec, &balances)
	require.Len(t, balances.Fiat, 1)
	assert.Equal(t, "NGN", balances.Fiat[0].Currency)
	assert.Equal(t, "0", balances.Fiat[0].Balance)
	require.Len(t, balances.Crypto, 1)
	assert.Equal(t, "TRON", balances.Crypto[0].Blockchain)
	assert.Equal(t, "0", balances.TotalUSD)
}

func TestSetRateRequiresOTP(t *testing.T) {
	f := newFixture(t)
	admin := testhelpers.InsertUser(t, f.db, "api2")
	body := map[string]string{"from": "USD", "to": "NGN", "rate": "1500"}

	rec := f.do(t, http.MethodPost, "/v1/rates", admin, body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing one-time password")

	rec = f.do(t, http.MethodPost, "/v1/rates", admin, body,
		map[string]string{"X-Rhinox-Admin-OTP": "000000"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "bad one-time password")

	code, err := totp.GenerateCode(adminSecret, time.Now())
	require.NoError(t, err)
	rec = f.do(t, http.MethodPost, "/v1/rates", admin, body,
		map[string]string{"X-Rhinox-Admin-OTP": code})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/rates/USD/NGN", admin, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote struct {
		Rate string `json:"rate"`
	}
	decode(t, rec, &quote)
	assert.Equal(t, "1500", quote.Rate)
}

func TestRateUnavailableMapsToNotFound(t *testing.T) {
	f := newFixture(t)
	userID := testhelpers.InsertUser(t, f.db, "api3")
	rec := f.do(t, http.MethodGet, "/v1/rates/GHS/JPY", userID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/v1/convert?amount=%s&from=GHS&to=JPY", "10"),
		userID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdValidationMapsToBadRequest(t *testing.T) {
	f := newFixture(t)
	userID := testhelpers.InsertUser(t, f.db, "api4")
	rec := f.do(t, http.MethodPost, "/v1/p2p/ads", userID, map[string]interface{}{
		"adType":         "sell",
		"cryptoCurrency": "USDT",
		"fiatCurrency":   "NGN",
		// price missing
		"volume":           "10",
		"minOrder":         "1500",
		"maxOrder":         "15000",
		"paymentMethodIds": []int64{1},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderEndpointsOverHTTP(t *testing.T) {
	f := newFixture(t)
	vendor := testhelpers.InsertUser(t, f.db, "api5v")
	counterparty := testhelpers.InsertUser(t, f.db, "api5c")
	testhelpers.InsertVirtualAccount(t, f.db, vendor, currency.Tron, currency.USDT, "10")
	vendorMethod := insertBankMethod(t, f.db, vendor, "GT Bank")
	cpMethod := insertBankMethod(t, f.db, counterparty, "GT Bank")

	rec := f.do(t, http.MethodPost, "/v1/p2p/ads", vendor, map[string]interface{}{
		"adType":                "sell",
		"cryptoCurrency":        "USDT",
		"fiatCurrency":          "NGN",
		"price":                 "1500",
		"volume":                "10",
		"minOrder":              "1500",
		"maxOrder":              "15000",
		"paymentMethodIds":      []int64{vendorMethod},
		"processingTimeMinutes": 30,
		"isOnline":              true,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ad struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &ad)

	// board shows the ad to the counterparty
	rec = f.do(t, http.MethodGet, "/v1/p2p/board?adType=sell", counterparty, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board []struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &board)
	require.Len(t, board, 1)
	assert.Equal(t, ad.ID, board[0].ID)

	rec = f.do(t, http.MethodPost, "/v1/p2p/orders", counterparty, map[string]interface{}{
		"adId":            ad.ID,
		"cryptoAmount":    "2",
		"paymentMethodId": cpMethod,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order struct {
		ID         int64  `json:"id"`
		Status     string `json:"status"`
		FiatAmount string `json:"fiatAmount"`
	}
	decode(t, rec, &order)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "3000", order.FiatAmount)

	// only the vendor may accept
	rec = f.do(t, http.MethodPost,
		fmt.Sprintf("/v1/p2p/orders/%d/accept", order.ID), counterparty, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost,
		fmt.Sprintf("/v1/p2p/orders/%d/accept", order.ID), vendor, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &order)
	assert.Equal(t, "awaiting_payment", order.Status)

	// replaying the accept is no longer a valid transition
	rec = f.do(t, http.MethodPost,
		fmt.Sprintf("/v1/p2p/orders/%d/accept", order.ID), vendor, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet,
		fmt.Sprintf("/v1/p2p/orders/%d", order.ID), counterparty, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// a stranger cannot read the order
	stranger := testhelpers.InsertUser(t, f.db, "api5s")
	rec = f.do(t, http.MethodGet,
		fmt.Sprintf("/v1/p2p/orders/%d", order.ID), stranger, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
