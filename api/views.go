package api

import (
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/database/repository/p2pad"
	"github.com/rhinoxpay/rhinoxcore/database/repository/p2porder"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
	"github.com/rhinoxpay/rhinoxcore/database/repository/transaction"
	"github.com/rhinoxpay/rhinoxcore/history"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/p2p"
	"github.com/rhinoxpay/rhinoxcore/wallets"
)

// Wire views keep amounts as decimal strings via money.Amount's marshaller
// and flatten nullable columns to optional fields.

type adView struct {
	ID               int64        `json:"id"`
	VendorUserID     int64        `json:"vendorUserId"`
	AdType           string       `json:"adType"`
	CryptoCurrency   string       `json:"cryptoCurrency"`
	FiatCurrency     string       `json:"fiatCurrency"`
	Price            money.Amount `json:"price"`
	Volume           money.Amount `json:"volume"`
	MinOrder         money.Amount `json:"minOrder"`
	MaxOrder         money.Amount `json:"maxOrder"`
	AutoAccept       bool         `json:"autoAccept"`
	PaymentMethodIDs []int64      `json:"paymentMethodIds"`
	ProcessingTime   int          `json:"processingTimeMinutes"`
	Status           string       `json:"status"`
	IsOnline         bool         `json:"isOnline"`
	OrdersReceived   int64        `json:"ordersReceived"`
	CreatedAt        time.Time    `json:"createdAt"`
}

func renderAd(a *p2pad.Ad) adView {
	return adView{
		ID:               a.ID,
		VendorUserID:     a.VendorUserID,
		AdType:           a.AdType,
		CryptoCurrency:   a.CryptoCurrency.String(),
		FiatCurrency:     a.FiatCurrency.String(),
		Price:            a.Price,
		Volume:           a.Volume,
		MinOrder:         a.MinOrder,
		MaxOrder:         a.MaxOrder,
		AutoAccept:       a.AutoAccept,
		PaymentMethodIDs: a.PaymentMethodIDs,
		ProcessingTime:   a.ProcessingTime,
		Status:           a.Status,
		IsOnline:         a.IsOnline,
		OrdersReceived:   a.OrdersReceived,
		CreatedAt:        a.CreatedAt,
	}
}

func renderAds(ads []p2pad.Ad) []adView {
	out := make([]adView, len(ads))
	for x := range ads {
		out[x] = renderAd(&ads[x])
	}
	return out
}

type orderView struct {
	ID                 int64        `json:"id"`
	AdID               int64        `json:"adId"`
	VendorUserID       int64        `json:"vendorUserId"`
	CounterpartyUserID int64        `json:"counterpartyUserId"`
	AdType             string       `json:"adType"`
	CryptoCurrency     string       `json:"cryptoCurrency"`
	FiatCurrency       string       `json:"fiatCurrency"`
	CryptoAmount       money.Amount `json:"cryptoAmount"`
	FiatAmount         money.Amount `json:"fiatAmount"`
	Price              money.Amount `json:"price"`
	PaymentChannel     string       `json:"paymentChannel"`
	Status             string       `json:"status"`
	BuyerID            int64        `json:"buyerId"`
	SellerID           int64        `json:"sellerId"`
	ChatThreadID       string       `json:"chatThreadId"`
	ProcessingTime     int          `json:"processingTimeMinutes"`
	CreatedAt          time.Time    `json:"createdAt"`
	AcceptedAt         *time.Time   `json:"acceptedAt,omitempty"`
	ExpiresAt          *time.Time   `json:"expiresAt,omitempty"`
	PaymentMadeAt      *time.Time   `json:"paymentMadeAt,omitempty"`
	PaymentReceivedAt  *time.Time   `json:"paymentReceivedAt,omitempty"`
	CompletedAt        *time.Time   `json:"completedAt,omitempty"`
	CancelledAt        *time.Time   `json:"cancelledAt,omitempty"`
}

func optionalTime(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func renderOrder(o *p2porder.Order) orderView {
	return orderView{
		ID:                 o.ID,
		AdID:               o.AdID,
		VendorUserID:       o.VendorUserID,
		CounterpartyUserID: o.CounterpartyUserID,
		AdType:             o.AdType,
		CryptoCurrency:     o.CryptoCurrency.String(),
		FiatCurrency:       o.FiatCurrency.String(),
		CryptoAmount:       o.CryptoAmount,
		FiatAmount:         o.FiatAmount,
		Price:              o.Price,
		PaymentChannel:     o.PaymentChannel,
		Status:             o.Status,
		BuyerID:            o.BuyerID,
		SellerID:           o.SellerID,
		ChatThreadID:       o.ChatThreadID,
		ProcessingTime:     o.ProcessingTime,
		CreatedAt:          o.CreatedAt,
		AcceptedAt:         optionalTime(o.AcceptedAt),
		ExpiresAt:          optionalTime(o.ExpiresAt),
		PaymentMadeAt:      optionalTime(o.PaymentMadeAt),
		PaymentReceivedAt:  optionalTime(o.PaymentReceivedAt),
		CompletedAt:        optionalTime(o.CompletedAt),
		CancelledAt:        optionalTime(o.CancelledAt),
	}
}

func renderOrders(orders []p2porder.Order) []orderView {
	out := make([]orderView, len(orders))
	for x := range orders {
		out[x] = renderOrder(&orders[x])
	}
	return out
}

type profileView struct {
	UserID          int64        `json:"userId"`
	TotalOrders     int64        `json:"totalOrders"`
	CompletedOrders int64        `json:"completedOrders"`
	CancelledOrders int64        `json:"cancelledOrders"`
	DisputedOrders  int64        `json:"disputedOrders"`
	CompletionRate  money.Amount `json:"completionRate"`
}

func renderProfile(p *p2p.Profile) profileView {
	return profileView{
		UserID:          p.UserID,
		TotalOrders:     p.TotalOrders,
		CompletedOrders: p.CompletedOrders,
		CancelledOrders: p.CancelledOrders,
		DisputedOrders:  p.DisputedOrders,
		CompletionRate:  p.CompletionRate,
	}
}

type methodView struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	BankName      string `json:"bankName,omitempty"`
	ProviderID    string `json:"providerId,omitempty"`
	Currency      string `json:"currency,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IsActive      bool   `json:"isActive"`
}

func renderMethods(methods []paymentmethod.PaymentMethod) []methodView {
	out := make([]methodView, len(methods))
	for x := range methods {
		m := &methods[x]
		out[x] = methodView{
			ID:            m.ID,
			Type:          m.Type,
			BankName:      m.BankName.String,
			ProviderID:    m.ProviderID.String,
			Currency:      m.RhinoxCurrency.String,
			AccountName:   m.AccountName.String,
			AccountNumber: m.AccountNumber.String,
			IsActive:      m.IsActive,
		}
	}
	return out
}

type fiatBalanceView struct {
	WalletID  int64        `json:"walletId"`
	Currency  string       `json:"currency"`
	Balance   money.Amount `json:"balance"`
	Locked    money.Amount `json:"locked"`
	Available money.Amount `json:"available"`
}

type cryptoBalanceView struct {
	AccountID  int64        `json:"accountId"`
	Blockchain string       `json:"blockchain"`
	Currency   string       `json:"currency"`
	Account    money.Amount `json:"accountBalance"`
	Available  money.Amount `json:"availableBalance"`
	Frozen     money.Amount `json:"frozen"`
}

type balancesView struct {
	Fiat           []fiatBalanceView   `json:"fiat"`
	Crypto         []cryptoBalanceView `json:"crypto"`
	FiatTotalUSD   money.Amount        `json:"fiatTotalUsd"`
	CryptoTotalUSD money.Amount        `json:"cryptoTotalUsd"`
	TotalUSD       money.Amount        `json:"totalUsd"`
}

func renderBalances(b *wallets.Balances) balancesView {
	out := balancesView{
		Fiat:           []fiatBalanceView{},
		Crypto:         []cryptoBalanceView{},
		FiatTotalUSD:   b.FiatTotalUSD,
		CryptoTotalUSD: b.CryptoTotalUSD,
		TotalUSD:       b.TotalUSD,
	}
	for x := range b.Fiat {
		f := &b.Fiat[x]
		out.Fiat = append(out.Fiat, fiatBalanceView{
			WalletID:  f.WalletID,
			Currency:  f.Currency.String(),
			Balance:   f.Balance,
			Locked:    f.Locked,
			Available: f.Available,
		})
	}
	for x := range b.Crypto {
		c := &b.Crypto[x]
		out.Crypto = append(out.Crypto, cryptoBalanceView{
			AccountID:  c.AccountID,
			Blockchain: c.Blockchain.String(),
			Currency:   c.Currency.String(),
			Account:    c.Account,
			Available:  c.Available,
			Frozen:     c.Frozen,
		})
	}
	return out
}

type transactionView struct {
	ID            int64        `json:"id"`
	WalletID      int64        `json:"walletId"`
	Type          string       `json:"type"`
	Status        string       `json:"status"`
	Amount        money.Amount `json:"amount"`
	Currency      string       `json:"currency"`
	Fee           money.Amount `json:"fee"`
	Reference     string       `json:"reference"`
	Channel       string       `json:"channel,omitempty"`
	Description   string       `json:"description,omitempty"`
	P2PStep       string       `json:"p2pStep,omitempty"`
	CorrelationID string       `json:"correlationId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	CompletedAt   *time.Time   `json:"completedAt,omitempty"`
}

func renderTransaction(t *transaction.Transaction) transactionView {
	return transactionView{
		ID:            t.ID,
		WalletID:      t.WalletID,
		Type:          t.Type,
		Status:        t.Status,
		Amount:        t.Amount,
		Currency:      t.Currency.String(),
		Fee:           t.Fee,
		Reference:     t.Reference,
		Channel:       t.Channel.String,
		Description:   t.Description.String,
		P2PStep:       t.P2PStep.String,
		CorrelationID: t.CorrelationID.String,
		CreatedAt:     t.CreatedAt,
		CompletedAt:   optionalTime(t.CompletedAt),
	}
}

func renderTransactions(entries []transaction.Transaction) []transactionView {
	out := make([]transactionView, len(entries))
	for x := range entries {
		out[x] = renderTransaction(&entries[x])
	}
	return out
}

type bucketView struct {
	Label string       `json:"label"`
	Total money.Amount `json:"total"`
}

type typeEntryView struct {
	Type       string       `json:"type"`
	Currency   string       `json:"currency"`
	WalletKind string       `json:"walletKind"`
	Count      int64        `json:"count"`
	Total      money.Amount `json:"total"`
	TotalUSD   money.Amount `json:"totalUsd"`
}

type historyView struct {
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Incoming    money.Amount    `json:"incoming"`
	Outgoing    money.Amount    `json:"outgoing"`
	Net         money.Amount    `json:"net"`
	HourlyChart []bucketView    `json:"hourlyChart"`
	TypeSummary []typeEntryView `json:"typeSummary"`
}

func renderHistory(v *history.View) historyView {
	out := historyView{
		Start:       v.Start,
		End:         v.End,
		Incoming:    v.Summary.Incoming,
		Outgoing:    v.Summary.Outgoing,
		Net:         v.Summary.Net,
		HourlyChart: make([]bucketView, len(v.HourlyChart)),
		TypeSummary: []typeEntryView{},
	}
	for x := range v.HourlyChart {
		out.HourlyChart[x] = bucketView{
			Label: v.HourlyChart[x].Label,
			Total: v.HourlyChart[x].Total,
		}
	}
	for x := range v.TypeSummary {
		e := &v.TypeSummary[x]
		out.TypeSummary = append(out.TypeSummary, typeEntryView{
			Type:       e.Type,
			Currency:   e.Currency.String(),
			WalletKind: e.WalletKind,
			Count:      e.Count,
			Total:      e.Total,
			TotalUSD:   e.TotalUSD,
		})
	}
	return out
}
