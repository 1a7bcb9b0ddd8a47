package p2p

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database/repository"
	"github.com/rhinoxpay/rhinoxcore/database/repository/p2pad"
	"github.com/rhinoxpay/rhinoxcore/database/repository/p2porder"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
	"github.com/rhinoxpay/rhinoxcore/database/repository/virtualaccount"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/log"
	"github.com/rhinoxpay/rhinoxcore/money"
	"github.com/rhinoxpay/rhinoxcore/transfer"
)

// OrderParams carries the counterparty's order request
type OrderParams struct {
	AdID            int64
	CryptoAmount    money.Amount
	PaymentMethodID int64 // one of the counterparty's own methods
}

// CreateOrder opens an order against an ad on behalf of the counterparty.
// Validation, the ad counter bump and the optional auto-accept all run on one
// serializable scope.
func (s *Service) CreateOrder(ctx context.Context, counterpartyID int64, p *OrderParams) (*p2porder.Order, error) {
	if p == nil {
		return nil, common.ErrNilPointer
	}
	if !p.CryptoAmount.IsPositive() {
		return nil, fmt.Errorf("%w: crypto amount must be positive, got %s",
			common.ErrInvalidInput, p.CryptoAmount)
	}

	var order *p2porder.Order
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		ad, err := p2pad.One(ctx, tx, p.AdID)
		if err != nil {
			return err
		}
		if ad.VendorUserID == counterpartyID {
			return fmt.Errorf("%w: cannot trade against your own ad", common.ErrForbidden)
		}
		if ad.Status != p2pad.StatusAvailable || !ad.IsOnline {
			return fmt.Errorf("%w: ad %d is not accepting orders", common.ErrInvalidInput, ad.ID)
		}

		roles, err := Resolve(ad.AdType, ad.VendorUserID, counterpartyID)
		if err != nil {
			return err
		}

		fiatAmount := p.CryptoAmount.Mul(ad.Price).Round(money.FiatScale)
		if fiatAmount.LessThan(ad.MinOrder) || fiatAmount.GreaterThan(ad.MaxOrder) {
			return fmt.Errorf("%w: order value %s %s is outside limits [%s, %s]",
				common.ErrInvalidInput, fiatAmount, ad.FiatCurrency, ad.MinOrder, ad.MaxOrder)
		}
		if p.CryptoAmount.GreaterThan(ad.Volume) {
			return fmt.Errorf("%w: order amount %s exceeds ad volume %s",
				common.ErrInvalidInput, p.CryptoAmount, ad.Volume)
		}

		chosen, err := paymentmethod.One(ctx, tx, p.PaymentMethodID)
		if err != nil {
			return err
		}
		if chosen.UserID != counterpartyID || !chosen.IsActive {
			return fmt.Errorf("%w: payment method %d is not usable by the caller",
				common.ErrPaymentMethodMismatch, chosen.ID)
		}
		vendorMethods, err := paymentmethod.AllByIDs(ctx, tx, ad.PaymentMethodIDs)
		if err != nil {
			return err
		}
		matched, err := MatchPaymentMethod(chosen, vendorMethods)
		if err != nil {
			return err
		}

		// balance preconditions, checked only; the freeze happens at accept
		sellerVA, err := virtualaccount.OneByUserCurrency(ctx, tx, roles.SellerID, ad.CryptoCurrency)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: seller holds no %s", common.ErrInsufficientFunds,
					ad.CryptoCurrency)
			}
			return err
		}
		if sellerVA.AvailableBalance.LessThan(p.CryptoAmount) {
			return &common.InsufficientFundsError{
				Required:  p.CryptoAmount.String(),
				Available: sellerVA.AvailableBalance.String(),
			}
		}
		if ad.AdType == AdTypeBuy {
			buyerWallet, err := wallet.OneByUserCurrency(ctx, tx, roles.BuyerID,
				ad.FiatCurrency, wallet.KindFiat)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("%w: buyer holds no %s wallet",
						common.ErrInsufficientFunds, ad.FiatCurrency)
				}
				return err
			}
			if buyerWallet.Available().LessThan(fiatAmount) {
				return &common.InsufficientFundsError{
					Required:  fiatAmount.String(),
					Available: buyerWallet.Available().String(),
				}
			}
		}

		thread, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("%w: chat thread id: %v", common.ErrInternal, err)
		}

		id, err := p2porder.Insert(ctx, tx, &p2porder.Order{
			AdID:                 ad.ID,
			VendorUserID:         ad.VendorUserID,
			CounterpartyUserID:   counterpartyID,
			AdType:               ad.AdType,
			CryptoCurrency:       ad.CryptoCurrency,
			FiatCurrency:         ad.FiatCurrency,
			CryptoAmount:         p.CryptoAmount,
			FiatAmount:           fiatAmount,
			Price:                ad.Price,
			PaymentMethodID:      matched.ID,
			CounterpartyMethodID: chosen.ID,
			PaymentChannel:       channelForMethod(matched),
			Status:               StatusPending,
			BuyerID:              roles.BuyerID,
			SellerID:             roles.SellerID,
			ChatThreadID:         thread.String(),
			ProcessingTime:       ad.ProcessingTime,
			Metadata: fmt.Sprintf(`{"counterpartyMethodId":%d,"counterpartyMethodType":%q}`,
				chosen.ID, chosen.Type),
		})
		if err != nil {
			return err
		}
		if err := p2pad.IncrementOrdersReceived(ctx, tx, ad.ID); err != nil {
			return err
		}

		order, err = p2porder.One(ctx, tx, id)
		if err != nil {
			return err
		}
		if ad.AutoAccept {
			if err := s.accept(ctx, tx, order); err != nil {
				return err
			}
			order, err = p2porder.One(ctx, tx, id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Accept moves the order into awaiting_payment and freezes the seller's
// crypto in escrow. Vendor only.
func (s *Service) Accept(ctx context.Context, vendorID, orderID int64) (*p2porder.Order, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, tx *sql.Tx, o *p2porder.Order) error {
		if o.VendorUserID != vendorID {
			return fmt.Errorf("%w: only the vendor may accept order %d",
				common.ErrForbidden, o.ID)
		}
		if o.Status != StatusPending {
			return &common.TransitionError{Current: o.Status, Attempted: "accept"}
		}
		return s.accept(ctx, tx, o)
	})
}

// accept performs the pending to awaiting_payment transition on an open scope
func (s *Service) accept(ctx context.Context, exec repository.Executor, o *p2porder.Order) error {
	now := s.clock.Now()
	expires := now.Add(time.Duration(o.ProcessingTime) * time.Minute)
	err := p2porder.UpdateStatus(ctx, exec, o.ID, StatusPending, StatusAwaitingPayment,
		map[string]time.Time{"accepted_at": now, "expires_at": expires})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &common.TransitionError{Current: o.Status, Attempted: "accept"}
		}
		return err
	}

	sellerVA, err := virtualaccount.OneByUserCurrency(ctx, exec, o.SellerID, o.CryptoCurrency)
	if err != nil {
		return err
	}
	if err := s.funds.Freeze(ctx, exec, sellerVA.ID, o.CryptoAmount); err != nil {
		return err
	}

	sellerRef, err := s.ledger.CryptoWalletRef(ctx, exec, o.SellerID, o.CryptoCurrency)
	if err != nil {
		return err
	}
	_, err = s.ledger.Post(ctx, exec, &ledger.PostParams{
		WalletID:    sellerRef,
		Type:        ledger.TypeP2P,
		Status:      ledger.StatusCompleted,
		Amount:      o.CryptoAmount,
		Currency:    o.CryptoCurrency,
		Channel:     o.PaymentChannel,
		Description: fmt.Sprintf("escrow frozen for P2P order %d", o.ID),
		P2PStep:     ledger.StepOrderAccepted,
		Metadata:    orderMetadata(o),
	})
	return err
}

// Decline cancels a pending order. Vendor only, no balance effect.
func (s *Service) Decline(ctx context.Context, vendorID, orderID int64) (*p2porder.Order, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, tx *sql.Tx, o *p2porder.Order) error {
		if o.VendorUserID != vendorID {
			return fmt.Errorf("%w: only the vendor may decline order %d",
				common.ErrForbidden, o.ID)
		}
		if o.Status != StatusPending {
			return &common.TransitionError{Current: o.Status, Attempted: "decline"}
		}
		return p2porder.UpdateStatus(ctx, tx, o.ID, StatusPending, StatusCancelled,
			map[string]time.Time{"cancelled_at": s.clock.Now()})
	})
}

// Cancel cancels an order. Before acceptance either party may cancel with no
// balance effect; after acceptance the escrow is returned to the seller.
func (s *Service) Cancel(ctx context.Context, userID, orderID int64) (*p2porder.Order, error) {
	if err := s.expireIfDue(ctx, orderID); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, func(ctx context.Context, tx *sql.Tx, o *p2porder.Order) error {
		if o.VendorUserID != userID && o.CounterpartyUserID != userID {
			return fmt.Errorf("%w: not a participant of order %d", common.ErrForbidden, o.ID)
		}
		switch o.Status {
		case StatusPending:
			return p2porder.UpdateStatus(ctx, tx, o.ID, StatusPending, StatusCancelled,
				map[string]time.Time{"cancelled_at": s.clock.Now()})
		case StatusAwaitingPayment:
			if err := p2porder.UpdateStatus(ctx, tx, o.ID, StatusAwaitingPayment,
				StatusCancelled, map[string]time.Time{"cancelled_at": s.clock.Now()}); err != nil {
				return err
			}
			return s.releaseEscrow(ctx, tx, o, "escrow released on cancellation")
		default:
			return &common.TransitionError{Current: o.Status, Attempted: "cancel"}
		}
	})
}

// ConfirmPayment marks the fiat side as paid. Offline orders record the
// timestamp and wait for the seller; rhinoxpay orders execute the fiat
// transfer and run all the way to completed in the same scope. Offline
// confirmation is buyer-only; the rhinoxpay settlement moves funds
// programmatically, so either participant may trigger it.
func (s *Service) ConfirmPayment(ctx context.Context, userID, orderID int64) (*p2porder.Order, error) {
	if err := s.expireIfDue(ctx, orderID); err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, func(ctx context.Context, tx *sql.Tx, o *p2porder.Order) error {
		roles, err := Resolve(o.AdType, o.VendorUserID, o.CounterpartyUserID)
		if err != nil {
			return err
		}
		if o.PaymentChannel == ChannelOffline {
			if roles.BuyerID != userID {
				return fmt.Errorf("%w: only the buyer may confirm payment on order %d",
					common.ErrForbidden, o.ID)
			}
		} else if o.VendorUserID != userID && o.CounterpartyUserID != userID {
			return fmt.Errorf("%w: not a participant of order %d", common.ErrForbidden, o.ID)
		}
		if o.Status != StatusAwaitingPayment {
			return &common.TransitionError{Current: o.Status, Attempted: "confirm payment"}
		}

		now := s.clock.Now()
		if o.PaymentChannel == ChannelOffline {
			return p2porder.UpdateStatus(ctx, tx, o.ID, StatusAwaitingPayment,
				StatusPaymentMade, map[string]time.Time{"payment_made_at": now})
		}

		// rhinoxpay settles internally: fiat leg plus crypto release, one scope
		buyerWallet, err := wallet.OneByUserCurrency(ctx, tx, roles.BuyerID,
			o.FiatCurrency, wallet.KindFiat)
		if err != nil {
			return err
		}
		sellerWallet, err := wallet.OneByUserCurrency(ctx, tx, roles.SellerID,
			o.FiatCurrency, wallet.KindFiat)
		if err != nil {
			return err
		}
		_, err = s.transfer.Execute(ctx, tx, &transfer.Params{
			SourceWalletID: buyerWallet.ID,
			DestWalletID:   sellerWallet.ID,
			Amount:         o.FiatAmount,
			Type:           ledger.TypeP2P,
			Channel:        ChannelRhinoxPayID,
			Description:    fmt.Sprintf("P2P order %d fiat settlement", o.ID),
			DebitStep:      ledger.StepFiatSent,
			CreditStep:     ledger.StepFiatReceived,
			Metadata:       orderMetadata(o),
		})
		if err != nil {
			return err
		}
		if err := p2porder.UpdateStatus(ctx, tx, o.ID, StatusAwaitingPayment,
			StatusCompleted, map[string]time.Time{
				"payment_made_at":     now,
				"payment_received_at": now,
				"completed_at":        now,
			}); err != nil {
			return err
		}
		return s.releaseCrypto(ctx, tx, o, roles)
	})
}

// MarkPaymentReceived is the seller confirming fiat arrival on an offline
// order; the crypto release to the buyer runs in the same scope.
func (s *Service) MarkPaymentReceived(ctx context.Context, userID, orderID int64) (*p2porder.Order, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, tx *sql.Tx, o *p2porder.Order) error {
		roles, err := Resolve(o.AdType, o.VendorUserID, o.CounterpartyUserID)
		if err != nil {
			return err
		}
		if roles.SellerID != userID {
			return fmt.Errorf("%w: only the seller may mark payment received on order %d",
				common.ErrForbidden, o.ID)
		}
		if o.Status != StatusPaymentMade {
			return &common.TransitionError{Current: o.Status, Attempted: "mark payment received"}
		}
		now := s.clock.Now()
		if err := p2porder.UpdateStatus(ctx, tx, o.ID, StatusPaymentMade,
			StatusCompleted, map[string]time.Time{
				"payment_received_at": now,
				"completed_at":        now,
			}); err != nil {
			return err
		}
		return s.releaseCrypto(ctx, tx, o, roles)
	})
}

// Dispute freezes the order in place. Either party may raise one on any
// non-terminal status; escrow is not released.
func (s *Service) Dispute(ctx context.Context, userID, orderID int64) (*p2porder.Order, error) {
	return s.transition(ctx, orderID, func(ctx context.Context, tx *sql.Tx, o *p2porder.Order) error {
		if o.VendorUserID != userID && o.CounterpartyUserID != userID {
			return fmt.Errorf("%w: not a participant of order %d", common.ErrForbidden, o.ID)
		}
		if IsTerminalStatus(o.Status) || o.Status == StatusDisputed {
			return &common.TransitionError{Current: o.Status, Attempted: "dispute"}
		}
		return p2porder.UpdateStatus(ctx, tx, o.ID, o.Status, StatusDisputed, nil)
	})
}

// Expire transitions an awaiting_payment order past its deadline to expired
// and returns the escrow. Replaying on an already expired order is a no-op.
func (s *Service) Expire(ctx context.Context, orderID int64) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		o, err := p2porder.One(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusExpired {
			return nil
		}
		if o.Status != StatusAwaitingPayment {
			return &common.TransitionError{Current: o.Status, Attempted: "expire"}
		}
		if !o.ExpiresAt.Valid || s.clock.Now().Before(o.ExpiresAt.Time) {
			return fmt.Errorf("%w: order %d has not reached its deadline",
				common.ErrInvalidTransition, o.ID)
		}
		if err := p2porder.UpdateStatus(ctx, tx, o.ID, StatusAwaitingPayment,
			StatusExpired, nil); err != nil {
			return err
		}
		return s.releaseEscrow(ctx, tx, o, "escrow released on expiry")
	})
}

// expireIfDue runs the expired transition in its own scope when the order's
// payment deadline has passed, covering deployments where the sweeper lags or
// cannot run. A concurrent transition winning the race is not an error.
func (s *Service) expireIfDue(ctx context.Context, orderID int64) error {
	db, err := s.db.GetSQL()
	if err != nil {
		return err
	}
	o, err := p2porder.One(ctx, db, orderID)
	if err != nil {
		return err
	}
	if o.Status != StatusAwaitingPayment || !o.ExpiresAt.Valid ||
		s.clock.Now().Before(o.ExpiresAt.Time) {
		return nil
	}
	if err := s.Expire(ctx, orderID); err != nil &&
		!errors.Is(err, common.ErrInvalidTransition) {
		return err
	}
	return nil
}

// releaseEscrow unfreezes the seller's crypto and posts the compensating
// entry for the original order_accepted freeze
func (s *Service) releaseEscrow(ctx context.Context, exec repository.Executor, o *p2porder.Order, description string) error {
	sellerVA, err := virtualaccount.OneByUserCurrency(ctx, exec, o.SellerID, o.CryptoCurrency)
	if err != nil {
		return err
	}
	if err := s.funds.Unfreeze(ctx, exec, sellerVA.ID, o.CryptoAmount); err != nil {
		return err
	}
	sellerRef, err := s.ledger.CryptoWalletRef(ctx, exec, o.SellerID, o.CryptoCurrency)
	if err != nil {
		return err
	}
	_, err = s.ledger.Post(ctx, exec, &ledger.PostParams{
		WalletID:    sellerRef,
		Type:        ledger.TypeP2P,
		Status:      ledger.StatusCompleted,
		Amount:      o.CryptoAmount,
		Currency:    o.CryptoCurrency,
		Channel:     o.PaymentChannel,
		Description: fmt.Sprintf("%s, P2P order %d", description, o.ID),
		P2PStep:     ledger.StepCryptoUnfrozen,
		Metadata:    orderMetadata(o),
	})
	return err
}

// releaseCrypto settles the escrow out of the seller's account into the
// buyer's, creating the buyer's virtual account on first receipt, and posts
// the payment_received and crypto_debited/crypto_credited entries
func (s *Service) releaseCrypto(ctx context.Context, exec repository.Executor, o *p2porder.Order, roles Roles) error {
	sellerVA, err := virtualaccount.OneByUserCurrency(ctx, exec, roles.SellerID, o.CryptoCurrency)
	if err != nil {
		return err
	}
	buyerVA, err := virtualaccount.OneByUserCurrency(ctx, exec, roles.BuyerID, o.CryptoCurrency)
	if errors.Is(err, common.ErrNotFound) {
		var id int64
		id, err = virtualaccount.Insert(ctx, exec, &virtualaccount.VirtualAccount{
			UserID:     roles.BuyerID,
			Blockchain: sellerVA.Blockchain,
			Currency:   o.CryptoCurrency,
			Active:     true,
		})
		if err != nil {
			return err
		}
		buyerVA, err = virtualaccount.One(ctx, exec, id)
	}
	if err != nil {
		return err
	}

	sellerRef, err := s.ledger.CryptoWalletRef(ctx, exec, roles.SellerID, o.CryptoCurrency)
	if err != nil {
		return err
	}
	buyerRef, err := s.ledger.CryptoWalletRef(ctx, exec, roles.BuyerID, o.CryptoCurrency)
	if err != nil {
		return err
	}

	if _, err := s.ledger.Post(ctx, exec, &ledger.PostParams{
		WalletID:    sellerRef,
		Type:        ledger.TypeP2P,
		Status:      ledger.StatusCompleted,
		Amount:      o.FiatAmount,
		Currency:    o.FiatCurrency,
		Channel:     o.PaymentChannel,
		Description: fmt.Sprintf("fiat payment confirmed for P2P order %d", o.ID),
		P2PStep:     ledger.StepPaymentReceived,
		Metadata:    orderMetadata(o),
	}); err != nil {
		return err
	}

	if err := s.funds.SettleOut(ctx, exec, sellerVA.ID, o.CryptoAmount); err != nil {
		return err
	}
	if err := s.funds.SettleIn(ctx, exec, buyerVA.ID, o.CryptoAmount); err != nil {
		return err
	}

	_, err = s.ledger.PostPair(ctx, exec,
		&ledger.PostParams{
			WalletID:    sellerRef,
			Type:        ledger.TypeP2P,
			Status:      ledger.StatusCompleted,
			Amount:      o.CryptoAmount,
			Currency:    o.CryptoCurrency,
			Channel:     o.PaymentChannel,
			Description: fmt.Sprintf("crypto released for P2P order %d", o.ID),
			P2PStep:     ledger.StepCryptoDebited,
			Metadata:    orderMetadata(o),
		},
		&ledger.PostParams{
			WalletID:    buyerRef,
			Type:        ledger.TypeP2P,
			Status:      ledger.StatusCompleted,
			Amount:      o.CryptoAmount,
			Currency:    o.CryptoCurrency,
			Channel:     o.PaymentChannel,
			Description: fmt.Sprintf("crypto received for P2P order %d", o.ID),
			P2PStep:     ledger.StepCryptoCredited,
			Metadata:    orderMetadata(o),
		})
	return err
}

// transition loads the order, applies fn on a serializable scope and returns
// the reloaded row
func (s *Service) transition(ctx context.Context, orderID int64, fn func(context.Context, *sql.Tx, *p2porder.Order) error) (*p2porder.Order, error) {
	var out *p2porder.Order
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		o, err := p2porder.One(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := fn(ctx, tx, o); err != nil {
			return err
		}
		out, err = p2porder.One(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder returns one of the caller's orders, expiring it lazily when its
// payment deadline has passed
func (s *Service) GetOrder(ctx context.Context, userID, orderID int64) (*p2porder.Order, error) {
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	o, err := p2porder.One(ctx, db, orderID)
	if err != nil {
		return nil, err
	}
	if o.VendorUserID != userID && o.CounterpartyUserID != userID {
		return nil, fmt.Errorf("%w: not a participant of order %d", common.ErrForbidden, orderID)
	}
	if o.Status == StatusAwaitingPayment && o.ExpiresAt.Valid &&
		!s.clock.Now().Before(o.ExpiresAt.Time) {
		if err := s.expireIfDue(ctx, orderID); err != nil {
			// another actor may have transitioned it first; serve what is stored
			log.Warnf(log.OrderMgr, "lazy expiry of order %d: %v", orderID, err)
		}
		return p2porder.One(ctx, db, orderID)
	}
	return o, nil
}

// ListMyOrders returns the caller's orders, optionally filtered by status
func (s *Service) ListMyOrders(ctx context.Context, userID int64, status string, limit, offset int) ([]p2porder.Order, error) {
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return p2porder.AllByFilter(ctx, db, &p2porder.Filter{
		ParticipantID: userID,
		Status:        status,
		Limit:         limit,
		Offset:        offset,
	})
}

// Profile summarizes a user's trading record
type Profile struct {
	UserID          int64
	TotalOrders     int64
	CompletedOrders int64
	CancelledOrders int64
	DisputedOrders  int64
	CompletionRate  money.Amount // percentage, two decimals
}

// GetUserProfile aggregates the caller's order counts and completion rate
func (s *Service) GetUserProfile(ctx context.Context, userID int64) (*Profile, error) {
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	counts, err := p2porder.CountByStatus(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	p := &Profile{UserID: userID}
	for status, n := range counts {
		p.TotalOrders += n
		switch status {
		case StatusCompleted:
			p.CompletedOrders += n
		case StatusCancelled, StatusExpired:
			p.CancelledOrders += n
		case StatusDisputed:
			p.DisputedOrders += n
		}
	}
	if p.TotalOrders > 0 {
		rate, err := money.FromInt(p.CompletedOrders).Mul(money.FromInt(100)).
			Div(money.FromInt(p.TotalOrders), money.FiatScale)
		if err != nil {
			return nil, err
		}
		p.CompletionRate = rate
	}
	return p, nil
}

func orderMetadata(o *p2porder.Order) map[string]interface{} {
	return map[string]interface{}{
		"orderId":  o.ID,
		"adId":     o.AdID,
		"buyerId":  o.BuyerID,
		"sellerId": o.SellerID,
	}
}
