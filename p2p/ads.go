package p2p

import (
	"context"
	"fmt"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/repository/p2pad"
	"github.com/rhinoxpay/rhinoxcore/database/repository/paymentmethod"
	"github.com/rhinoxpay/rhinoxcore/money"
)

const defaultProcessingMinutes = 30

// AdParams carries vendor input for creating or updating an ad
type AdParams struct {
	AdType           string
	CryptoCurrency   currency.Code
	FiatCurrency     currency.Code
	Price            money.Amount
	Volume           money.Amount
	MinOrder         money.Amount
	MaxOrder         money.Amount
	AutoAccept       bool
	PaymentMethodIDs []int64
	ProcessingTime   int
	IsOnline         bool
}

func (s *Service) validateAdParams(ctx context.Context, vendorID int64, p *AdParams) error {
	if !ValidAdType(p.AdType) {
		return fmt.Errorf("%w: unknown ad type %q", common.ErrInvalidInput, p.AdType)
	}
	if !p.CryptoCurrency.IsCrypto() {
		return fmt.Errorf("%w: %s is not a supported crypto currency",
			common.ErrInvalidInput, p.CryptoCurrency)
	}
	if !p.FiatCurrency.IsFiat() {
		return fmt.Errorf("%w: %s is not a supported fiat currency",
			common.ErrInvalidInput, p.FiatCurrency)
	}
	if !p.Price.IsPositive() || !p.Volume.IsPositive() {
		return fmt.Errorf("%w: price and volume must be positive", common.ErrInvalidInput)
	}
	// order limits are expressed in fiat and must fit inside the ad's total
	// fiat value
	totalFiat := p.Volume.Mul(p.Price).Round(money.FiatScale)
	if !p.MinOrder.IsPositive() ||
		p.MinOrder.GreaterThan(p.MaxOrder) ||
		p.MaxOrder.GreaterThan(totalFiat) {
		return fmt.Errorf("%w: order limits must satisfy 0 < min %s <= max %s <= volume value %s",
			common.ErrInvalidInput, p.MinOrder, p.MaxOrder, totalFiat)
	}
	if len(p.PaymentMethodIDs) == 0 {
		return fmt.Errorf("%w: an ad needs at least one payment method", common.ErrInvalidInput)
	}

	db, err := s.db.GetSQL()
	if err != nil {
		return err
	}
	methods, err := paymentmethod.AllByIDs(ctx, db, p.PaymentMethodIDs)
	if err != nil {
		return err
	}
	if len(methods) != len(p.PaymentMethodIDs) {
		return fmt.Errorf("%w: unknown payment method listed", common.ErrNotFound)
	}
	for x := range methods {
		if methods[x].UserID != vendorID {
			return fmt.Errorf("%w: payment method %d is not owned by the vendor",
				common.ErrForbidden, methods[x].ID)
		}
		if !methods[x].IsActive {
			return fmt.Errorf("%w: payment method %d is inactive",
				common.ErrInvalidInput, methods[x].ID)
		}
	}
	return nil
}

// CreateAd publishes a standing offer for the vendor
func (s *Service) CreateAd(ctx context.Context, vendorID int64, p *AdParams) (*p2pad.Ad, error) {
	if p == nil {
		return nil, common.ErrNilPointer
	}
	if err := s.validateAdParams(ctx, vendorID, p); err != nil {
		return nil, err
	}
	processing := p.ProcessingTime
	if processing <= 0 {
		processing = defaultProcessingMinutes
	}
	ad := &p2pad.Ad{
		VendorUserID:     vendorID,
		AdType:           p.AdType,
		CryptoCurrency:   p.CryptoCurrency,
		FiatCurrency:     p.FiatCurrency,
		Price:            p.Price,
		Volume:           p.Volume,
		MinOrder:         p.MinOrder,
		MaxOrder:         p.MaxOrder,
		AutoAccept:       p.AutoAccept,
		PaymentMethodIDs: p.PaymentMethodIDs,
		ProcessingTime:   processing,
		Status:           p2pad.StatusAvailable,
		IsOnline:         p.IsOnline,
	}
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	id, err := p2pad.Insert(ctx, db, ad)
	if err != nil {
		return nil, err
	}
	return p2pad.One(ctx, db, id)
}

// GetAd returns an ad by id
func (s *Service) GetAd(ctx context.Context, adID int64) (*p2pad.Ad, error) {
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return p2pad.One(ctx, db, adID)
}

// ListMyAds returns all of the vendor's ads, any status
func (s *Service) ListMyAds(ctx context.Context, vendorID int64) ([]p2pad.Ad, error) {
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return p2pad.AllByFilter(ctx, db, &p2pad.Filter{VendorUserID: vendorID})
}

// BrowseFilter narrows the public ad board
type BrowseFilter struct {
	AdType         string
	CryptoCurrency currency.Code
	FiatCurrency   currency.Code
	Limit          int
	Offset         int
}

// BrowseAds returns the public board: available ads whose vendor is online
func (s *Service) BrowseAds(ctx context.Context, f *BrowseFilter) ([]p2pad.Ad, error) {
	if f == nil {
		f = &BrowseFilter{}
	}
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return p2pad.AllByFilter(ctx, db, &p2pad.Filter{
		AdType:         f.AdType,
		CryptoCurrency: f.CryptoCurrency,
		FiatCurrency:   f.FiatCurrency,
		Status:         p2pad.StatusAvailable,
		OnlineOnly:     true,
		Limit:          f.Limit,
		Offset:         f.Offset,
	})
}

// UpdateAd replaces the mutable fields of the vendor's ad
func (s *Service) UpdateAd(ctx context.Context, vendorID, adID int64, p *AdParams) (*p2pad.Ad, error) {
	if p == nil {
		return nil, common.ErrNilPointer
	}
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	ad, err := p2pad.One(ctx, db, adID)
	if err != nil {
		return nil, err
	}
	if ad.VendorUserID != vendorID {
		return nil, fmt.Errorf("%w: ad %d is not owned by the caller", common.ErrForbidden, adID)
	}
	// the traded pair and direction are fixed at creation
	p.AdType = ad.AdType
	p.CryptoCurrency = ad.CryptoCurrency
	p.FiatCurrency = ad.FiatCurrency
	if err := s.validateAdParams(ctx, vendorID, p); err != nil {
		return nil, err
	}
	ad.Price = p.Price
	ad.Volume = p.Volume
	ad.MinOrder = p.MinOrder
	ad.MaxOrder = p.MaxOrder
	ad.AutoAccept = p.AutoAccept
	ad.PaymentMethodIDs = p.PaymentMethodIDs
	if p.ProcessingTime > 0 {
		ad.ProcessingTime = p.ProcessingTime
	}
	ad.IsOnline = p.IsOnline
	if err := p2pad.Update(ctx, db, ad); err != nil {
		return nil, err
	}
	return p2pad.One(ctx, db, adID)
}

// UpdateAdStatus moves an ad between available, unavailable and paused, and
// toggles the vendor's online flag
func (s *Service) UpdateAdStatus(ctx context.Context, vendorID, adID int64, status string, online bool) (*p2pad.Ad, error) {
	switch status {
	case p2pad.StatusAvailable, p2pad.StatusUnavailable, p2pad.StatusPaused:
	default:
		return nil, fmt.Errorf("%w: unknown ad status %q", common.ErrInvalidInput, status)
	}
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	ad, err := p2pad.One(ctx, db, adID)
	if err != nil {
		return nil, err
	}
	if ad.VendorUserID != vendorID {
		return nil, fmt.Errorf("%w: ad %d is not owned by the caller", common.ErrForbidden, adID)
	}
	ad.Status = status
	ad.IsOnline = online
	if err := p2pad.Update(ctx, db, ad); err != nil {
		return nil, err
	}
	return p2pad.One(ctx, db, adID)
}

// UserMatchingPaymentMethods returns the caller's active methods that are
// compatible with at least one of the ad's methods, so a client can offer
// only viable choices before order creation
func (s *Service) UserMatchingPaymentMethods(ctx context.Context, userID, adID int64) ([]paymentmethod.PaymentMethod, error) {
	db, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	ad, err := p2pad.One(ctx, db, adID)
	if err != nil {
		return nil, err
	}
	vendorMethods, err := paymentmethod.AllByIDs(ctx, db, ad.PaymentMethodIDs)
	if err != nil {
		return nil, err
	}
	mine, err := paymentmethod.AllByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	var out []paymentmethod.PaymentMethod
	for x := range mine {
		if _, err := MatchPaymentMethod(&mine[x], vendorMethods); err == nil {
			out = append(out, mine[x])
		}
	}
	return out, nil
}
