// Package rates resolves administered exchange rates with inverse fallback
// and performs currency conversion. The P2P engine never consults this
// table; orders settle at the ad's frozen price.
package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/database/repository/exchangerate"
	"github.com/rhinoxpay/rhinoxcore/money"
)

// Cache sizing for read-through resolution
const (
	cacheCapacity = 256
	cacheTTL      = 30 * time.Second
)

// rateScale is the rounding scale for computed reciprocals
const rateScale int32 = 8

// Quote is a resolved rate for a currency pair
type Quote struct {
	From    currency.Code
	To      currency.Code
	Rate    money.Amount
	Inverse money.Amount
}

// Service resolves and administers exchange rates
type Service struct {
	db    *database.Instance
	cache *quoteCache
}

// NewService returns a rate service backed by the database instance
func NewService(db *database.Instance, clock common.Clock) *Service {
	if clock == nil {
		clock = common.RealClock{}
	}
	return &Service{
		db:    db,
		cache: newQuoteCache(cacheCapacity, cacheTTL, clock),
	}
}

// GetRate resolves from→to. Resolution order: identity, direct active row,
// inverse active row reciprocated. Unresolvable pairs fail with
// ErrRateUnavailable.
func (s *Service) GetRate(ctx context.Context, from, to currency.Code) (*Quote, error) {
	if from.IsEmpty() || to.IsEmpty() {
		return nil, fmt.Errorf("%w: both currencies are required", common.ErrInvalidInput)
	}
	if from.Equal(to) {
		one := money.FromInt(1)
		return &Quote{From: from, To: to, Rate: one, Inverse: one}, nil
	}

	key := from.String() + "/" + to.String()
	if q := s.cache.get(key); q != nil {
		return q, nil
	}

	sqlDB, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}

	direct, err := exchangerate.One(ctx, sqlDB, from, to)
	if err == nil {
		q, err := quoteFromDirect(direct)
		if err != nil {
			return nil, err
		}
		s.cache.add(key, q)
		return q, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	inverse, err := exchangerate.One(ctx, sqlDB, to, from)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s to %s", common.ErrRateUnavailable, from, to)
		}
		return nil, err
	}
	q, err := quoteFromInverse(inverse, from, to)
	if err != nil {
		return nil, err
	}
	s.cache.add(key, q)
	return q, nil
}

func quoteFromDirect(row *exchangerate.ExchangeRate) (*Quote, error) {
	q := &Quote{From: row.FromCurrency, To: row.ToCurrency, Rate: row.Rate}
	if stored, ok := row.StoredInverse(); ok {
		q.Inverse = stored
		return q, nil
	}
	computed, err := row.Rate.Reciprocal(rateScale)
	if err != nil {
		return nil, fmt.Errorf("%w: zero rate stored for %s/%s",
			common.ErrInternal, row.FromCurrency, row.ToCurrency)
	}
	q.Inverse = computed
	return q, nil
}

// quoteFromInverse builds a from→to quote out of the stored to→from row
func quoteFromInverse(row *exchangerate.ExchangeRate, from, to currency.Code) (*Quote, error) {
	if stored, ok := row.StoredInverse(); ok {
		return &Quote{From: from, To: to, Rate: stored, Inverse: row.Rate}, nil
	}
	computed, err := row.Rate.Reciprocal(rateScale)
	if err != nil {
		return nil, fmt.Errorf("%w: zero rate stored for %s/%s",
			common.ErrInternal, row.FromCurrency, row.ToCurrency)
	}
	return &Quote{From: from, To: to, Rate: computed, Inverse: row.Rate}, nil
}

// Convert returns amount × rate(from, to)
func (s *Service) Convert(ctx context.Context, amount money.Amount, from, to currency.Code) (money.Amount, error) {
	q, err := s.GetRate(ctx, from, to)
	if err != nil {
		return money.Zero, err
	}
	return amount.Mul(q.Rate), nil
}

// List returns the administered rate table
func (s *Service) List(ctx context.Context, activeOnly bool) ([]exchangerate.ExchangeRate, error) {
	sqlDB, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return exchangerate.All(ctx, sqlDB, activeOnly)
}

// ListFromBase returns active rates quoted from base
func (s *Service) ListFromBase(ctx context.Context, base currency.Code) ([]exchangerate.ExchangeRate, error) {
	if base.IsEmpty() {
		return nil, fmt.Errorf("%w: base currency is required", common.ErrInvalidInput)
	}
	sqlDB, err := s.db.GetSQL()
	if err != nil {
		return nil, err
	}
	return exchangerate.AllFromBase(ctx, sqlDB, base)
}

// SetRate administers the rate for (from, to). Rate must be positive; an
// optional stored inverse is kept verbatim for exact reciprocal display.
func (s *Service) SetRate(ctx context.Context, from, to currency.Code, rate money.Amount, inverse *money.Amount) error {
	if from.IsEmpty() || to.IsEmpty() || from.Equal(to) {
		return fmt.Errorf("%w: invalid currency pair %s/%s", common.ErrInvalidInput, from, to)
	}
	if !rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive, got %s", common.ErrInvalidInput, rate)
	}
	inverseCol := null.String{}
	if inverse != nil {
		if !inverse.IsPositive() {
			return fmt.Errorf("%w: inverse rate must be positive, got %s",
				common.ErrInvalidInput, inverse)
		}
		inverseCol = null.StringFrom(inverse.String())
	}
	sqlDB, err := s.db.GetSQL()
	if err != nil {
		return err
	}
	err = exchangerate.Upsert(ctx, sqlDB, &exchangerate.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         rate,
		InverseRate:  inverseCol,
		Active:       true,
	})
	if err != nil {
		return err
	}
	s.cache.purge()
	return nil
}
