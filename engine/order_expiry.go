package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/rhinoxpay/rhinoxcore/database/repository/p2porder"
	"github.com/rhinoxpay/rhinoxcore/log"
)

const sweepScopeTimeout = 10 * time.Second

// expiryManager sweeps awaiting_payment orders past their deadline and runs
// the expired transition one order per scope
type expiryManager struct {
	engine   *Engine
	running  atomic.Value
	shutdown chan struct{}

	// paces the per-order scopes so a large backlog cannot saturate the store
	limiter *rate.Limiter
}

func newExpiryManager(e *Engine) *expiryManager {
	return &expiryManager{
		engine:  e,
		limiter: rate.NewLimiter(rate.Limit(50), 10),
	}
}

func (m *expiryManager) Started() bool {
	return m.running.Load() == true
}

func (m *expiryManager) Start() error {
	if m.Started() {
		return errors.New("order expiry manager already started")
	}
	log.Debugln(log.EngineMgr, "order expiry manager starting...")
	m.shutdown = make(chan struct{})
	go m.run()
	return nil
}

func (m *expiryManager) Stop() error {
	if !m.Started() {
		return errors.New("order expiry manager already stopped")
	}
	log.Debugln(log.EngineMgr, "order expiry manager shutting down...")
	close(m.shutdown)
	return nil
}

func (m *expiryManager) run() {
	m.engine.servicesWG.Add(1)
	m.running.Store(true)
	defer func() {
		m.running.Store(false)
		m.engine.servicesWG.Done()
		log.Debugln(log.EngineMgr, "order expiry manager shutdown")
	}()

	ticker := time.NewTicker(m.engine.Config.P2P.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.shutdown:
			return
		case <-ticker.C:
			m.SweepOnce(context.Background())
		}
	}
}

// SweepOnce expires every due order it can find, logging and skipping
// failures so one stuck order never stalls the rest
func (m *expiryManager) SweepOnce(ctx context.Context) {
	db, err := m.engine.DB.GetSQL()
	if err != nil {
		log.Errorf(log.EngineMgr, "expiry sweep: %v", err)
		return
	}
	ids, err := p2porder.ExpiredAwaitingPayment(ctx, db, time.Now().UTC(),
		m.engine.Config.P2P.SweepBatch)
	if err != nil {
		log.Errorf(log.EngineMgr, "expiry sweep query: %v", err)
		return
	}
	for _, id := range ids {
		if err := m.limiter.Wait(ctx); err != nil {
			return
		}
		scopeCtx, cancel := context.WithTimeout(ctx, sweepScopeTimeout)
		if err := m.engine.P2P.Expire(scopeCtx, id); err != nil {
			// a user transition may have won the race; log and move on
			log.Warnf(log.EngineMgr, "expire order %d: %v", id, err)
		} else {
			log.Infof(log.EngineMgr, "order %d expired by sweeper", id)
		}
		cancel()
	}
}

// SweepExpiredOrders runs one sweep outside the background loop, for
// operator tooling
func (e *Engine) SweepExpiredOrders(ctx context.Context) {
	e.expiry.SweepOnce(ctx)
}
