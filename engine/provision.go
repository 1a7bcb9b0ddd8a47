package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/currency"
	"github.com/rhinoxpay/rhinoxcore/database/repository/provisionjob"
	"github.com/rhinoxpay/rhinoxcore/database/repository/virtualaccount"
	"github.com/rhinoxpay/rhinoxcore/database/repository/wallet"
	"github.com/rhinoxpay/rhinoxcore/log"
)

// provisionManager drains the wallet provisioning queue. Delivery is
// at-least-once; the worker reconciles against existing rows before creating
// anything, so replays are harmless.
type provisionManager struct {
	engine   *Engine
	running  atomic.Value
	shutdown chan struct{}
}

func newProvisionManager(e *Engine) *provisionManager {
	return &provisionManager{engine: e}
}

func (m *provisionManager) Started() bool {
	return m.running.Load() == true
}

func (m *provisionManager) Start() error {
	if m.Started() {
		return errors.New("provision manager already started")
	}
	log.Debugln(log.EngineMgr, "provision manager starting...")
	m.shutdown = make(chan struct{})
	go m.run()
	return nil
}

func (m *provisionManager) Stop() error {
	if !m.Started() {
		return errors.New("provision manager already stopped")
	}
	log.Debugln(log.EngineMgr, "provision manager shutting down...")
	close(m.shutdown)
	return nil
}

func (m *provisionManager) run() {
	m.engine.servicesWG.Add(1)
	m.running.Store(true)
	defer func() {
		m.running.Store(false)
		m.engine.servicesWG.Done()
		log.Debugln(log.EngineMgr, "provision manager shutdown")
	}()

	ticker := time.NewTicker(m.engine.Config.Provision.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.shutdown:
			return
		case <-ticker.C:
			m.drainOnce(context.Background())
		}
	}
}

func (m *provisionManager) drainOnce(ctx context.Context) {
	db, err := m.engine.DB.GetSQL()
	if err != nil {
		log.Errorf(log.EngineMgr, "provision drain: %v", err)
		return
	}
	jobs, err := provisionjob.NextQueued(ctx, db, 50)
	if err != nil {
		log.Errorf(log.EngineMgr, "provision queue read: %v", err)
		return
	}
	for x := range jobs {
		if err := m.provisionUser(ctx, jobs[x].UserID); err != nil {
			terminal := jobs[x].Attempts+1 >= m.engine.Config.Provision.MaxAttempts
			log.Warnf(log.EngineMgr, "provision user %d (attempt %d, terminal %v): %v",
				jobs[x].UserID, jobs[x].Attempts+1, terminal, err)
			if markErr := provisionjob.MarkFailed(ctx, db, jobs[x].ID, terminal,
				err.Error()); markErr != nil {
				log.Errorf(log.EngineMgr, "provision job %d mark failed: %v",
					jobs[x].ID, markErr)
			}
			continue
		}
		if err := provisionjob.MarkDone(ctx, db, jobs[x].ID); err != nil {
			log.Errorf(log.EngineMgr, "provision job %d mark done: %v", jobs[x].ID, err)
		}
	}
}

// provisionUser ensures the user holds the platform's default fiat wallet
// and crypto account, creating only what is missing
func (m *provisionManager) provisionUser(ctx context.Context, userID int64) error {
	db, err := m.engine.DB.GetSQL()
	if err != nil {
		return err
	}
	fiat := currency.NewCode(m.engine.Config.Provision.DefaultFiat)
	coin := currency.NewCode(m.engine.Config.Provision.DefaultCoin)

	_, err = wallet.OneByUserCurrency(ctx, db, userID, fiat, wallet.KindFiat)
	if errors.Is(err, common.ErrNotFound) {
		_, err = m.engine.Wallets.CreateWallet(ctx, userID, fiat, "")
		if errors.Is(err, common.ErrDuplicateKey) {
			err = nil
		}
	}
	if err != nil {
		return err
	}

	_, err = virtualaccount.OneByUserCurrency(ctx, db, userID, coin)
	if errors.Is(err, common.ErrNotFound) {
		_, err = m.engine.Wallets.CreateWallet(ctx, userID, coin, "")
		if errors.Is(err, common.ErrDuplicateKey) {
			err = nil
		}
	}
	return err
}

// DrainProvisioningQueue runs one pass over the queued jobs outside the
// background loop, for operator tooling
func (e *Engine) DrainProvisioningQueue(ctx context.Context) {
	e.provision.drainOnce(ctx)
}

// EnqueueProvisioning queues wallet provisioning for a newly verified user
func (e *Engine) EnqueueProvisioning(ctx context.Context, userID int64) error {
	db, err := e.DB.GetSQL()
	if err != nil {
		return err
	}
	return provisionjob.Enqueue(ctx, db, userID)
}
