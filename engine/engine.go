// Package engine wires the core services and runs the background subsystems:
// the order expiry sweeper and the wallet provisioning worker.
package engine

import (
	"errors"
	"sync"

	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/config"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/funds"
	"github.com/rhinoxpay/rhinoxcore/history"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/log"
	"github.com/rhinoxpay/rhinoxcore/p2p"
	"github.com/rhinoxpay/rhinoxcore/rates"
	"github.com/rhinoxpay/rhinoxcore/transfer"
	"github.com/rhinoxpay/rhinoxcore/wallets"
)

// Engine owns the service graph and the background subsystems
type Engine struct {
	Config *config.Config
	DB     *database.Instance

	Ledger   *ledger.Service
	Funds    *funds.Engine
	Transfer *transfer.Executor
	Rates    *rates.Service
	P2P      *p2p.Service
	Wallets  *wallets.Manager
	History  *history.Aggregator

	expiry    *expiryManager
	provision *provisionManager

	servicesWG sync.WaitGroup
}

// New builds the service graph on top of a connected database instance
func New(cfg *config.Config, db *database.Instance) (*Engine, error) {
	if cfg == nil || db == nil {
		return nil, common.ErrNilPointer
	}
	clock := common.RealClock{}
	ledgerSvc := ledger.NewService(clock)
	fundsEng := funds.NewEngine()
	transferExec := transfer.NewExecutor(db, ledgerSvc, fundsEng)
	rateSvc := rates.NewService(db, clock)

	e := &Engine{
		Config:   cfg,
		DB:       db,
		Ledger:   ledgerSvc,
		Funds:    fundsEng,
		Transfer: transferExec,
		Rates:    rateSvc,
		P2P:      p2p.NewService(db, ledgerSvc, fundsEng, transferExec, clock),
		Wallets:  wallets.NewManager(db, rateSvc),
		History:  history.NewAggregator(db, rateSvc, clock),
	}
	e.expiry = newExpiryManager(e)
	e.provision = newProvisionManager(e)
	return e, nil
}

// Start launches the background subsystems
func (e *Engine) Start() error {
	if err := e.expiry.Start(); err != nil {
		return err
	}
	if err := e.provision.Start(); err != nil {
		if stopErr := e.expiry.Stop(); stopErr != nil {
			log.Errorf(log.EngineMgr, "expiry manager stop after failed start: %v", stopErr)
		}
		return err
	}
	log.Infoln(log.EngineMgr, "engine started")
	return nil
}

// Stop shuts the subsystems down and waits for them to drain
func (e *Engine) Stop() error {
	var errs []error
	if err := e.provision.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := e.expiry.Stop(); err != nil {
		errs = append(errs, err)
	}
	e.servicesWG.Wait()
	log.Infoln(log.EngineMgr, "engine stopped")
	return errors.Join(errs...)
}
