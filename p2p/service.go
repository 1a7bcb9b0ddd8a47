package p2p

import (
	"github.com/rhinoxpay/rhinoxcore/common"
	"github.com/rhinoxpay/rhinoxcore/database"
	"github.com/rhinoxpay/rhinoxcore/funds"
	"github.com/rhinoxpay/rhinoxcore/ledger"
	"github.com/rhinoxpay/rhinoxcore/transfer"
)

// Service owns vendor ads and the order state machine. Every balance
// mutation it performs runs on a serializable database scope together with
// the status transition and the ledger entries it implies.
type Service struct {
	db       *database.Instance
	ledger   *ledger.Service
	funds    *funds.Engine
	transfer *transfer.Executor
	clock    common.Clock
}

// NewService wires the P2P service
func NewService(db *database.Instance, ledgerSvc *ledger.Service, fundsEng *funds.Engine, transferExec *transfer.Executor, clock common.Clock) *Service {
	if clock == nil {
		clock = common.RealClock{}
	}
	return &Service{
		db:       db,
		ledger:   ledgerSvc,
		funds:    fundsEng,
		transfer: transferExec,
		clock:    clock,
	}
}
