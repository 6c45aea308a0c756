package mining

import (
	"context"
	"time"

	bc "blockmint/blockchain"
	"blockmint/chain"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

const (
	// DefaultPoolRetry is the wait before re-reading a pool snapshot
	// that touched the marked identity.
	DefaultPoolRetry = 100 * time.Millisecond

	// DefaultSubmitBackoff is the wait after a rejected submission or
	// a failed cycle before starting over.
	DefaultSubmitBackoff = 50 * time.Millisecond
)

// Ledger is the surface of the service the orchestrator drives.
type Ledger interface {
	Block(ctx context.Context, id bc.BlockID) (*bc.Block, error)
	TxPool(ctx context.Context) (bc.BlockID, []bc.Transaction, error)
	Submit(ctx context.Context, block *bc.Block) error
}

// Options tune the orchestrator's retry cadence. Zero values fall back
// to the defaults.
type Options struct {
	PoolRetry     time.Duration
	SubmitBackoff time.Duration
}

func (o *Options) fill() {
	if o.PoolRetry == 0 {
		o.PoolRetry = DefaultPoolRetry
	}
	if o.SubmitBackoff == 0 {
		o.SubmitBackoff = DefaultSubmitBackoff
	}
}

// Orchestrator mines marked empty blocks until the chain carries the
// requested number of them. It restarts through every transient
// condition: tainted pool snapshots, stale searches, rejected
// submissions and failed reads. It never proceeds with a snapshot in
// which a pending transaction references the marked identity, and the
// templates it builds carry no transactions at all, so marking a block
// can never coincide with a transfer touching that identity.
type Orchestrator struct {
	ledger Ledger
	reader *chain.Reader
	miner  *Miner
	opts   Options
}

func NewOrchestrator(ledger Ledger, reader *chain.Reader, miner *Miner, opts Options) *Orchestrator {
	opts.fill()
	return &Orchestrator{
		ledger: ledger,
		reader: reader,
		miner:  miner,
		opts:   opts,
	}
}

// Run blocks until the chain holds at least target blocks whose marker
// equals marker, or ctx is cancelled. The count is re-derived from a
// fresh chain reconstruction after every accepted block.
func (o *Orchestrator) Run(ctx context.Context, marker string, target int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		count, err := o.markedCount(ctx, marker)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Lvlf2("recount failed, retrying: %v", err)
			if err := o.wait(ctx, o.opts.SubmitBackoff); err != nil {
				return err
			}
			continue
		}
		log.Lvlf2("marked(%s)=%d, target=%d", marker, count, target)
		if count >= target {
			log.Infof("target reached: marked(%s)=%d", marker, count)
			return nil
		}
		if err := o.mineOne(ctx, marker); err != nil {
			return err
		}
		attempts, aborts, solved := o.miner.Stats()
		log.Lvlf2("marked block accepted (%d hashes, %d aborts, %d solved)",
			attempts, aborts, solved)
	}
}

// mineOne repeats full mining cycles until one marked block is
// accepted. Only cancellation stops it.
func (o *Orchestrator) mineOne(ctx context.Context, marker string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		accepted, err := o.attempt(ctx, marker)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Lvlf2("mining cycle failed, retrying: %v", err)
			if err := o.wait(ctx, o.opts.SubmitBackoff); err != nil {
				return err
			}
			continue
		}
		if accepted {
			return nil
		}
	}
}

// attempt runs one cycle: pool snapshot, policy check, template build,
// search, submission. It reports whether a block was accepted; a
// tainted snapshot, a stale search and a rejected submission all
// return false with no error so the caller starts a fresh cycle.
func (o *Orchestrator) attempt(ctx context.Context, marker string) (bool, error) {
	head, txs, err := o.ledger.TxPool(ctx)
	if err != nil {
		return false, xerrors.Errorf("pool snapshot: %v", err)
	}
	if touches(txs, marker) {
		// Unsafe snapshot: a pending transaction references the
		// marked identity. Wait and re-snapshot.
		log.Lvl3("pool touches marked identity, waiting for a clean snapshot")
		return false, o.wait(ctx, o.opts.PoolRetry)
	}
	parent, err := o.ledger.Block(ctx, head)
	if err != nil {
		return false, xerrors.Errorf("fetch parent %s: %v", head, err)
	}
	template := bc.NewMarkedTemplate(parent.Index+1, head, marker)
	found, err := o.miner.Solve(ctx, template, o.headCheck)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := o.ledger.Submit(ctx, template); err != nil {
		log.Lvlf2("submission rejected: %v", err)
		return false, o.wait(ctx, o.opts.SubmitBackoff)
	}
	return true, nil
}

func (o *Orchestrator) markedCount(ctx context.Context, marker string) (int, error) {
	snapshot, err := o.reader.Reconstruct(ctx)
	if err != nil {
		return 0, err
	}
	return snapshot.CountMarked(marker), nil
}

// headCheck reads the pool's head digest, the cheapest head read the
// service offers.
func (o *Orchestrator) headCheck(ctx context.Context) (bc.BlockID, error) {
	head, _, err := o.ledger.TxPool(ctx)
	return head, err
}

func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// touches reports whether any pending transaction references the
// identity as source or destination.
func touches(txs []bc.Transaction, identity string) bool {
	for i := range txs {
		if txs[i].Touches(identity) {
			return true
		}
	}
	return false
}
