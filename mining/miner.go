// Package mining drives the proof-of-work search and the marked-block
// orchestration against the remote ledger service.
package mining

import (
	"context"
	"time"

	bc "blockmint/blockchain"

	"github.com/paulbellamy/ratecounter"
	"go.dedis.ch/onet/v3/log"
	"go.uber.org/atomic"
	"golang.org/x/xerrors"
)

const (
	// maxNonce is the maximum value a nonce can take during a search.
	maxNonce = ^uint64(0)

	// DefaultRecheckInterval is how many nonce attempts pass between
	// head staleness checks.
	DefaultRecheckInterval = 512
)

// HeadCheck reports the service's current head digest. The search
// engine calls it at fixed attempt intervals to detect stale work.
type HeadCheck func(ctx context.Context) (bc.BlockID, error)

// Miner searches the nonce space of a block template for a digest
// meeting the difficulty target. The search runs synchronously on the
// calling goroutine; the only network access it performs is the
// periodic head check.
type Miner struct {
	bits     int
	interval uint64

	rate     *ratecounter.RateCounter
	attempts *atomic.Uint64
	aborts   *atomic.Uint64
	solved   *atomic.Uint64
}

// New returns a miner for the given difficulty bits that re-reads the
// head every interval attempts. A zero interval falls back to
// DefaultRecheckInterval.
func New(bits int, interval uint64) *Miner {
	if interval == 0 {
		interval = DefaultRecheckInterval
	}
	return &Miner{
		bits:     bits,
		interval: interval,
		rate:     ratecounter.NewRateCounter(time.Second),
		attempts: atomic.NewUint64(0),
		aborts:   atomic.NewUint64(0),
		solved:   atomic.NewUint64(0),
	}
}

// HashRate returns the digest evaluations per second over the last
// second.
func (m *Miner) HashRate() int64 {
	return m.rate.Rate()
}

// Stats returns the cumulative attempt, abort and solve counters.
func (m *Miner) Stats() (attempts, aborts, solved uint64) {
	return m.attempts.Load(), m.aborts.Load(), m.solved.Load()
}

// Solve searches the template's nonce space in ascending order from
// zero until the block digest meets the difficulty. Every interval
// attempts the head is re-read; if it no longer equals the template's
// parent the search aborts before evaluating another nonce. A found
// solution is reported only after one final head check, so a candidate
// that races a head change is never handed on. The template is mutated
// in place; when the return is true it holds the winning nonce.
//
// A false return with nil error means the work went stale and the
// caller should rebuild from a fresh snapshot. A failed head check is
// returned as an error and handled like any other transient fault.
func (m *Miner) Solve(ctx context.Context, block *bc.Block, check HeadCheck) (bool, error) {
	base := block.PrevHash
	for nonce := uint64(0); ; nonce++ {
		if nonce > 0 && nonce%m.interval == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			stale, err := m.staleAgainst(ctx, base, check)
			if err != nil {
				return false, err
			}
			if stale {
				m.aborts.Inc()
				log.Lvl3("head moved, aborting search on", base)
				return false, nil
			}
			log.Lvlf3("pow search at nonce %d, %d hashes/s", nonce, m.HashRate())
		}
		block.Nonce = nonce
		hash, err := block.Hash()
		if err != nil {
			return false, err
		}
		m.rate.Incr(1)
		m.attempts.Inc()
		if hash.MeetsDifficulty(m.bits) {
			stale, err := m.staleAgainst(ctx, base, check)
			if err != nil {
				return false, err
			}
			if stale {
				m.aborts.Inc()
				log.Lvl3("head moved at solution time, discarding candidate")
				return false, nil
			}
			m.solved.Inc()
			log.Lvlf2("solved block %d with nonce %d: %s", block.Index, nonce, hash)
			return true, nil
		}
		if nonce == maxNonce {
			return false, nil
		}
	}
}

func (m *Miner) staleAgainst(ctx context.Context, base bc.BlockID, check HeadCheck) (bool, error) {
	head, err := check(ctx)
	if err != nil {
		return false, xerrors.Errorf("head check: %v", err)
	}
	return head != base, nil
}
