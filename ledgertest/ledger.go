// Package ledgertest provides a deterministic in-memory stand-in for
// the ledger service so the chain and mining packages can be tested
// without a network.
package ledgertest

import (
	"context"
	"sync"

	bc "blockmint/blockchain"

	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// Ledger is an in-memory ledger service. It implements the read and
// write surfaces consumed by the chain and mining packages and
// validates submissions the way the real service does.
type Ledger struct {
	mu        sync.Mutex
	bits      int
	blocks    map[bc.BlockID]*bc.Block
	head      bc.BlockID
	pool      []bc.Transaction
	missing   map[bc.BlockID]bool
	submitted []*bc.Block
}

// New creates a ledger holding only a genesis block, validating
// submissions against the given difficulty bits.
func New(bits int) *Ledger {
	genesis := bc.NewBlock()
	id, err := genesis.Hash()
	if err != nil {
		panic(err)
	}
	return &Ledger{
		bits:    bits,
		blocks:  map[bc.BlockID]*bc.Block{id: genesis},
		head:    id,
		missing: make(map[bc.BlockID]bool),
	}
}

// Head returns the current chain tip and its digest.
func (l *Ledger) Head(ctx context.Context) (bc.BlockID, *bc.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head, l.blocks[l.head].Copy(), nil
}

// Block looks up a block by digest. Digests registered with SetMissing
// fail as if the service were unreachable.
func (l *Ledger) Block(ctx context.Context, id bc.BlockID) (*bc.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.missing[id] {
		return nil, xerrors.Errorf("unknown block: %s", id)
	}
	block, ok := l.blocks[id]
	if !ok {
		return nil, xerrors.Errorf("unknown block: %s", id)
	}
	return block.Copy(), nil
}

// TxPool returns the pending transactions and the head digest of the
// snapshot.
func (l *Ledger) TxPool(ctx context.Context) (bc.BlockID, []bc.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	txs := make([]bc.Transaction, len(l.pool))
	copy(txs, l.pool)
	return l.head, txs, nil
}

// Submit validates a candidate: its prev_hash must equal the current
// head and its digest must meet the difficulty. Accepted blocks become
// the new head. Every candidate, accepted or not, is recorded.
func (l *Ledger) Submit(ctx context.Context, block *bc.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitted = append(l.submitted, block.Copy())
	id, err := block.Hash()
	if err != nil {
		return err
	}
	if block.PrevHash != l.head {
		return xerrors.Errorf("stale prev_hash: %s", block.PrevHash)
	}
	if !id.MeetsDifficulty(l.bits) {
		return xerrors.Errorf("invalid proof of work: %s", id)
	}
	l.blocks[id] = block.Copy()
	l.head = id
	return nil
}

// Extend appends a block directly, bypassing proof of work. Tests use
// it to lay out chains to read back.
func (l *Ledger) Extend(marker string, txs ...bc.Transaction) *bc.Block {
	l.mu.Lock()
	defer l.mu.Unlock()
	parent := l.blocks[l.head]
	block := &bc.Block{
		Index:    parent.Index + 1,
		Marker:   marker,
		PrevHash: l.head,
		Txs:      append(make([]bc.Transaction, 0, len(txs)), txs...),
	}
	id, err := block.Hash()
	if err != nil {
		panic(err)
	}
	l.blocks[id] = block
	l.head = id
	return block.Copy()
}

// NewTx returns a pool-style transaction with a fresh UUID nonce, the
// nonce format the service hands out.
func NewTx(src, dst string) bc.Transaction {
	return bc.Transaction{Src: src, Dst: dst, Nonce: uuid.NewString(), Amount: 1}
}

// AddPoolTx appends a pending transaction touching src and dst and
// returns it.
func (l *Ledger) AddPoolTx(src, dst string) bc.Transaction {
	tx := NewTx(src, dst)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool = append(l.pool, tx)
	return tx
}

// ClearPool drops all pending transactions.
func (l *Ledger) ClearPool() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool = nil
}

// SetMissing makes lookups of the given digest fail, simulating a
// block the walk cannot reach.
func (l *Ledger) SetMissing(id bc.BlockID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.missing[id] = true
}

// HeadID returns the current head digest.
func (l *Ledger) HeadID() bc.BlockID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head
}

// Submitted returns every candidate ever handed to Submit, in order.
func (l *Ledger) Submitted() []*bc.Block {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*bc.Block, len(l.submitted))
	copy(out, l.submitted)
	return out
}
