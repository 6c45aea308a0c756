// Package chain reconstructs read snapshots of the remote ledger and
// audits transaction confirmation depth against them.
package chain

import (
	"context"

	bc "blockmint/blockchain"

	"go.dedis.ch/onet/v3/log"
	"golang.org/x/xerrors"
)

// Ledger is the read surface the reader needs from the service.
type Ledger interface {
	Head(ctx context.Context) (bc.BlockID, *bc.Block, error)
	Block(ctx context.Context, id bc.BlockID) (*bc.Block, error)
}

// Snapshot is one reconstruction of the chain, assembled from multiple
// uncoordinated reads. Blocks are ordered oldest first and always hold
// at least the head. Complete is true when the backward walk reached a
// block without a parent; false means a fetch failed mid-walk and the
// snapshot is only a suffix of the authoritative chain.
type Snapshot struct {
	HeadID   bc.BlockID
	Blocks   []*bc.Block
	Complete bool
}

// Head returns the newest block of the snapshot.
func (s *Snapshot) Head() *bc.Block {
	return s.Blocks[len(s.Blocks)-1]
}

// CountMarked returns how many blocks in the snapshot carry the given
// marker.
func (s *Snapshot) CountMarked(marker string) int {
	count := 0
	for _, block := range s.Blocks {
		if block.Marker == marker {
			count++
		}
	}
	return count
}

// Reader rebuilds the chain from the service's head pointer. Every
// call starts from scratch; nothing is cached between reconstructions.
type Reader struct {
	ledger Ledger
}

func NewReader(ledger Ledger) *Reader {
	return &Reader{ledger: ledger}
}

// Reconstruct fetches the current head and walks prev_hash links
// backward until a block has no parent or a fetch fails. A failed
// fetch truncates the snapshot instead of erroring, so callers can get
// fewer blocks than the authoritative chain holds; only the head fetch
// itself is fatal.
func (r *Reader) Reconstruct(ctx context.Context) (*Snapshot, error) {
	headID, head, err := r.ledger.Head(ctx)
	if err != nil {
		return nil, xerrors.Errorf("fetch head: %v", err)
	}
	blocks := []*bc.Block{head}
	current := head
	for current.PrevHash != "" {
		block, err := r.ledger.Block(ctx, current.PrevHash)
		if err != nil {
			log.Lvlf2("chain walk truncated at %s: %v", current.PrevHash, err)
			break
		}
		blocks = append(blocks, block)
		current = block
	}
	// Accumulated newest first; flip to ascending index order.
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	return &Snapshot{
		HeadID:   headID,
		Blocks:   blocks,
		Complete: current.PrevHash == "",
	}, nil
}
