package chain

import (
	"context"
)

// Status classifies the outcome of a depth audit.
type Status int

const (
	// StatusFound means the nonce is mined and the depth fields of the
	// report are valid.
	StatusFound Status = iota
	// StatusNotFound means a complete snapshot holds no such nonce.
	StatusNotFound
	// StatusIndeterminate means the nonce was not seen but the
	// snapshot was truncated by a failed fetch, so the nonce may sit
	// in a block the walk never reached.
	StatusIndeterminate
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// DepthReport is the result of a confirmation audit for one nonce.
type DepthReport struct {
	Status        Status
	Nonce         string
	BlockIndex    uint64
	HeadIndex     uint64
	Confirmations uint64
}

// Auditor locates a transaction by its nonce and computes how deeply
// the containing block is confirmed.
type Auditor struct {
	reader *Reader
}

func NewAuditor(reader *Reader) *Auditor {
	return &Auditor{reader: reader}
}

// Depth reconstructs the chain and scans it oldest first, stopping at
// the first block whose transaction list contains the nonce. The head
// index is taken from the same snapshot, so confirmations are never
// negative.
func (a *Auditor) Depth(ctx context.Context, nonce string) (*DepthReport, error) {
	snapshot, err := a.reader.Reconstruct(ctx)
	if err != nil {
		return nil, err
	}
	headIndex := snapshot.Head().Index
	for _, block := range snapshot.Blocks {
		for _, tx := range block.Txs {
			if tx.Nonce == nonce {
				return &DepthReport{
					Status:        StatusFound,
					Nonce:         nonce,
					BlockIndex:    block.Index,
					HeadIndex:     headIndex,
					Confirmations: headIndex - block.Index,
				}, nil
			}
		}
	}
	status := StatusNotFound
	if !snapshot.Complete {
		status = StatusIndeterminate
	}
	return &DepthReport{
		Status:    status,
		Nonce:     nonce,
		HeadIndex: headIndex,
	}, nil
}
