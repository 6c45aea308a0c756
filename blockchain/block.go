package blockchain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// Block is one record of the ledger. Its identity is the sha256 digest
// of its canonical JSON serialization. Marker and PrevHash are dropped
// from the serialization when empty; a block without PrevHash is a
// genesis block.
type Block struct {
	Index    uint64        `json:"index"`
	Marker   string        `json:"marker,omitempty"`
	Nonce    uint64        `json:"nonce"`
	PrevHash BlockID       `json:"prev_hash,omitempty"`
	Txs      []Transaction `json:"txs"`
}

// NewBlock returns an empty block with a non-nil transaction list so
// it serializes as "txs":[] rather than "txs":null.
func NewBlock() *Block {
	return &Block{
		Txs: make([]Transaction, 0),
	}
}

// NewMarkedTemplate builds a candidate block carrying a marker. The
// transaction list is always empty: a marked block must never bundle
// transactions, so no constructor accepts both.
func NewMarkedTemplate(index uint64, prev BlockID, marker string) *Block {
	return &Block{
		Index:    index,
		Marker:   marker,
		PrevHash: prev,
		Txs:      make([]Transaction, 0),
	}
}

// CanonicalJSON serializes the block with sorted keys and compact
// separators, the exact form the ledger service hashes. The round trip
// through a generic value keeps key order independent of how the
// record was assembled.
func (b *Block) CanonicalJSON() ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, xerrors.Errorf("marshal block: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, xerrors.Errorf("canonicalize block: %v", err)
	}
	return json.Marshal(generic)
}

// Hash computes the block identity from its canonical serialization.
func (b *Block) Hash() (BlockID, error) {
	data, err := b.CanonicalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return BlockID(hex.EncodeToString(sum[:])), nil
}

// Copy makes a deep copy of the Block.
func (b *Block) Copy() *Block {
	if b == nil {
		return nil
	}
	block := &Block{
		Index:    b.Index,
		Marker:   b.Marker,
		Nonce:    b.Nonce,
		PrevHash: b.PrevHash,
		Txs:      make([]Transaction, len(b.Txs)),
	}
	copy(block.Txs, b.Txs)
	return block
}

func (b *Block) String() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Block %d", b.Index))
	builder.WriteString(fmt.Sprintf("\n\tNonce: %d", b.Nonce))
	builder.WriteString(fmt.Sprintf("\n\tPrevHash: %s", b.PrevHash))
	if b.Marker != "" {
		builder.WriteString(fmt.Sprintf("\n\tMarker: %s", b.Marker))
	}
	builder.WriteString(fmt.Sprintf("\n\tTxs: %d", len(b.Txs)))
	return builder.String()
}
