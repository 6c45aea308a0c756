package blockchain

// DefaultBits is the proof-of-work difficulty the ledger service runs
// with, expressed in bits. It must stay divisible by 4 so the target
// can be checked as a hexadecimal zero prefix.
const DefaultBits = 16

// BlockID is the lowercase hex encoding of the sha256 digest of a
// block's canonical serialization. An empty BlockID stands for "no
// parent", i.e. the genesis block.
type BlockID string

func (id BlockID) String() string {
	return string(id)
}

// Transaction moves value between two identities. The nonce is an
// opaque unique string assigned by the service; this agent never
// builds or signs transactions, it only inspects them.
type Transaction struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Nonce  string `json:"nonce"`
	Amount uint64 `json:"amount,omitempty"`
}

// Touches reports whether the transaction references the given
// identity on either side.
func (tx *Transaction) Touches(identity string) bool {
	return tx.Src == identity || tx.Dst == identity
}
