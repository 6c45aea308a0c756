package blockmint

import (
	bc "blockmint/blockchain"
)

// HeadReply is the body of GET /block with no hash parameter: the
// current chain tip together with its digest.
type HeadReply struct {
	Hash  bc.BlockID `json:"hash"`
	Block *bc.Block  `json:"block"`
}

// BlockReply is the body of GET /block?hash=...; Block is nil when the
// service does not know the digest.
type BlockReply struct {
	Block *bc.Block `json:"block"`
}

// TxPoolReply is the body of GET /txpool: the pending transactions
// plus the head digest identifying the snapshot.
type TxPoolReply struct {
	Hash bc.BlockID       `json:"hash"`
	Txs  []bc.Transaction `json:"txs"`
}
