package chain

import (
	"context"
	"testing"

	"blockmint/ledgertest"

	"github.com/stretchr/testify/require"
)

func TestDepthFound(t *testing.T) {
	ledger := ledgertest.New(0)
	ledger.Extend("") // index 1
	tx := ledgertest.NewTx("alice", "bob")
	ledger.Extend("", tx) // index 2
	ledger.Extend("")     // index 3
	ledger.Extend("")     // index 4
	ledger.Extend("")     // index 5

	auditor := NewAuditor(NewReader(ledger))
	report, err := auditor.Depth(context.Background(), tx.Nonce)
	require.NoError(t, err)
	require.Equal(t, StatusFound, report.Status)
	require.Equal(t, uint64(2), report.BlockIndex)
	require.Equal(t, uint64(5), report.HeadIndex)
	require.Equal(t, uint64(3), report.Confirmations)
}

func TestDepthFirstMatchWins(t *testing.T) {
	ledger := ledgertest.New(0)
	tx := ledgertest.NewTx("alice", "bob")
	ledger.Extend("", tx) // index 1
	ledger.Extend("", tx) // index 2, duplicate nonce
	ledger.Extend("")     // index 3

	auditor := NewAuditor(NewReader(ledger))
	report, err := auditor.Depth(context.Background(), tx.Nonce)
	require.NoError(t, err)
	require.Equal(t, StatusFound, report.Status)
	require.Equal(t, uint64(1), report.BlockIndex)
	require.Equal(t, uint64(2), report.Confirmations)
}

func TestDepthNotFound(t *testing.T) {
	ledger := ledgertest.New(0)
	ledger.Extend("", ledgertest.NewTx("alice", "bob"))

	auditor := NewAuditor(NewReader(ledger))
	report, err := auditor.Depth(context.Background(), "no-such-nonce")
	require.NoError(t, err)
	require.Equal(t, StatusNotFound, report.Status)
	require.Equal(t, uint64(1), report.HeadIndex)
	require.Equal(t, uint64(0), report.Confirmations)
}

func TestDepthIndeterminate(t *testing.T) {
	ledger := ledgertest.New(0)
	hidden := ledger.Extend("", ledgertest.NewTx("alice", "bob")) // index 1
	ledger.Extend("") // index 2
	ledger.Extend("") // index 3

	id, err := hidden.Hash()
	require.NoError(t, err)
	ledger.SetMissing(id)

	auditor := NewAuditor(NewReader(ledger))
	report, err := auditor.Depth(context.Background(), hidden.Txs[0].Nonce)
	require.NoError(t, err)
	// The block holding the nonce could not be fetched: the audit must
	// not claim a definite not-found.
	require.Equal(t, StatusIndeterminate, report.Status)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "found", StatusFound.String())
	require.Equal(t, "not found", StatusNotFound.String())
	require.Equal(t, "indeterminate", StatusIndeterminate.String())
	require.Equal(t, "unknown", Status(42).String())
}
