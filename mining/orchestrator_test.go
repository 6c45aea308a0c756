package mining

import (
	"context"
	"testing"
	"time"

	bc "blockmint/blockchain"
	"blockmint/chain"
	"blockmint/ledgertest"

	"github.com/stretchr/testify/require"
)

const testBits = 4

func newTestOrchestrator(ledger *ledgertest.Ledger) *Orchestrator {
	return NewOrchestrator(ledger, chain.NewReader(ledger), New(testBits, 8), Options{
		PoolRetry:     time.Millisecond,
		SubmitBackoff: time.Millisecond,
	})
}

func TestRunMinesToTarget(t *testing.T) {
	ledger := ledgertest.New(testBits)
	orch := newTestOrchestrator(ledger)

	err := orch.Run(context.Background(), "miner-a", 2)
	require.NoError(t, err)

	snapshot, err := chain.NewReader(ledger).Reconstruct(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, snapshot.CountMarked("miner-a"))

	// Every accepted candidate is a marked block with no transactions.
	for _, block := range ledger.Submitted() {
		require.Equal(t, "miner-a", block.Marker)
		require.Empty(t, block.Txs)
		hash, err := block.Hash()
		require.NoError(t, err)
		require.True(t, hash.MeetsDifficulty(testBits))
	}
}

func TestRunAlreadyAtTarget(t *testing.T) {
	ledger := ledgertest.New(testBits)
	ledger.Extend("miner-a")
	ledger.Extend("miner-a")
	orch := newTestOrchestrator(ledger)

	err := orch.Run(context.Background(), "miner-a", 2)
	require.NoError(t, err)
	require.Empty(t, ledger.Submitted())
}

func TestAttemptRejectsTaintedSnapshot(t *testing.T) {
	ledger := ledgertest.New(testBits)
	ledger.AddPoolTx("miner-a", "carol")
	orch := newTestOrchestrator(ledger)

	accepted, err := orch.attempt(context.Background(), "miner-a")
	require.NoError(t, err)
	require.False(t, accepted)
	require.Empty(t, ledger.Submitted())

	// A transaction on the destination side taints the snapshot too.
	ledger.ClearPool()
	ledger.AddPoolTx("carol", "miner-a")
	accepted, err = orch.attempt(context.Background(), "miner-a")
	require.NoError(t, err)
	require.False(t, accepted)
	require.Empty(t, ledger.Submitted())
}

func TestAttemptProceedsOnCleanSnapshot(t *testing.T) {
	ledger := ledgertest.New(testBits)
	// Pending traffic between other identities is fine.
	ledger.AddPoolTx("carol", "dave")
	orch := newTestOrchestrator(ledger)

	accepted, err := orch.attempt(context.Background(), "miner-a")
	require.NoError(t, err)
	require.True(t, accepted)

	submitted := ledger.Submitted()
	require.Len(t, submitted, 1)
	require.Equal(t, "miner-a", submitted[0].Marker)
	require.Empty(t, submitted[0].Txs)
	require.Equal(t, uint64(1), submitted[0].Index)
}

func TestRunCancelledWhilePoolTainted(t *testing.T) {
	ledger := ledgertest.New(testBits)
	ledger.AddPoolTx("miner-a", "carol")
	orch := newTestOrchestrator(ledger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- orch.Run(ctx, "miner-a", 1)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not observe cancellation")
	}
	require.Empty(t, ledger.Submitted())
}

func TestTouches(t *testing.T) {
	pool := []bc.Transaction{
		{Src: "alice", Dst: "bob", Nonce: "n-1"},
		{Src: "carol", Dst: "dave", Nonce: "n-2"},
	}
	require.True(t, touches(pool, "alice"))
	require.True(t, touches(pool, "dave"))
	require.False(t, touches(pool, "erin"))
	require.False(t, touches(nil, "alice"))
}
