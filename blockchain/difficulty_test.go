package blockchain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroPrefix(t *testing.T) {
	require.Equal(t, "", ZeroPrefix(0))
	require.Equal(t, "0", ZeroPrefix(4))
	require.Equal(t, "0000", ZeroPrefix(16))
}

func TestMeetsDifficulty(t *testing.T) {
	id := BlockID("0000ab5912e0c6e1ddb91e79b67326154780c58aa00112233445566778899aab")
	require.True(t, id.MeetsDifficulty(16))
	require.True(t, id.MeetsDifficulty(8))
	require.True(t, id.MeetsDifficulty(0))
	// Five zeros are required but the digest has only four.
	require.False(t, id.MeetsDifficulty(20))
}

func TestMeetsDifficultyOffByOne(t *testing.T) {
	// One zero short of the 16-bit target.
	id := BlockID("000ffb5912e0c6e1ddb91e79b67326154780c58aa00112233445566778899aab")
	require.False(t, id.MeetsDifficulty(16))
	require.True(t, id.MeetsDifficulty(12))
}
