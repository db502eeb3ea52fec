package domain

import (
	"testing"

	"github.com/arkade-os/nftbridge/pkg/merkle"
	"github.com/stretchr/testify/require"
)

func testIntent(id uint64) TransferIntent {
	return TransferIntent{
		TokenID:        id,
		Sender:         "alice",
		Receiver:       "bob",
		LocalContract:  "nft",
		RemoteContract: "wnft",
	}
}

func TestBlock(t *testing.T) {
	t.Run("append_and_seal", func(t *testing.T) {
		block := NewBlock("source", 3)
		require.True(t, block.IsOpen())

		for i := uint64(0); i < 3; i++ {
			index, err := block.Append(testIntent(i), 3)
			require.NoError(t, err)
			require.Equal(t, uint32(i), index)
		}
		require.True(t, block.IsFull(3))

		_, err := block.Append(testIntent(4), 3)
		require.ErrorContains(t, err, "full")

		root, err := block.Seal(42)
		require.NoError(t, err)
		require.False(t, root.IsZero())
		require.True(t, block.Sealed)
		require.Equal(t, int64(42), block.SealedAt)

		again, err := block.Seal(100)
		require.NoError(t, err)
		require.Equal(t, root, again)
		require.Equal(t, int64(42), block.SealedAt)

		_, err = block.Append(testIntent(5), 10)
		require.ErrorContains(t, err, "sealed")
	})

	t.Run("proofs", func(t *testing.T) {
		block := NewBlock("source", 0)
		for i := uint64(0); i < 3; i++ {
			_, err := block.Append(testIntent(i), 4)
			require.NoError(t, err)
		}

		_, err := block.Proof(0)
		require.Error(t, err)
		require.False(t, block.VerifyProof(testIntent(0), 0, nil))

		_, err = block.Seal(1)
		require.NoError(t, err)

		for i := uint64(0); i < 3; i++ {
			proof, err := block.Proof(uint32(i))
			require.NoError(t, err)
			require.Len(t, proof, 2)
			require.True(t, block.VerifyProof(testIntent(i), uint32(i), proof))
			require.False(t, block.VerifyProof(testIntent(i+10), uint32(i), proof))
		}

		proof, err := block.Proof(0)
		require.NoError(t, err)
		require.False(t, block.VerifyProof(testIntent(0), 1, proof))

		_, err = block.Proof(3)
		require.Error(t, err)
	})

	t.Run("empty_block", func(t *testing.T) {
		block := NewBlock("source", 0)
		_, err := block.Seal(1)
		require.Error(t, err)
		require.False(t, block.Sealed)
	})

	t.Run("invalid_intent", func(t *testing.T) {
		block := NewBlock("source", 0)
		intent := testIntent(1)
		intent.Receiver = ""
		_, err := block.Append(intent, 4)
		require.ErrorContains(t, err, "missing receiver")
		require.Empty(t, block.Intents)
	})
}

func TestIntentEncoding(t *testing.T) {
	intent := testIntent(7)
	encoded := intent.Encode()
	require.Len(t, encoded, 8+4*4+len("alice")+len("bob")+len("nft")+len("wnft"))
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 7}, encoded[:8])
	require.Equal(t, []byte{0, 0, 0, 5}, encoded[8:12])
	require.Equal(t, "alice", string(encoded[12:17]))

	require.Equal(t, merkle.LeafHash(encoded), intent.Hash())

	// Moving bytes between adjacent fields must change the hash.
	shifted := intent
	shifted.Sender, shifted.Receiver = "alic", "ebob"
	require.NotEqual(t, intent.Hash(), shifted.Hash())
}

func TestIncomingBlockWindow(t *testing.T) {
	record := NewIncomingBlock("destination", 0, merkle.LeafHash([]byte("root")), "relayer", 100)
	require.True(t, record.IsRelayed())
	require.Equal(t, int64(160), record.WindowEnd(60e9))

	tests := []struct {
		now      int64
		expected bool
	}{
		{100, false},
		{159, false},
		{160, true},
		{1000, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, record.WindowExpired(tt.now, 60e9), "now %d", tt.now)
	}

	require.False(t, record.IsClaimed(2))
	record.AddClaim(Claim{Index: 2, TokenID: 1, Contract: "wnft", Receiver: "bob"})
	require.True(t, record.IsClaimed(2))

	clone := record.Clone()
	clone.AddClaim(Claim{Index: 3, TokenID: 2, Contract: "wnft", Receiver: "carol"})
	clone.Status = IncomingBlockConfirmed
	require.False(t, record.IsClaimed(3))
	require.True(t, record.IsRelayed())
	require.Equal(t, record.Claims[2], clone.Claims[2])

	record.Status = IncomingBlockMalicious
	require.True(t, record.IsSettled())
}
