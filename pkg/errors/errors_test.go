package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	grpccodes "google.golang.org/grpc/codes"
)

// generateErrorFixtures creates test fixtures with sample metadata for each error type
func generateErrorFixtures() []Error {
	return []Error{
		INTERNAL_ERROR.New("failed to persist block").
			WithMetadata(map[string]any{
				"component": "badger",
				"operation": "upsert",
			}),

		INVALID_ARGUMENT.New("missing receiver").
			WithMetadata(map[string]any{"field": "receiver"}),

		PRECONDITION_FAILED.New("receiver is not the message sender").
			WithMetadata(CallerMetadata{Caller: "bob", Expected: "alice"}),

		TOO_EARLY.New("challenging period is not expired yet").
			WithMetadata(TimingMetadata{Height: 3, Now: 1700000000, Deadline: 1700003600}),

		TOO_LATE.New("challenge window expired").
			WithMetadata(TimingMetadata{Height: 3, Now: 1700003601, Deadline: 1700003600}),

		INVALID_PROOF.New("proof is not correct").
			WithMetadata(ProofMetadata{Height: 1, Index: 2, Root: "ab"}),

		ALREADY_CLAIMED.New("token is already claimed").
			WithMetadata(ClaimMetadata{Height: 1, Index: 2}),

		NO_REWARD.New("there is no reward").
			WithMetadata(AccountMetadata{Account: "carol"}),

		NOT_FOUND.New("block not found").
			WithMetadata(HeightMetadata{SpokeID: "source", Height: 9}),

		UNAUTHENTICATED.New("sender is not a registered spoke").
			WithMetadata(AccountMetadata{Account: "mallory"}),

		INSUFFICIENT_FUNDS.New("there is no enough fee for relayers").
			WithMetadata(AmountMetadata{Account: "bob", Amount: 1, Required: 10}),

		RELAYER_NOT_ALLOWED.New("caller is not a relayer").
			WithMetadata(RelayerMetadata{Relayer: "dave", Status: "malicious"}),

		SPOKE_NOT_ACTIVE.New("bridge is not active").
			WithMetadata(SpokeStatusMetadata{SpokeID: "source", Status: "frozen"}),

		ALREADY_EXISTS.New("addr is already paired").
			WithMetadata(map[string]any{"addr": "0xabc"}),
	}
}

func TestErrorFixtures(t *testing.T) {
	fixtures := generateErrorFixtures()

	seen := make(map[uint16]struct{})
	for _, err := range fixtures {
		require.NotNil(t, err)
		require.NotEmpty(t, err.Error())
		require.NotEmpty(t, err.CodeName())
		require.NotEqual(t, grpccodes.OK, err.GrpcCode())
		require.NotEmpty(t, err.Metadata())

		entry := err.Log()
		require.Equal(t, err.CodeName(), entry.Data["name"])
		require.Equal(t, err.Code(), entry.Data["code"])

		_, dup := seen[err.Code()]
		require.False(t, dup, "duplicated code %d", err.Code())
		seen[err.Code()] = struct{}{}
	}
}

func TestErrorMetadata(t *testing.T) {
	err := TOO_EARLY.New("cooldown not elapsed").
		WithMetadata(TimingMetadata{Now: 10, Deadline: 20})

	metadata := err.Metadata()
	require.Equal(t, "10", metadata["now"])
	require.Equal(t, "20", metadata["deadline"])
	_, ok := metadata["height"]
	require.False(t, ok)
}

func TestCodeIs(t *testing.T) {
	cause := fmt.Errorf("db closed")
	err := fmt.Errorf("relay failed: %w", INTERNAL_ERROR.Wrap(cause))

	require.True(t, INTERNAL_ERROR.Is(err))
	require.False(t, TOO_EARLY.Is(err))
	require.False(t, TOO_EARLY.Is(cause))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "INTERNAL_ERROR (0): db closed", INTERNAL_ERROR.Wrap(cause).Error())
}
