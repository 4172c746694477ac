package evm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplorerURLs(t *testing.T) {
	assert.Equal(t,
		"https://explorer.evm.testnet.iotaledger.net/tx/0xabc",
		ExplorerTxURL("", "0xabc"))
	assert.Equal(t,
		"https://example.org/tx/0xabc",
		ExplorerTxURL("https://example.org/", "0xabc"))
	assert.Equal(t,
		"https://example.org/address/0xdef",
		ExplorerAddressURL("https://example.org", "0xdef"))
}

func TestSimulatorRoundTrip(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator("0xowner", 0)

	owner, err := sim.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0xowner", owner)

	hash, err := sim.UpdateAllocations(ctx, []string{"ai", "defi"}, []uint64{60, 40})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "0x"))
	assert.Len(t, hash, 66)

	require.NoError(t, sim.WaitConfirmed(ctx, hash))

	categories, percentages, err := sim.GetAllocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai", "defi"}, categories)
	assert.Equal(t, []uint64{60, 40}, percentages)
}

func TestSimulatorFailureInjection(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator("0xowner", 0)

	sim.FailWrites(errors.New("boom"))
	_, err := sim.UpdateAllocations(ctx, []string{"ai"}, []uint64{100})
	assert.EqualError(t, err, "boom")

	sim.FailWrites(nil)
	hash, err := sim.UpdateAllocations(ctx, []string{"ai"}, []uint64{100})
	require.NoError(t, err)

	sim.FailConfirmations(errors.New("reverted"))
	assert.EqualError(t, sim.WaitConfirmed(ctx, hash), "reverted")
}

func TestSimulatorRejectsMismatchedArrays(t *testing.T) {
	sim := NewSimulator("0xowner", 0)
	_, err := sim.UpdateAllocations(context.Background(), []string{"ai", "defi"}, []uint64{100})
	assert.Error(t, err)
}

func TestSimulatorHonorsContextDuringDelay(t *testing.T) {
	sim := NewSimulator("0xowner", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.UpdateAllocations(ctx, []string{"ai"}, []uint64{100})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestVerifyPersonalSign(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	message := "AToIoTA login 7b3c"
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	// Wallets report the recovery id as 27/28.
	sig[crypto.RecoveryIDOffset] += 27
	sigHex := hexutil.Encode(sig)

	t.Run("valid signature", func(t *testing.T) {
		assert.NoError(t, VerifyPersonalSign(addr, message, sigHex))
	})

	t.Run("address is case insensitive", func(t *testing.T) {
		assert.NoError(t, VerifyPersonalSign(strings.ToLower(addr), message, sigHex))
	})

	t.Run("wrong message", func(t *testing.T) {
		assert.Error(t, VerifyPersonalSign(addr, "different message", sigHex))
	})

	t.Run("wrong address", func(t *testing.T) {
		other, err := crypto.GenerateKey()
		require.NoError(t, err)
		otherAddr := crypto.PubkeyToAddress(other.PublicKey).Hex()
		assert.Error(t, VerifyPersonalSign(otherAddr, message, sigHex))
	})

	t.Run("malformed signature", func(t *testing.T) {
		assert.Error(t, VerifyPersonalSign(addr, message, "not-hex"))
		assert.Error(t, VerifyPersonalSign(addr, message, "0x0102"))
	})
}
