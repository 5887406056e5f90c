package signer_test

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/metrics"
	"github/chapool/go-hlsigner/internal/types"
	"github/chapool/go-hlsigner/internal/wallet/securekey"
	"github/chapool/go-hlsigner/internal/wallet/signer"
)

const testKeyHex = "0x0123456789012345678901234567890123456789012345678901234567890123"

func newTestSigner(t *testing.T, keyHex string, opts ...signer.Option) signer.Service {
	t.Helper()

	buf, err := securekey.FromHex(keyHex)
	require.NoError(t, err)

	s, err := signer.NewService(buf, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Destroy)

	return s
}

func testOrder() action.Order {
	return action.Order{
		Orders: []action.OrderRequest{{
			Asset:   1,
			IsBuy:   true,
			LimitPx: "100",
			Size:    "100",
			Type:    action.OrderType{Limit: &action.LimitOrder{TIF: action.TifGtc}},
		}},
		Grouping: action.GroupingNA,
	}
}

func TestAddress(t *testing.T) {
	s := newTestSigner(t, "0x0000000000000000000000000000000000000000000000000000000000000001")
	assert.Equal(t, "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", s.Address().String())

	key, err := crypto.HexToECDSA(testKeyHex[2:])
	require.NoError(t, err)
	assert.Equal(t, types.AddressFromCommon(crypto.PubkeyToAddress(key.PublicKey)), newTestSigner(t, testKeyHex).Address())
}

func TestSignDigestRoundTrip(t *testing.T) {
	s := newTestSigner(t, testKeyHex)
	digest := crypto.Keccak256Hash([]byte("digest"))

	sig, err := s.SignDigest(context.Background(), digest)
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, sig.V)

	recovered, err := signer.RecoverAddress(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)
	require.NoError(t, signer.VerifySignature(digest, sig, s.Address()))

	// RFC 6979 signatures are deterministic
	again, err := s.SignDigest(context.Background(), digest)
	require.NoError(t, err)
	assert.Equal(t, sig, again)

	// Low-S form
	halfOrder := new(big.Int).Rsh(crypto.S256().Params().N, 1)
	assert.LessOrEqual(t, new(big.Int).SetBytes(sig.S[:]).Cmp(halfOrder), 0)
}

func TestSignDigestMatchesGoEthereum(t *testing.T) {
	s := newTestSigner(t, testKeyHex)
	digest := crypto.Keccak256Hash([]byte("cross-check"))

	sig, err := s.SignDigest(context.Background(), digest)
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKeyHex[2:])
	require.NoError(t, err)
	want, err := crypto.Sign(digest[:], key)
	require.NoError(t, err)
	want[64] += 27

	assert.Equal(t, want, sig.Bytes())
}

func TestRecoverAddressRejectsGarbage(t *testing.T) {
	digest := crypto.Keccak256Hash([]byte("digest"))

	_, err := signer.RecoverAddress(digest, types.Signature{V: 27})
	require.ErrorIs(t, err, types.ErrInvalidSignature)

	_, err = signer.RecoverAddress(digest, types.Signature{V: 3})
	require.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestVerifySignatureMismatch(t *testing.T) {
	s := newTestSigner(t, testKeyHex)
	digest := crypto.Keccak256Hash([]byte("digest"))

	sig, err := s.SignDigest(context.Background(), digest)
	require.NoError(t, err)

	other := types.MustParseAddress("0x7e5f4552091a69125d5dfcb7b8c2659029395bdf")
	require.ErrorIs(t, signer.VerifySignature(digest, sig, other), types.ErrInvalidSignature)
}

func TestSignAgentAction(t *testing.T) {
	s := newTestSigner(t, testKeyHex)
	ctx := context.Background()

	req := &signer.AgentRequest{Action: testOrder(), Nonce: 0, Environment: types.Mainnet}
	sig, err := s.SignAgentAction(ctx, req)
	require.NoError(t, err)

	digest, err := signer.AgentActionDigest(req)
	require.NoError(t, err)
	require.NoError(t, signer.VerifySignature(digest, sig, s.Address()))

	// Reference signature for this order from the exchange's Python SDK
	assert.Equal(t, "0xd65369825a9df5d80099e513cce430311d7d26ddf477f5b3a33d2806b100d78e", hexutil.Encode(sig.R[:]))
	assert.Equal(t, "0x2b54116ff64054968aa237c20ca9ff68000f977c93289157748a3162b6ea940e", hexutil.Encode(sig.S[:]))
	assert.Equal(t, byte(28), sig.V)

	// The environment source tag changes the digest
	testnet := *req
	testnet.Environment = types.Testnet
	testnetDigest, err := signer.AgentActionDigest(&testnet)
	require.NoError(t, err)
	assert.NotEqual(t, digest, testnetDigest)

	// So do the vault and expiry
	vault := types.MustParseAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea")
	expires := uint64(1700000000000)
	withVault := *req
	withVault.VaultAddress = &vault
	withVault.ExpiresAfter = &expires
	vaultSig, err := s.SignAgentAction(ctx, &withVault)
	require.NoError(t, err)
	assert.NotEqual(t, sig, vaultSig)
}

func TestSignAgentActionRejectsUserKinds(t *testing.T) {
	s := newTestSigner(t, testKeyHex)

	withdraw := action.Withdraw{Destination: s.Address(), Amount: "1", Time: 1}
	_, err := s.SignAgentAction(context.Background(), &signer.AgentRequest{Action: withdraw, Environment: types.Mainnet})
	require.ErrorIs(t, err, types.ErrInvalidAction)

	_, err = s.SignAgentAction(context.Background(), &signer.AgentRequest{Environment: types.Mainnet})
	require.ErrorIs(t, err, types.ErrInvalidAction)

	_, err = s.SignAgentAction(context.Background(), &signer.AgentRequest{Action: testOrder(), Environment: types.Environment(9)})
	require.ErrorIs(t, err, types.ErrInvalidAction)
}

func TestSignAgentActionValidatesAction(t *testing.T) {
	s := newTestSigner(t, testKeyHex)

	order := testOrder()
	order.Orders[0].LimitPx = "100.0"
	_, err := s.SignAgentAction(context.Background(), &signer.AgentRequest{Action: order, Environment: types.Mainnet})
	require.ErrorIs(t, err, types.ErrInvalidAction)
}

func TestSignUserActionWithdrawScenario(t *testing.T) {
	s := newTestSigner(t, testKeyHex)

	withdraw := action.Withdraw{Destination: s.Address(), Amount: "10", Time: 12345}
	sig, err := s.SignUserAction(context.Background(), withdraw, types.Testnet)
	require.NoError(t, err)

	testnetDigest, err := signer.UserActionDigest(withdraw, types.Testnet)
	require.NoError(t, err)
	recovered, err := signer.RecoverAddress(testnetDigest, sig)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), recovered)

	mainnetDigest, err := signer.UserActionDigest(withdraw, types.Mainnet)
	require.NoError(t, err)
	assert.NotEqual(t, testnetDigest, mainnetDigest)
	require.ErrorIs(t, signer.VerifySignature(mainnetDigest, sig, s.Address()), types.ErrInvalidSignature)
}

func TestSignUserActionRoundTripAllKinds(t *testing.T) {
	s := newTestSigner(t, testKeyHex)
	other := types.MustParseAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a")

	actions := []action.Action{
		action.UsdTransfer{Destination: other, Amount: "1", Time: 1},
		action.SpotTransfer{Destination: other, Token: "PURR:0xc4bf3f870c0e9465323c0b6ed28096c2", Amount: "1", Time: 1},
		action.Withdraw{Destination: other, Amount: "1", Time: 1},
		action.UsdClassTransfer{Amount: "1", Nonce: 1},
		action.TokenDelegate{Validator: other, Wei: 1, Nonce: 1},
		action.SendAsset{Destination: other, Token: "USDC", Amount: "1", Nonce: 1},
		action.ApproveBuilderFee{MaxFeeRate: "0.01%", Builder: other, Nonce: 1},
		action.UserDexAbstraction{User: s.Address(), Enabled: true, Nonce: 1},
		action.ConvertToMultiSigUser{AuthorizedUsers: []types.Address{other, s.Address()}, Threshold: 2, Nonce: 1},
	}

	for _, a := range actions {
		for _, env := range []types.Environment{types.Mainnet, types.Testnet} {
			sig, err := s.SignUserAction(context.Background(), a, env)
			require.NoError(t, err, a.Kind().String())

			digest, err := signer.UserActionDigest(a, env)
			require.NoError(t, err)
			require.NoError(t, signer.VerifySignature(digest, sig, s.Address()), a.Kind().String())
		}
	}
}

func TestSignUserActionRejectsAgentKinds(t *testing.T) {
	s := newTestSigner(t, testKeyHex)

	_, err := s.SignUserAction(context.Background(), testOrder(), types.Mainnet)
	require.ErrorIs(t, err, types.ErrInvalidAction)

	_, err = s.SignUserAction(context.Background(), nil, types.Mainnet)
	require.ErrorIs(t, err, types.ErrInvalidAction)

	_, err = s.SignMultiSigEnvelope(context.Background(), nil, types.Mainnet)
	require.ErrorIs(t, err, types.ErrInvalidAction)
}

func TestSignAfterDestroy(t *testing.T) {
	buf, err := securekey.FromHex(testKeyHex)
	require.NoError(t, err)
	s, err := signer.NewService(buf)
	require.NoError(t, err)

	s.Destroy()
	s.Destroy()

	_, err = s.SignDigest(context.Background(), common.Hash{1})
	require.ErrorIs(t, err, types.ErrKeyDestroyed)

	_, err = s.SignAgentAction(context.Background(), &signer.AgentRequest{Action: testOrder(), Environment: types.Mainnet})
	require.ErrorIs(t, err, types.ErrKeyDestroyed)

	_, err = signer.NewService(buf)
	require.ErrorIs(t, err, types.ErrKeyDestroyed)
}

func TestSignerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collectors := metrics.New("test")
	require.NoError(t, collectors.Register(reg))

	s := newTestSigner(t, testKeyHex, signer.WithMetrics(collectors))

	_, err := s.SignAgentAction(context.Background(), &signer.AgentRequest{Action: testOrder(), Environment: types.Mainnet})
	require.NoError(t, err)
	_, err = s.SignUserAction(context.Background(), testOrder(), types.Mainnet)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "test_signatures_total", "test_signing_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// withdrawTypedDigest encodes a testnet withdrawal by hand from the published type string and
// domain constants, independently of the registry and apitypes.
func withdrawTypedDigest(destination string, amount string, time uint64) common.Hash {
	word := func(n uint64) []byte {
		return common.LeftPadBytes(new(big.Int).SetUint64(n).Bytes(), 32)
	}
	keccakString := func(s string) []byte {
		return crypto.Keccak256([]byte(s))
	}

	domainSeparator := crypto.Keccak256(
		keccakString("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"),
		keccakString("HyperliquidSignTransaction"),
		keccakString("1"),
		word(0x66eee),
		make([]byte, 32),
	)

	structHash := crypto.Keccak256(
		keccakString("HyperliquidTransaction:Withdraw(string hyperliquidChain,string destination,string amount,uint64 time)"),
		keccakString("Testnet"),
		keccakString(strings.ToLower(destination)),
		keccakString(amount),
		word(time),
	)

	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator, structHash)
}

func TestSignUserActionWithdrawReference(t *testing.T) {
	s := newTestSigner(t, testKeyHex)
	destination := "0x5e9ee1089755c3435139848e47e6635505d5a13a"

	withdraw := action.Withdraw{
		Destination: types.MustParseAddress(destination),
		Amount:      "1",
		Time:        1687816341423,
	}

	want := withdrawTypedDigest(destination, "1", 1687816341423)
	digest, err := signer.UserActionDigest(withdraw, types.Testnet)
	require.NoError(t, err)
	assert.Equal(t, want, digest)

	sig, err := s.SignUserAction(context.Background(), withdraw, types.Testnet)
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKeyHex[2:])
	require.NoError(t, err)
	expected, err := crypto.Sign(want[:], key)
	require.NoError(t, err)
	expected[64] += 27

	assert.Equal(t, expected, sig.Bytes())
}

func TestConcurrentDestroyCountsOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	collectors := metrics.New("test")
	require.NoError(t, collectors.Register(reg))

	buf, err := securekey.FromHex(testKeyHex)
	require.NoError(t, err)
	if !buf.Locked() {
		buf.Destroy()
		t.Skip("memory locking unavailable")
	}

	s, err := signer.NewService(buf, signer.WithMetrics(collectors))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Destroy()
		}()
	}
	wg.Wait()

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP test_key_buffers_locked Live key buffers whose memory is locked against swapping.
# TYPE test_key_buffers_locked gauge
test_key_buffers_locked 0
`), "test_key_buffers_locked"))
}
