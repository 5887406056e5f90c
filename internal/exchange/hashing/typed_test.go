package hashing_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hlsigner/internal/exchange/action"
	"github/chapool/go-hlsigner/internal/exchange/agent"
	"github/chapool/go-hlsigner/internal/exchange/hashing"
	"github/chapool/go-hlsigner/internal/exchange/registry"
	"github/chapool/go-hlsigner/internal/types"
)

// manualAgentDigest hashes a phantom agent without apitypes.
func manualAgentDigest(source string, connectionID common.Hash) common.Hash {
	domainTypeHash := crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	domainSeparator := crypto.Keccak256(
		domainTypeHash,
		crypto.Keccak256([]byte("Exchange")),
		crypto.Keccak256([]byte("1")),
		math.U256Bytes(big.NewInt(1337)),
		common.LeftPadBytes(common.Address{}.Bytes(), 32),
	)

	agentTypeHash := crypto.Keccak256([]byte("Agent(string source,bytes32 connectionId)"))
	structHash := crypto.Keccak256(agentTypeHash, crypto.Keccak256([]byte(source)), connectionID.Bytes())

	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator, structHash)
}

func TestAgentDigestMatchesManualEncoding(t *testing.T) {
	actionHash, err := hashing.ActionHash(testOrder(), nil, 0, nil)
	require.NoError(t, err)

	for _, env := range []types.Environment{types.Mainnet, types.Testnet} {
		digest, err := hashing.AgentDigest(agent.Build(actionHash, env))
		require.NoError(t, err)
		assert.Equal(t, manualAgentDigest(env.Source(), actionHash), digest, env.String())
	}
}

func testWithdraw() action.Withdraw {
	return action.Withdraw{
		Destination: types.MustParseAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a"),
		Amount:      "1",
		Time:        1687816341423,
	}
}

func TestUserDigestBindsEnvironment(t *testing.T) {
	testnet, err := hashing.UserDigest(testWithdraw(), types.Testnet)
	require.NoError(t, err)
	again, err := hashing.UserDigest(testWithdraw(), types.Testnet)
	require.NoError(t, err)
	mainnet, err := hashing.UserDigest(testWithdraw(), types.Mainnet)
	require.NoError(t, err)

	assert.Equal(t, testnet, again)
	assert.NotEqual(t, testnet, mainnet)
}

func TestUserTypedDataShape(t *testing.T) {
	td, err := hashing.UserTypedData(testWithdraw(), types.Mainnet)
	require.NoError(t, err)

	assert.Equal(t, "HyperliquidTransaction:Withdraw", td.PrimaryType)
	assert.Equal(t, "HyperliquidSignTransaction", td.Domain.Name)
	assert.Equal(t, "Mainnet", td.Message["hyperliquidChain"])
	assert.Equal(t, "0x5e9ee1089755c3435139848e47e6635505d5a13a", td.Message["destination"])
	assert.Len(t, td.Message, 4)
}

func TestUserDigestEveryUserKind(t *testing.T) {
	addr := types.MustParseAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a")

	actions := []action.Action{
		action.UsdTransfer{Destination: addr, Amount: "10.5", Time: 1},
		action.SpotTransfer{Destination: addr, Token: "PURR:0xc4bf3f870c0e9465323c0b6ed28096c2", Amount: "3", Time: 1},
		testWithdraw(),
		action.UsdClassTransfer{Amount: "2", ToPerp: true, Nonce: 1},
		action.TokenDelegate{Validator: addr, Wei: 100000000, Nonce: 1},
		action.SendAsset{Destination: addr, Token: "USDC", Amount: "1", Nonce: 1},
		action.ApproveBuilderFee{MaxFeeRate: "0.001%", Builder: addr, Nonce: 1},
		action.UserDexAbstraction{User: addr, Enabled: true, Nonce: 1},
		action.ConvertToMultiSigUser{AuthorizedUsers: []types.Address{addr}, Threshold: 1, Nonce: 1},
		&action.MultiSig{Inner: testWithdraw(), MultiSigUser: addr, Nonce: 1},
	}

	seen := map[common.Hash]action.Kind{}
	for _, a := range actions {
		digest, err := hashing.UserDigest(a, types.Testnet)
		require.NoError(t, err, a.Kind().String())

		_, dup := seen[digest]
		assert.False(t, dup, a.Kind().String())
		seen[digest] = a.Kind()
	}
}

func TestUserDigestRejectsAgentKinds(t *testing.T) {
	_, err := hashing.UserDigest(testOrder(), types.Mainnet)
	require.ErrorIs(t, err, types.ErrInvalidAction)

	_, err = hashing.UserDigest(nil, types.Mainnet)
	require.ErrorIs(t, err, types.ErrInvalidAction)
}

func TestUserMessageRejectsSchemaDrift(t *testing.T) {
	schema, err := registry.SchemaFor(action.KindWithdraw)
	require.NoError(t, err)

	// A UsdTransfer carries the same fields as a Withdraw, so it fits the Withdraw schema.
	_, err = hashing.UserMessage(action.UsdTransfer{Destination: testWithdraw().Destination, Amount: "1"}, schema, types.Mainnet)
	require.NoError(t, err)

	usdClass, err := registry.SchemaFor(action.KindUsdClassTransfer)
	require.NoError(t, err)
	_, err = hashing.UserMessage(testWithdraw(), usdClass, types.Mainnet)
	require.ErrorIs(t, err, types.ErrInvalidAction)
}
