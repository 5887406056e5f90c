package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hlsigner/internal/types"
)

func TestEnvironment(t *testing.T) {
	assert.Equal(t, "a", types.Mainnet.Source())
	assert.Equal(t, "b", types.Testnet.Source())
	assert.Equal(t, "Mainnet", types.Mainnet.ChainName())
	assert.Equal(t, "Testnet", types.Testnet.ChainName())
	assert.Equal(t, "testnet", types.Testnet.String())

	env, err := types.ParseEnvironment(" MAINNET ")
	require.NoError(t, err)
	assert.Equal(t, types.Mainnet, env)

	_, err = types.ParseEnvironment("devnet")
	require.Error(t, err)
	assert.False(t, types.Environment(7).IsValid())
}

func TestEnvironmentJSON(t *testing.T) {
	out, err := json.Marshal(map[string]types.Environment{"env": types.Mainnet})
	require.NoError(t, err)
	assert.JSONEq(t, `{"env":"mainnet"}`, string(out))

	var in struct {
		Env types.Environment `json:"env"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"env":"Testnet"}`), &in))
	assert.Equal(t, types.Testnet, in.Env)

	require.Error(t, json.Unmarshal([]byte(`{"env":"devnet"}`), &in))

	_, err = json.Marshal(types.Environment(9))
	require.Error(t, err)
}
