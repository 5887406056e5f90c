package agent

import (
	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-hlsigner/internal/types"
)

// PhantomAgent is signed in place of an agent action. ConnectionID is the action hash.
type PhantomAgent struct {
	Source       string
	ConnectionID common.Hash
}

// Build wraps an action hash for env.
func Build(actionHash common.Hash, env types.Environment) PhantomAgent {
	return PhantomAgent{
		Source:       env.Source(),
		ConnectionID: actionHash,
	}
}

// Message returns the structured-data message of the Agent type.
func (p PhantomAgent) Message() map[string]any {
	return map[string]any{
		"source":       p.Source,
		"connectionId": p.ConnectionID.Bytes(),
	}
}
