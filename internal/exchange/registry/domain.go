package registry

import (
	"github/chapool/go-hlsigner/internal/types"
)

const (
	// AgentChainID is the chain id of the agent (L1 action) domain.
	AgentChainID uint64 = 1337

	// UserSignedChainID is the chain id of the user-signed action domain (0x66eee).
	UserSignedChainID uint64 = 0x66eee

	agentDomainName      = "Exchange"
	userSignedDomainName = "HyperliquidSignTransaction"
	domainVersion        = "1"
)

// Domain is a structured-data domain record.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract types.Address
}

// AgentDomain returns the domain phantom agents are signed against.
func AgentDomain() Domain {
	return Domain{
		Name:              agentDomainName,
		Version:           domainVersion,
		ChainID:           AgentChainID,
		VerifyingContract: types.ZeroAddress,
	}
}

// DomainFor returns the user-signed action domain for env. The environment is bound into
// every user-signed message through the hyperliquidChain field; the record itself is shared.
func DomainFor(_ types.Environment) Domain {
	return Domain{
		Name:              userSignedDomainName,
		Version:           domainVersion,
		ChainID:           UserSignedChainID,
		VerifyingContract: types.ZeroAddress,
	}
}

// DomainFields is the EIP712Domain type declaration matching Domain.
func DomainFields() []Field {
	return []Field{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}
}
