package address

import (
	"fmt"

	"github.com/pkg/errors"
)

// DefaultDerivationPath is the first account of the standard EVM BIP44 tree.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// ErrInvalidMnemonic is returned for mnemonics that fail the BIP39 word list or checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// BIP44Path gets BIP44 path (fixed format for EVM chains)
// Format: m/44'/60'/0'/0/{index}
func BIP44Path(addressIndex uint32) string {
	return fmt.Sprintf("m/44'/60'/0'/0/%d", addressIndex)
}
