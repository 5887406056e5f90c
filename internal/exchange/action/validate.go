package action

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	"github/chapool/go-hlsigner/internal/types"
)

// decimalPattern matches the wire form of prices, sizes and amounts: no sign, no exponent,
// no trailing fractional zeros.
var decimalPattern = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.[0-9]*[1-9])?$`)

func invalid(kind Kind, format string, args ...any) error {
	return errors.Wrapf(types.ErrInvalidAction, "%s: %s", kind, fmt.Sprintf(format, args...))
}

func requireDecimal(kind Kind, field string, value string) error {
	if !decimalPattern.MatchString(value) {
		return invalid(kind, "%s %q is not a canonical decimal", field, value)
	}
	return nil
}

func requireNonEmpty(kind Kind, field string, value string) error {
	if value == "" {
		return invalid(kind, "%s is required", field)
	}
	return nil
}

func requireAddress(kind Kind, field string, value types.Address) error {
	if value.IsZero() {
		return invalid(kind, "%s must not be the zero address", field)
	}
	return nil
}
