package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// NormalizeChainID converts a hex ("0x1") or decimal ("1") chain id to its
// decimal string form.
func NormalizeChainID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty chain id")
	}

	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("invalid chain id %q", raw)
	}
	return n.String(), nil
}

// QuantityToDecimal converts a provider quantity to a decimal string.
// Providers return quantities either as hex strings or as JSON numbers.
func QuantityToDecimal(v any) (string, error) {
	switch q := v.(type) {
	case string:
		return NormalizeChainID(q)
	case int:
		return fmt.Sprintf("%d", q), nil
	case int64:
		return fmt.Sprintf("%d", q), nil
	case uint64:
		return fmt.Sprintf("%d", q), nil
	case float64:
		if q < 0 || q != float64(int64(q)) {
			return "", fmt.Errorf("invalid quantity %v", q)
		}
		return fmt.Sprintf("%d", int64(q)), nil
	case nil:
		return "", fmt.Errorf("empty quantity")
	default:
		return "", fmt.Errorf("unsupported quantity type %T", v)
	}
}

// RawValue renders a provider result for diagnostics. A missing result
// prints as "undefined".
func RawValue(v any) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprint(v)
}
