package canonical

import (
	"fmt"
	"strconv"
	"strings"

	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// SANITIZE
// =====================================================
// Sanitize coerces an untrusted raw body into the canonical request
// shape. It is total: malformed input collapses to safe defaults and
// never produces an error. Structural problems are reported separately
// by ValidateStructure.
func Sanitize(raw map[string]interface{}) model.CanonicalPaymentRequest {
	req := model.CanonicalPaymentRequest{}

	display := asMap(raw["display"])
	req.Display = model.Display{
		Intent:      stringOr(display["intent"], model.DefaultIntent),
		AmountUnits: stringOr(display["amountUnits"], model.DefaultAmountUnits),
		Currency:    stringOr(display["currency"], model.DefaultCurrency),
	}

	dest := asMap(raw["destination"])
	chainID := asInt64(dest["chainId"])
	req.Destination = model.Destination{
		ChainID:            chainID,
		DestinationAddress: coerceString(dest["destinationAddress"]),
		AmountUnits:        stringOr(dest["amountUnits"], req.Display.AmountUnits),
	}

	// The destination variant follows network classification: symbol-first
	// chains lead with tokenSymbol, contract-first chains with tokenAddress.
	// Both fields are carried when present; the validator enforces which
	// one is required.
	req.Destination.TokenSymbol = coerceString(dest["tokenSymbol"])
	req.Destination.TokenAddress = coerceString(dest["tokenAddress"])

	req.ExternalID = coerceString(raw["externalId"])

	if meta := asMap(raw["metadata"]); len(meta) > 0 {
		req.Metadata = sanitizeMetadata(meta)
	}

	return req
}

// sanitizeMetadata deep-sanitizes arbitrary metadata. Scalars are
// kept as-is (strings trimmed), plain objects recurse, everything
// else (arrays, functions-turned-null, binary blobs) is dropped.
func sanitizeMetadata(meta map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		switch val := v.(type) {
		case string:
			out[key] = strings.TrimSpace(val)
		case bool, float64, int, int64:
			out[key] = val
		case map[string]interface{}:
			nested := sanitizeMetadata(val)
			if len(nested) > 0 {
				out[key] = nested
			}
		default:
			// non-scalar, non-object values are dropped
		}
	}
	return out
}

// =====================================================
// COERCION HELPERS
// =====================================================

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// coerceString string-coerces and trims a scalar; non-scalars become "".
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return ""
	}
}

func stringOr(v interface{}, fallback string) string {
	if s := coerceString(v); s != "" {
		return s
	}
	return fallback
}

// asInt64 parses a chain id from whatever JSON gave us; unparseable
// values collapse to 0 (which classifies as an unknown network).
func asInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int:
		return int64(val)
	case int64:
		return val
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// ParseChainID validates a caller-supplied chain id string.
func ParseChainID(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return n, nil
}
