package canonical

import (
	"payrouter-backend/internal/domains/payment/model"
)

// =====================================================
// STRUCTURAL VALIDATION
// =====================================================

type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateStructure checks required-field presence on a sanitized
// request. The destination variant decides which token-identification
// field is demanded: symbol-first networks require tokenSymbol,
// contract-first networks require tokenAddress, and unknown networks
// conservatively require both.
func ValidateStructure(req model.CanonicalPaymentRequest) ValidationResult {
	var errs []string

	if req.Display.Intent == "" {
		errs = append(errs, "Display intent is required")
	}
	if req.Display.Currency == "" {
		errs = append(errs, "Display currency is required")
	}

	dest := req.Destination
	if dest.ChainID == 0 {
		errs = append(errs, "Destination chain id is required")
	}
	if dest.DestinationAddress == "" {
		errs = append(errs, "Destination address is required")
	}
	if dest.AmountUnits == "" {
		errs = append(errs, "Destination amount is required")
	}

	switch {
	case model.IsLumenChain(dest.ChainID):
		if dest.TokenSymbol == "" {
			errs = append(errs, "Token symbol is required for Lumen chains")
		}
	case model.IsDaimoChain(dest.ChainID):
		if dest.TokenAddress == "" {
			errs = append(errs, "Token address is required for Daimo chains")
		}
	default:
		// Unknown network: demand both so a later routing decision
		// cannot strand a request missing its primary identifier.
		if dest.TokenSymbol == "" {
			errs = append(errs, "Token symbol is required for unrecognized chains")
		}
		if dest.TokenAddress == "" {
			errs = append(errs, "Token address is required for unrecognized chains")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
