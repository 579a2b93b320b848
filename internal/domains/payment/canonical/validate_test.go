package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"payrouter-backend/internal/domains/payment/model"
)

func validDaimoRequest() model.CanonicalPaymentRequest {
	return model.CanonicalPaymentRequest{
		Display: model.Display{Intent: "Order", AmountUnits: "5.00", Currency: "USD"},
		Destination: model.Destination{
			ChainID:            8453,
			DestinationAddress: "0xDest",
			TokenAddress:       "0xToken",
			AmountUnits:        "5.00",
		},
	}
}

func validLumenRequest() model.CanonicalPaymentRequest {
	return model.CanonicalPaymentRequest{
		Display: model.Display{Intent: "Invoice", AmountUnits: "5.00", Currency: "USD"},
		Destination: model.Destination{
			ChainID:            10001,
			DestinationAddress: "GDEST",
			TokenSymbol:        "USDC",
			AmountUnits:        "5.00",
		},
	}
}

func TestValidateStructureValidRequests(t *testing.T) {
	assert.True(t, ValidateStructure(validDaimoRequest()).Valid)
	assert.True(t, ValidateStructure(validLumenRequest()).Valid)
}

func TestValidateStructureTokenVariantByChain(t *testing.T) {
	daimo := validDaimoRequest()
	daimo.Destination.TokenAddress = ""
	result := ValidateStructure(daimo)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Token address is required for Daimo chains")

	// symbol is not demanded on contract-first chains
	assert.NotContains(t, result.Errors, "Token symbol is required for Lumen chains")

	lumen := validLumenRequest()
	lumen.Destination.TokenSymbol = ""
	result = ValidateStructure(lumen)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Token symbol is required for Lumen chains")
}

func TestValidateStructureUnknownChainDemandsBoth(t *testing.T) {
	req := validDaimoRequest()
	req.Destination.ChainID = 424242
	req.Destination.TokenAddress = ""
	req.Destination.TokenSymbol = ""

	result := ValidateStructure(req)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Token symbol is required for unrecognized chains")
	assert.Contains(t, result.Errors, "Token address is required for unrecognized chains")
}

func TestValidateStructureCollectsEveryError(t *testing.T) {
	result := ValidateStructure(model.CanonicalPaymentRequest{})

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Display intent is required")
	assert.Contains(t, result.Errors, "Display currency is required")
	assert.Contains(t, result.Errors, "Destination chain id is required")
	assert.Contains(t, result.Errors, "Destination address is required")
	assert.Contains(t, result.Errors, "Destination amount is required")
	// zero chain id classifies as unknown, so both token fields are demanded
	assert.Len(t, result.Errors, 7)
}
