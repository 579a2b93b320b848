package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoutingRules(t *testing.T) {
	rules := parseRoutingRules("8453:daimo, 10001:lumen")

	assert.Equal(t, []RoutingRule{
		{ChainID: 8453, Provider: "daimo"},
		{ChainID: 10001, Provider: "lumen"},
	}, rules)
}

func TestParseRoutingRulesSkipsMalformedEntries(t *testing.T) {
	rules := parseRoutingRules("8453:daimo,notachain:lumen,10:,::,10001:lumen")

	assert.Equal(t, []RoutingRule{
		{ChainID: 8453, Provider: "daimo"},
		{ChainID: 10001, Provider: "lumen"},
	}, rules)
}

func TestParseRoutingRulesEmpty(t *testing.T) {
	assert.Nil(t, parseRoutingRules(""))
}
