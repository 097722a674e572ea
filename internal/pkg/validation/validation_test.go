package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPrincipal(t *testing.T) {
	assert.True(t, IsValidPrincipal("alice"))
	assert.True(t, IsValidPrincipal("acct:42@house"))
	assert.False(t, IsValidPrincipal(""))
	assert.False(t, IsValidPrincipal("has space"))
	assert.False(t, IsValidPrincipal("ledger:escrow"))
	assert.False(t, IsValidPrincipal(strings.Repeat("a", 129)))
}

func TestIsValidDescription(t *testing.T) {
	assert.True(t, IsValidDescription("Final: A vs B"))
	assert.False(t, IsValidDescription("   "))
	assert.False(t, IsValidDescription(strings.Repeat("x", 501)))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("0")
	assert.True(t, ok)
	assert.Equal(t, uint(0), id)

	id, ok = ParseID("17")
	assert.True(t, ok)
	assert.Equal(t, uint(17), id)

	for _, bad := range []string{"", "-1", "abc", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}
