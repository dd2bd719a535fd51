package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("buyer")
	require.NoError(t, err)
	require.Equal(t, UserRoleBuyer, role)
	require.True(t, role.IsValid())

	_, err = ParseUserRole("owner")
	require.Error(t, err)
	require.False(t, UserRole("owner").IsValid())
}

func TestParseCatalogEventType(t *testing.T) {
	for _, raw := range []string{"product.deactivated", "product.activated", "variant.stock_changed"} {
		typ, err := ParseCatalogEventType(raw)
		require.NoError(t, err)
		require.Equal(t, raw, typ.String())
	}
	_, err := ParseCatalogEventType("product.deleted")
	require.Error(t, err)
}
