package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextQuantity(t *testing.T) {
	t.Parallel()

	next, err := NextQuantity(2, 1)
	require.NoError(t, err)
	require.Equal(t, 3, next)

	next, err = NextQuantity(2, -1)
	require.NoError(t, err)
	require.Equal(t, 1, next)

	next, err = NextQuantity(1, -1)
	require.ErrorIs(t, err, ErrQuantityFloor)
	require.Equal(t, 1, next)

	_, err = NextQuantity(2, 2)
	require.ErrorIs(t, err, ErrInvalidDelta)

	_, err = NextQuantity(0, 1)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPredictQuantityTotal(t *testing.T) {
	t.Parallel()

	got, err := PredictQuantityTotal(dec("345000"), 3, 4)
	require.NoError(t, err)
	require.True(t, got.Equal(dec("460000")), got.String())

	got, err = PredictQuantityTotal(dec("160000"), 2, 1)
	require.NoError(t, err)
	require.True(t, got.Equal(dec("80000")), got.String())

	got, err = PredictQuantityTotal(dec("100"), 3, 2)
	require.NoError(t, err)
	require.True(t, got.Equal(dec("66.67")), got.String())

	_, err = PredictQuantityTotal(dec("100"), 0, 1)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPredictAddonRemovalTotal(t *testing.T) {
	t.Parallel()

	got := PredictAddonRemovalTotal(dec("345000"), dec("15000"), 3)
	require.True(t, got.Equal(dec("300000")), got.String())

	cases := []struct {
		total, adjust string
		qty           int
		want          string
	}{
		{"0", "0", 5, "0"},
		{"120000.50", "2500.25", 2, "115000"},
		{"50000", "-10000", 1, "60000"},
	}
	for _, tc := range cases {
		got := PredictAddonRemovalTotal(dec(tc.total), dec(tc.adjust), tc.qty)
		require.True(t, got.Equal(dec(tc.want)), "%v got %s", tc, got)
	}
}
