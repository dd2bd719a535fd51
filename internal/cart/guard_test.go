package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIsDuplicateVariant(t *testing.T) {
	t.Parallel()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	existing := []uuid.UUID{a, b}

	require.True(t, IsDuplicateVariant(b, existing, a), "other line already holds b")
	require.False(t, IsDuplicateVariant(a, existing, a), "reselecting own variant is a no-op")
	require.False(t, IsDuplicateVariant(c, existing, a), "c is not in cart")
	require.False(t, IsDuplicateVariant(uuid.Nil, existing, a), "unresolved candidate")
	require.False(t, IsDuplicateVariant(b, nil, a))
}

func TestVariantIDsByProduct(t *testing.T) {
	t.Parallel()
	product := uuid.New()
	a := Item{ID: uuid.New(), ProductID: product, VariantID: uuid.New()}
	b := Item{ID: uuid.New(), ProductID: product, VariantID: uuid.New()}
	other := Item{ID: uuid.New(), ProductID: uuid.New(), VariantID: uuid.New()}

	idx := VariantIDsByProduct([]StoreGroup{
		{Store: Store{ID: uuid.New()}, Items: []Item{a, other}},
		{Store: Store{ID: uuid.New()}, Items: []Item{b}},
	})
	require.ElementsMatch(t, []uuid.UUID{a.VariantID, b.VariantID}, idx[product])
	require.Equal(t, []uuid.UUID{other.VariantID}, idx[other.ProductID])
}
