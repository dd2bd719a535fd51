package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSelectionToggleRejectsUnavailable(t *testing.T) {
	t.Parallel()
	sel := NewSelection()

	inactive := newItem(false, true, "1000")
	outOfStock := newItem(true, false, "1000")
	ok := newItem(true, true, "1000")

	require.False(t, sel.Toggle(inactive, true))
	require.False(t, sel.Toggle(outOfStock, true))
	require.True(t, sel.Toggle(ok, true))
	require.Equal(t, 1, sel.Count())
	require.False(t, sel.Contains(inactive.ID))

	require.False(t, sel.Toggle(ok, false))
	require.Zero(t, sel.Count())
}

func TestSelectionStoreSelectAllSkipsInactive(t *testing.T) {
	t.Parallel()
	a := newItem(true, true, "100000")
	b := newItem(true, true, "50000")
	c := newItem(false, true, "70000")
	group := StoreGroup{Store: Store{ID: uuid.New(), Name: "Shop"}, Items: []Item{a, b, c}}

	sel := NewSelection()
	sel.ToggleStore(group, true)

	require.Equal(t, 2, sel.Count())
	require.True(t, sel.Contains(a.ID))
	require.True(t, sel.Contains(b.ID))
	require.False(t, sel.Contains(c.ID))
	require.True(t, sel.Total().Equal(dec("150000")))
	require.True(t, sel.AllSelected(group))

	sel.ToggleStore(group, false)
	require.Zero(t, sel.Count())
	require.False(t, sel.AllSelected(group))
}

func TestSelectionSelectAllUnionsWithExisting(t *testing.T) {
	t.Parallel()
	a := newItem(true, true, "10")
	b := newItem(true, true, "20")
	elsewhere := newItem(true, true, "5")

	sel := NewSelection()
	sel.Toggle(elsewhere, true)
	sel.Toggle(a, true)
	sel.ToggleStore(StoreGroup{Items: []Item{a, b}}, true)

	require.Equal(t, 3, sel.Count())
	ids := []uuid.UUID{}
	for _, item := range sel.Items() {
		ids = append(ids, item.ID)
	}
	require.Equal(t, []uuid.UUID{elsewhere.ID, a.ID, b.ID}, ids)
}

func TestSelectionReconcileEvictsDeactivated(t *testing.T) {
	t.Parallel()
	a := newItem(true, true, "100")
	b := newItem(true, true, "200")
	gone := newItem(true, true, "300")

	sel := NewSelection()
	for _, item := range []Item{a, b, gone} {
		sel.Toggle(item, true)
	}

	a.IsActive = false
	b.TotalPrice = dec("250")
	sel.Reconcile([]StoreGroup{{Items: []Item{a, b}}})

	require.False(t, sel.Contains(a.ID))
	require.False(t, sel.Contains(gone.ID))
	require.True(t, sel.Contains(b.ID))
	require.True(t, sel.Total().Equal(dec("250")))
	for _, item := range sel.Items() {
		require.True(t, item.IsActive)
	}
}

func TestSelectionUpdate(t *testing.T) {
	t.Parallel()
	a := newItem(true, true, "100")
	outsider := newItem(true, true, "1")
	sel := NewSelection()
	sel.Toggle(a, true)

	a.TotalPrice = dec("150")
	sel.Update(a)
	sel.Update(outsider)
	require.True(t, sel.Total().Equal(dec("150")))
	require.False(t, sel.Contains(outsider.ID))

	a.InStock = false
	sel.Update(a)
	require.Zero(t, sel.Count())
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	sel := NewSelection()
	summary := Summarize(sel)
	require.Zero(t, summary.ItemCount)
	require.False(t, summary.CanCheckout())

	sel.Toggle(newItem(true, true, "80000"), true)
	sel.Toggle(newItem(true, true, "20000"), true)
	summary = Summarize(sel)
	require.Equal(t, 2, summary.ItemCount)
	require.True(t, summary.Subtotal.Equal(dec("100000")))
	require.True(t, summary.Discount.IsZero())
	require.True(t, summary.Total.Equal(dec("100000")))
	require.True(t, summary.CanCheckout())
}
