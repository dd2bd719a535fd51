package storefront

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/internal/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeAPI struct {
	mu sync.Mutex

	groups    []cart.StoreGroup
	fetchErr  error
	itemErr   error
	deleteErr map[uuid.UUID]error

	// block, when set, holds single-item mutations until closed.
	block   chan struct{}
	started chan struct{}

	onQuantity func(itemID uuid.UUID, quantity int) *cart.Item
	onAddon    func(itemID, addonID uuid.UUID) *cart.Item
	onVariant  func(itemID, variantID uuid.UUID, addonIDs []uuid.UUID) *cart.Item

	calls   []string
	deleted []uuid.UUID

	storeErr     error
	storeDeleted []uuid.UUID
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAPI) FetchCart(context.Context) ([]cart.StoreGroup, error) {
	f.record("fetch")
	return f.groups, f.fetchErr
}

func (f *fakeAPI) UpdateQuantity(_ context.Context, itemID uuid.UUID, quantity int) (*cart.Item, error) {
	f.record("quantity")
	f.wait()
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return f.onQuantity(itemID, quantity), nil
}

func (f *fakeAPI) UpdateVariant(_ context.Context, itemID, variantID uuid.UUID, addonIDs []uuid.UUID) (*cart.Item, error) {
	f.record("variant")
	f.wait()
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return f.onVariant(itemID, variantID, addonIDs), nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[itemID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, itemID)
	return nil
}

func (f *fakeAPI) DeleteStoreItems(_ context.Context, storeID uuid.UUID) (int, error) {
	f.record("delete_store")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return 0, f.storeErr
	}
	f.storeDeleted = append(f.storeDeleted, storeID)
	for _, g := range f.groups {
		if g.Store.ID == storeID {
			return len(g.Items), nil
		}
	}
	return 0, nil
}

func (f *fakeAPI) DeleteAddon(_ context.Context, itemID, addonID uuid.UUID) (*cart.Item, error) {
	f.record("addon")
	f.wait()
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return f.onAddon(itemID, addonID), nil
}

func (f *fakeAPI) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type toast struct {
	kind    string
	message string
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []toast
}

func (n *recordingNotifier) add(kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast{kind: kind, message: msg})
}

func (n *recordingNotifier) Success(_ context.Context, msg string) { n.add("success", msg) }
func (n *recordingNotifier) Info(_ context.Context, msg string) { n.add("info", msg) }
func (n *recordingNotifier) Error(_ context.Context, msg string, _ error) { n.add("error", msg) }

func (n *recordingNotifier) last() toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.toasts) == 0 {
		return toast{}
	}
	return n.toasts[len(n.toasts)-1]
}

// shirtCart builds one store with lines A (Đỏ/M) and B (Xanh/M) of the same
// product, plus an inactive line of another product.
type shirtCart struct {
	storeID  uuid.UUID
	product  uuid.UUID
	variantA uuid.UUID
	variantB uuid.UUID
	variantC uuid.UUID
	lineA    cart.Item
	lineB    cart.Item
	inactive cart.Item
	giftID   uuid.UUID
}

func newShirtCart() shirtCart {
	c := shirtCart{
		storeID:  uuid.New(),
		product:  uuid.New(),
		variantA: uuid.New(),
		variantB: uuid.New(),
		variantC: uuid.New(),
		giftID:   uuid.New(),
	}
	available := []cart.AttributeOption{
		{Name: "Màu", Values: []string{"Đỏ", "Xanh"}},
		{Name: "Size", Values: []string{"M", "L"}},
	}
	all := []cart.VariantAttribute{
		{VariantID: c.variantA, AttributeName: "Màu", AttributeValue: "Đỏ"},
		{VariantID: c.variantA, AttributeName: "Size", AttributeValue: "M"},
		{VariantID: c.variantB, AttributeName: "Màu", AttributeValue: "Xanh"},
		{VariantID: c.variantB, AttributeName: "Size", AttributeValue: "M"},
		{VariantID: c.variantC, AttributeName: "Màu", AttributeValue: "Đỏ"},
		{VariantID: c.variantC, AttributeName: "Size", AttributeValue: "L"},
	}
	variants := []cart.VariantRef{{ID: c.variantA, SKU: "A"}, {ID: c.variantB, SKU: "B"}, {ID: c.variantC, SKU: "C"}}

	c.lineA = cart.Item{
		ID:                   uuid.New(),
		ProductID:            c.product,
		VariantID:            c.variantA,
		ProductName:          "Áo thun",
		Quantity:             3,
		Price:                dec("100000"),
		TotalPrice:           dec("345000"),
		Addons:               []cart.Addon{{AddonID: c.giftID, AddonName: "Hộp quà", PriceAdjust: dec("15000")}},
		VariantAttributes:    []cart.AttributeValue{{AttributeName: "Màu", AttributeValue: "Đỏ"}, {AttributeName: "Size", AttributeValue: "M"}},
		AvailableAttributes:  available,
		AllVariantAttributes: all,
		Variants:             variants,
		InStock:              true,
		IsActive:             true,
	}
	c.lineB = cart.Item{
		ID:                   uuid.New(),
		ProductID:            c.product,
		VariantID:            c.variantB,
		ProductName:          "Áo thun",
		Quantity:             1,
		Price:                dec("100000"),
		TotalPrice:           dec("80000"),
		VariantAttributes:    []cart.AttributeValue{{AttributeName: "Màu", AttributeValue: "Xanh"}, {AttributeName: "Size", AttributeValue: "M"}},
		AvailableAttributes:  available,
		AllVariantAttributes: all,
		Variants:             variants,
		InStock:              true,
		IsActive:             true,
		FlashSale:            &cart.FlashSale{PercentageDiscount: 20},
	}
	c.inactive = cart.Item{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		VariantID:   uuid.New(),
		ProductName: "Quần jean",
		Quantity:    1,
		Price:       dec("450000"),
		TotalPrice:  dec("450000"),
		InStock:     true,
		IsActive:    false,
	}
	return c
}

func (c shirtCart) groups() []cart.StoreGroup {
	return []cart.StoreGroup{
		{Store: cart.Store{ID: c.storeID, Name: "Thời Trang Việt"}, Items: []cart.Item{c.lineA.Clone(), c.lineB.Clone(), c.inactive.Clone()}},
		{Store: cart.Store{ID: uuid.New(), Name: "Cửa hàng trống"}, Items: []cart.Item{}},
	}
}

func newLoadedSession(t *testing.T, api *fakeAPI) (*Session, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	s, err := NewSession(SessionParams{API: api, Notifier: notifier})
	require.NoError(t, err)
	require.NoError(t, s.Load(context.Background()))
	return s, notifier
}

func TestNewSessionRequiresAPI(t *testing.T) {
	_, err := NewSession(SessionParams{})
	require.Error(t, err)
}

func TestLoadDropsEmptyGroups(t *testing.T) {
	c := newShirtCart()
	s, _ := newLoadedSession(t, &fakeAPI{groups: c.groups()})

	groups := s.Groups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 3)
}

func TestLoadFailureKeepsStateAndNotifies(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	s, notifier := newLoadedSession(t, api)

	api.fetchErr = errors.New("network down")
	require.Error(t, s.Load(context.Background()))
	require.Len(t, s.Groups(), 1)
	require.Equal(t, toast{kind: "error", message: msgLoadFailed}, notifier.last())
}

func TestVariantEditorDisablesUpdateForVariantAlreadyInCart(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	s, notifier := newLoadedSession(t, api)

	editor, err := s.OpenVariantEditor(c.lineA.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Màu": "Đỏ", "Size": "M"}, editor.Selection())

	require.NoError(t, editor.Choose("Màu", "Xanh"))
	id, ok := editor.Resolve()
	require.True(t, ok)
	require.Equal(t, c.variantB, id)
	require.True(t, editor.IsDuplicate())
	require.False(t, editor.CanSubmit())

	require.ErrorIs(t, s.ChangeVariant(context.Background(), editor), ErrDuplicateVariant)
	require.Zero(t, api.callCount("variant"))
	require.Equal(t, toast{kind: "error", message: msgVariantDuplicate}, notifier.last())
}

func TestVariantEditorRejectsIncompleteAndUnchanged(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	s, notifier := newLoadedSession(t, api)

	editor, err := s.OpenVariantEditor(c.lineA.ID)
	require.NoError(t, err)
	require.ErrorIs(t, s.ChangeVariant(context.Background(), editor), ErrVariantUnchanged)
	require.Equal(t, "info", notifier.last().kind)

	editor.Clear("Size")
	require.False(t, editor.CanSubmit())
	require.ErrorIs(t, s.ChangeVariant(context.Background(), editor), ErrIncompleteSelection)
	require.Equal(t, msgVariantIncomplete, notifier.last().message)

	require.ErrorIs(t, editor.Choose("Size", "XXL"), ErrUnknownAttribute)
	require.ErrorIs(t, editor.Choose("Chất liệu", "Cotton"), ErrUnknownAttribute)
	require.Zero(t, api.callCount("variant"))

	_, err = s.OpenVariantEditor(c.inactive.ID)
	require.ErrorIs(t, err, ErrItemUnavailable)
}

func TestChangeVariantReplacesItemWithServerResponse(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	var sentAddons []uuid.UUID
	api.onVariant = func(itemID, variantID uuid.UUID, addonIDs []uuid.UUID) *cart.Item {
		sentAddons = addonIDs
		updated := c.lineA.Clone()
		updated.VariantID = variantID
		updated.VariantAttributes = []cart.AttributeValue{{AttributeName: "Màu", AttributeValue: "Đỏ"}, {AttributeName: "Size", AttributeValue: "L"}}
		updated.TotalPrice = dec("375000")
		return &updated
	}
	s, notifier := newLoadedSession(t, api)
	require.True(t, s.ToggleItem(c.lineA.ID, true))

	editor, err := s.OpenVariantEditor(c.lineA.ID)
	require.NoError(t, err)
	require.NoError(t, editor.Choose("Size", "L"))
	require.True(t, editor.CanSubmit())

	require.NoError(t, s.ChangeVariant(context.Background(), editor))
	require.Equal(t, []uuid.UUID{c.giftID}, sentAddons)

	item, ok := s.Item(c.lineA.ID)
	require.True(t, ok)
	require.Equal(t, c.variantC, item.VariantID)
	require.True(t, dec("375000").Equal(item.TotalPrice))
	require.True(t, dec("375000").Equal(s.Summary().Total), "selection follows the server total")
	require.Equal(t, "success", notifier.last().kind)
}

func TestQuantityChangeReconcilesWithServer(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	api.onQuantity = func(itemID uuid.UUID, quantity int) *cart.Item {
		updated := c.lineA.Clone()
		updated.Quantity = quantity
		// server pricing differs from the client prediction of 460000
		updated.TotalPrice = dec("452000")
		return &updated
	}
	s, notifier := newLoadedSession(t, api)

	require.NoError(t, s.IncreaseQuantity(context.Background(), c.lineA.ID))
	item, _ := s.Item(c.lineA.ID)
	require.Equal(t, 4, item.Quantity)
	require.True(t, dec("452000").Equal(item.TotalPrice))
	_, pending := s.PredictedTotal(c.lineA.ID)
	require.False(t, pending)
	require.Equal(t, toast{kind: "success", message: "Tăng số lượng Áo thun thành công!"}, notifier.last())
}

func TestQuantityPredictionWhileInFlightAndBusyGuard(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups(), block: make(chan struct{}), started: make(chan struct{}, 1)}
	api.onQuantity = func(itemID uuid.UUID, quantity int) *cart.Item {
		updated := c.lineA.Clone()
		updated.Quantity = quantity
		updated.TotalPrice = dec("460000")
		return &updated
	}
	s, _ := newLoadedSession(t, api)

	done := make(chan error, 1)
	go func() { done <- s.IncreaseQuantity(context.Background(), c.lineA.ID) }()
	<-api.started

	predicted, ok := s.PredictedTotal(c.lineA.ID)
	require.True(t, ok)
	require.True(t, dec("460000").Equal(predicted), predicted.String())
	require.True(t, s.InFlight(c.lineA.ID))

	require.ErrorIs(t, s.IncreaseQuantity(context.Background(), c.lineA.ID), ErrItemBusy)
	require.ErrorIs(t, s.RemoveAddon(context.Background(), c.lineA.ID, c.giftID), ErrItemBusy)
	require.ErrorIs(t, s.DeleteItem(context.Background(), c.lineA.ID), ErrItemBusy)

	close(api.block)
	require.NoError(t, <-done)
	require.Equal(t, 1, api.callCount("quantity"))
	require.False(t, s.InFlight(c.lineA.ID))
}

func TestDecreaseQuantityIsInertAtOne(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	s, _ := newLoadedSession(t, api)

	require.ErrorIs(t, s.DecreaseQuantity(context.Background(), c.lineB.ID), cart.ErrQuantityFloor)
	require.ErrorIs(t, s.IncreaseQuantity(context.Background(), c.inactive.ID), ErrItemUnavailable)
	require.ErrorIs(t, s.IncreaseQuantity(context.Background(), uuid.New()), ErrItemNotFound)
	require.Zero(t, api.callCount("quantity"))
}

func TestMutationFailureLeavesStateUntouched(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups(), itemErr: errors.New("503")}
	s, notifier := newLoadedSession(t, api)

	require.Error(t, s.DecreaseQuantity(context.Background(), c.lineA.ID))
	item, _ := s.Item(c.lineA.ID)
	require.Equal(t, 3, item.Quantity)
	require.True(t, dec("345000").Equal(item.TotalPrice))
	require.Equal(t, toast{kind: "error", message: msgDecreaseFailed}, notifier.last())

	require.Error(t, s.RemoveAddon(context.Background(), c.lineA.ID, c.giftID))
	item, _ = s.Item(c.lineA.ID)
	require.Len(t, item.Addons, 1)
	require.False(t, s.InFlight(c.lineA.ID))
	_, pending := s.PredictedTotal(c.lineA.ID)
	require.False(t, pending)
}

func TestRemoveAddonPredictsThenReconciles(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups(), block: make(chan struct{}), started: make(chan struct{}, 1)}
	api.onAddon = func(itemID, addonID uuid.UUID) *cart.Item {
		updated := c.lineA.Clone()
		updated.Addons = nil
		updated.TotalPrice = dec("300000")
		return &updated
	}
	s, notifier := newLoadedSession(t, api)

	require.ErrorIs(t, s.RemoveAddon(context.Background(), c.lineA.ID, uuid.New()), ErrAddonNotFound)

	done := make(chan error, 1)
	go func() { done <- s.RemoveAddon(context.Background(), c.lineA.ID, c.giftID) }()
	<-api.started
	predicted, ok := s.PredictedTotal(c.lineA.ID)
	require.True(t, ok)
	// 345000 - 15000 * 3
	require.True(t, dec("300000").Equal(predicted))
	close(api.block)
	require.NoError(t, <-done)

	item, _ := s.Item(c.lineA.ID)
	require.Empty(t, item.Addons)
	require.Equal(t, "Đã xóa phụ kiện Hộp quà!", notifier.last().message)
}

func TestDeleteItemDropsEmptyStore(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: []cart.StoreGroup{
		{Store: cart.Store{ID: c.storeID, Name: "Thời Trang Việt"}, Items: []cart.Item{c.lineA.Clone()}},
	}}
	s, notifier := newLoadedSession(t, api)
	require.True(t, s.ToggleItem(c.lineA.ID, true))

	require.NoError(t, s.DeleteItem(context.Background(), c.lineA.ID))
	require.Empty(t, s.Groups())
	require.Zero(t, s.Summary().ItemCount)
	require.Equal(t, "Đã xóa sản phẩm Áo thun!", notifier.last().message)
	require.ErrorIs(t, s.DeleteItem(context.Background(), c.lineA.ID), ErrItemNotFound)
}

func TestDeleteStore(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups()}
	s, notifier := newLoadedSession(t, api)

	require.NoError(t, s.DeleteStore(context.Background(), c.storeID))
	require.Empty(t, s.Groups())
	require.Equal(t, []uuid.UUID{c.storeID}, api.storeDeleted)
	require.Equal(t, 1, api.callCount("delete_store"))
	require.Zero(t, api.callCount("delete"), "a store-wide delete needs no per-item requests")
	require.Equal(t, "Đã xóa tất cả sản phẩm của Thời Trang Việt!", notifier.last().message)

	require.ErrorIs(t, s.DeleteStore(context.Background(), c.storeID), ErrStoreNotFound)
}

func TestDeleteStorePartialFailureKeepsGroup(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{
		groups:    c.groups(),
		storeErr:  errors.New("bad gateway"),
		deleteErr: map[uuid.UUID]error{c.lineB.ID: errors.New("timeout")},
	}
	s, notifier := newLoadedSession(t, api)

	err := s.DeleteStore(context.Background(), c.storeID)
	require.Error(t, err)
	require.Contains(t, err.Error(), c.lineB.ID.String())
	require.Equal(t, 3, api.callCount("delete"))
	require.ElementsMatch(t, []uuid.UUID{c.lineA.ID, c.inactive.ID}, api.deleted)

	groups := s.Groups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	require.Equal(t, c.lineB.ID, groups[0].Items[0].ID)
	require.False(t, s.InFlight(c.lineB.ID))
	require.Equal(t, toast{kind: "error", message: msgDeleteStoreFail}, notifier.last())
}

func TestDeleteStoreFallsBackToPerItemDeletes(t *testing.T) {
	c := newShirtCart()
	api := &fakeAPI{groups: c.groups(), storeErr: errors.New("bad gateway")}
	s, notifier := newLoadedSession(t, api)

	require.NoError(t, s.DeleteStore(context.Background(), c.storeID))
	require.Empty(t, s.Groups())
	require.ElementsMatch(t, []uuid.UUID{c.lineA.ID, c.lineB.ID, c.inactive.ID}, api.deleted)
	require.Equal(t, "Đã xóa tất cả sản phẩm của Thời Trang Việt!", notifier.last().message)
}

func TestSelectionThroughSession(t *testing.T) {
	c := newShirtCart()
	s, _ := newLoadedSession(t, &fakeAPI{groups: c.groups()})

	require.NoError(t, s.ToggleStore(c.storeID, true))
	selected := s.Selected()
	require.Len(t, selected, 2)
	assert.True(t, s.IsSelected(c.lineA.ID))
	assert.True(t, s.IsSelected(c.lineB.ID))
	assert.False(t, s.IsSelected(c.inactive.ID))
	assert.True(t, s.StoreSelected(c.storeID))

	summary := s.Summary()
	require.Equal(t, 2, summary.ItemCount)
	require.True(t, dec("425000").Equal(summary.Total))
	require.True(t, summary.CanCheckout())

	require.NoError(t, s.MarkInactive(c.lineB.ID))
	require.False(t, s.IsSelected(c.lineB.ID))
	require.True(t, dec("345000").Equal(s.Summary().Total))
	require.False(t, s.ToggleItem(c.lineB.ID, true))

	require.NoError(t, s.ToggleStore(c.storeID, false))
	require.Zero(t, s.Summary().ItemCount)
	require.ErrorIs(t, s.ToggleStore(uuid.New(), true), ErrStoreNotFound)
}

func TestStoreStatsAndPartition(t *testing.T) {
	c := newShirtCart()
	s, _ := newLoadedSession(t, &fakeAPI{groups: c.groups()})

	stats := s.StoreStats()[c.storeID]
	require.Equal(t, 1, stats.FlashSaleCount)
	require.True(t, dec("20000").Equal(stats.TotalSavings))
	require.True(t, dec("425000").Equal(stats.DiscountedTotal))

	active, inactive := s.Partition()
	require.Len(t, active, 1)
	require.Len(t, active[0].Items, 2)
	require.Len(t, inactive, 1)
	require.Equal(t, c.inactive.ID, inactive[0].ID)
}
