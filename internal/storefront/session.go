package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/internal/cart"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultDeleteFanOut = 4

// SessionParams wires a Session. Notifier and Logger default to log-backed no-ops.
type SessionParams struct {
	API          CartAPI
	Notifier     Notifier
	Logger       *logger.Logger
	DeleteFanOut int
}

// Session is one shopper's cart page state: the store groups as last confirmed
// by the server, the checkout selection, and the per-item requests in flight.
// State only changes through its methods; the server response of every
// mutation replaces the affected item.
type Session struct {
	api    CartAPI
	notify Notifier
	logg   *logger.Logger
	fanOut int

	mu        sync.Mutex
	groups    []cart.StoreGroup
	selection *cart.Selection
	inflight  map[uuid.UUID]struct{}
	predicted map[uuid.UUID]decimal.Decimal
}

func NewSession(p SessionParams) (*Session, error) {
	if p.API == nil {
		return nil, fmt.Errorf("cart api required")
	}
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	notify := p.Notifier
	if notify == nil {
		notify = NewLogNotifier(logg)
	}
	fanOut := p.DeleteFanOut
	if fanOut <= 0 {
		fanOut = defaultDeleteFanOut
	}
	return &Session{
		api:       p.API,
		notify:    notify,
		logg:      logg,
		fanOut:    fanOut,
		selection: cart.NewSelection(),
		inflight:  map[uuid.UUID]struct{}{},
		predicted: map[uuid.UUID]decimal.Decimal{},
	}, nil
}

// Load fetches the cart and reconciles the selection against it.
func (s *Session) Load(ctx context.Context) error {
	groups, err := s.api.FetchCart(ctx)
	if err != nil {
		s.notify.Error(ctx, msgLoadFailed, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = cart.DropEmptyGroups(groups)
	s.selection.Reconcile(s.groups)
	return nil
}

// Groups returns a copy of the current store groups.
func (s *Session) Groups() []cart.StoreGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cart.StoreGroup, len(s.groups))
	for i, g := range s.groups {
		items := make([]cart.Item, len(g.Items))
		for j, item := range g.Items {
			items[j] = item.Clone()
		}
		out[i] = cart.StoreGroup{Store: g.Store, Items: items}
	}
	return out
}

func (s *Session) Item(id uuid.UUID) (cart.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gi, ii, ok := s.locate(id)
	if !ok {
		return cart.Item{}, false
	}
	return s.groups[gi].Items[ii].Clone(), true
}

// PredictedTotal is the optimistic total shown while a mutation of the item is in flight.
func (s *Session) PredictedTotal(id uuid.UUID) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, ok := s.predicted[id]
	return total, ok
}

func (s *Session) InFlight(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[id]
	return ok
}

func (s *Session) IncreaseQuantity(ctx context.Context, id uuid.UUID) error {
	return s.changeQuantity(ctx, id, 1)
}

// DecreaseQuantity lowers the quantity by one; at quantity 1 it is inert.
func (s *Session) DecreaseQuantity(ctx context.Context, id uuid.UUID) error {
	return s.changeQuantity(ctx, id, -1)
}

func (s *Session) changeQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	okMsg, failMsg := msgIncreaseOK, msgIncreaseFailed
	if delta < 0 {
		okMsg, failMsg = msgDecreaseOK, msgDecreaseFailed
	}

	s.mu.Lock()
	item, err := s.mutableItem(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, err := cart.NextQuantity(item.Quantity, delta)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	predicted, err := cart.PredictQuantityTotal(item.TotalPrice, item.Quantity, next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.begin(id, predicted)
	s.mu.Unlock()

	updated, err := s.api.UpdateQuantity(ctx, id, next)
	return s.finish(ctx, id, updated, err, fmt.Sprintf(okMsg, item.ProductName), failMsg)
}

// RemoveAddon detaches addonID from the item.
func (s *Session) RemoveAddon(ctx context.Context, id, addonID uuid.UUID) error {
	s.mu.Lock()
	item, err := s.mutableItem(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	addon, ok := item.FindAddon(addonID)
	if !ok {
		s.mu.Unlock()
		return ErrAddonNotFound
	}
	s.begin(id, cart.PredictAddonRemovalTotal(item.TotalPrice, addon.PriceAdjust, item.Quantity))
	s.mu.Unlock()

	updated, err := s.api.DeleteAddon(ctx, id, addonID)
	return s.finish(ctx, id, updated, err, fmt.Sprintf(msgDeleteAddonOK, addon.AddonName), msgDeleteAddonFail)
}

// OpenVariantEditor starts a variant change for an active item.
func (s *Session) OpenVariantEditor(id uuid.UUID) (*VariantEditor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gi, ii, ok := s.locate(id)
	if !ok {
		return nil, ErrItemNotFound
	}
	item := s.groups[gi].Items[ii]
	if !item.IsActive {
		return nil, ErrItemUnavailable
	}
	existing := cart.VariantIDsByProduct(s.groups)[item.ProductID]
	return newVariantEditor(item, existing), nil
}

// ChangeVariant submits the editor's selection. Incomplete, unchanged and
// duplicate selections are rejected without a request.
func (s *Session) ChangeVariant(ctx context.Context, editor *VariantEditor) error {
	if editor == nil {
		return ErrItemNotFound
	}
	variantID, err := editor.Validate()
	switch {
	case err == nil:
	case errors.Is(err, ErrVariantUnchanged):
		s.notify.Info(ctx, msgVariantUnchanged)
		return err
	case errors.Is(err, ErrDuplicateVariant):
		s.notify.Error(ctx, msgVariantDuplicate, err)
		return err
	default:
		s.notify.Error(ctx, msgVariantIncomplete, err)
		return err
	}

	s.mu.Lock()
	gi, ii, ok := s.locate(editor.ItemID())
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	item := s.groups[gi].Items[ii]
	if !item.IsActive {
		s.mu.Unlock()
		return ErrItemUnavailable
	}
	if _, busy := s.inflight[item.ID]; busy {
		s.mu.Unlock()
		return ErrItemBusy
	}
	// the cart may have changed since the editor opened
	existing := cart.VariantIDsByProduct(s.groups)[item.ProductID]
	if cart.IsDuplicateVariant(variantID, existing, item.VariantID) {
		s.mu.Unlock()
		s.notify.Error(ctx, msgVariantDuplicate, ErrDuplicateVariant)
		return ErrDuplicateVariant
	}
	s.inflight[item.ID] = struct{}{}
	s.mu.Unlock()

	addonIDs := make([]uuid.UUID, 0, len(item.Addons))
	for _, a := range item.Addons {
		addonIDs = append(addonIDs, a.AddonID)
	}
	updated, err := s.api.UpdateVariant(ctx, item.ID, variantID, addonIDs)
	return s.finish(ctx, item.ID, updated, err, fmt.Sprintf(msgVariantOK, item.ProductName), msgVariantFailed)
}

// DeleteItem removes the item in any state.
func (s *Session) DeleteItem(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	gi, ii, ok := s.locate(id)
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	item := s.groups[gi].Items[ii]
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return ErrItemBusy
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()

	err := s.api.DeleteItem(ctx, id)

	s.mu.Lock()
	delete(s.inflight, id)
	if err == nil {
		s.removeItems(id)
	}
	s.mu.Unlock()

	if err != nil {
		s.notify.Error(ctx, msgDeleteItemFailed, err)
		return err
	}
	s.notify.Success(ctx, fmt.Sprintf(msgDeleteItemOK, item.ProductName))
	return nil
}

// DeleteStore removes every item of one store group with a single store-wide
// request. When that request fails the items are deleted one by one
// concurrently, so the failures can be reported per item. The group
// disappears only when every delete succeeded; items whose delete succeeded
// are dropped either way.
func (s *Session) DeleteStore(ctx context.Context, storeID uuid.UUID) error {
	s.mu.Lock()
	group, ok := s.group(storeID)
	if !ok {
		s.mu.Unlock()
		return ErrStoreNotFound
	}
	for _, item := range group.Items {
		if _, busy := s.inflight[item.ID]; busy {
			s.mu.Unlock()
			return ErrItemBusy
		}
	}
	ids := make([]uuid.UUID, 0, len(group.Items))
	for _, item := range group.Items {
		s.inflight[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}
	s.mu.Unlock()

	deleted := make([]bool, len(ids))
	var errs error
	if _, err := s.api.DeleteStoreItems(ctx, storeID); err == nil {
		for i := range deleted {
			deleted[i] = true
		}
	} else {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"store_id": storeID.String(),
			"error":    err.Error(),
		}), "storefront.delete_store.fallback")
		errs = s.deleteEach(ctx, ids, deleted)
	}

	s.mu.Lock()
	removed := make([]uuid.UUID, 0, len(ids))
	for i, id := range ids {
		delete(s.inflight, id)
		if deleted[i] {
			removed = append(removed, id)
		}
	}
	s.removeItems(removed...)
	s.mu.Unlock()

	if errs != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"store_id": storeID.String(),
			"failed":   len(multierr.Errors(errs)),
		}), "storefront.delete_store.partial")
		s.notify.Error(ctx, msgDeleteStoreFail, errs)
		return errs
	}
	s.notify.Success(ctx, fmt.Sprintf(msgDeleteStoreOK, group.Store.Name))
	return nil
}

// deleteEach deletes ids concurrently, marking successes in deleted and
// aggregating the failures.
func (s *Session) deleteEach(ctx context.Context, ids []uuid.UUID, deleted []bool) error {
	var (
		errMu sync.Mutex
		errs  error
		g     errgroup.Group
	)
	g.SetLimit(s.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			if err := s.api.DeleteItem(ctx, id); err != nil {
				errMu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("delete item %s: %w", id, err))
				errMu.Unlock()
				return nil
			}
			deleted[i] = true
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// ToggleItem checks or unchecks one item. Inactive or out-of-stock items stay unchecked.
func (s *Session) ToggleItem(id uuid.UUID, checked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	gi, ii, ok := s.locate(id)
	if !ok {
		return false
	}
	return s.selection.Toggle(s.groups[gi].Items[ii], checked)
}

// ToggleStore checks every selectable item of a store group, or unchecks them all.
func (s *Session) ToggleStore(storeID uuid.UUID, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.group(storeID)
	if !ok {
		return ErrStoreNotFound
	}
	s.selection.ToggleStore(group, checked)
	return nil
}

func (s *Session) StoreSelected(storeID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.group(storeID)
	return ok && s.selection.AllSelected(group)
}

func (s *Session) IsSelected(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Contains(id)
}

// Selected returns the checked items in the order they were checked.
func (s *Session) Selected() []cart.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Items()
}

func (s *Session) Summary() cart.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.Summarize(s.selection)
}

// StoreStats returns flash-sale statistics per store id.
func (s *Session) StoreStats() map[uuid.UUID]cart.StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.StatsByStore(s.groups)
}

// Partition splits the cart into active store groups and inactive items.
func (s *Session) Partition() ([]cart.StoreGroup, []cart.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.PartitionByActivity(s.groups)
}

// MarkInactive applies an external deactivation of the item's product.
func (s *Session) MarkInactive(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gi, ii, ok := s.locate(id)
	if !ok {
		return ErrItemNotFound
	}
	item := &s.groups[gi].Items[ii]
	item.IsActive = false
	s.selection.Update(*item)
	return nil
}

// mutableItem returns the item if quantity and addon controls are live for it.
// Caller holds s.mu.
func (s *Session) mutableItem(id uuid.UUID) (cart.Item, error) {
	gi, ii, ok := s.locate(id)
	if !ok {
		return cart.Item{}, ErrItemNotFound
	}
	item := s.groups[gi].Items[ii]
	if !item.Selectable() {
		return cart.Item{}, ErrItemUnavailable
	}
	if _, busy := s.inflight[id]; busy {
		return cart.Item{}, ErrItemBusy
	}
	return item, nil
}

// begin marks id in flight with its optimistic total. Caller holds s.mu.
func (s *Session) begin(id uuid.UUID, predicted decimal.Decimal) {
	s.inflight[id] = struct{}{}
	s.predicted[id] = predicted
}

// finish ends a single-item mutation. On success the server's item replaces
// the local one; on failure local state is left as it was.
func (s *Session) finish(ctx context.Context, id uuid.UUID, updated *cart.Item, err error, okMsg, failMsg string) error {
	s.mu.Lock()
	delete(s.inflight, id)
	delete(s.predicted, id)
	if err == nil && updated != nil {
		s.replaceItem(*updated)
	}
	s.mu.Unlock()

	if err != nil {
		s.notify.Error(ctx, failMsg, err)
		return err
	}
	s.notify.Success(ctx, okMsg)
	return nil
}

func (s *Session) replaceItem(updated cart.Item) {
	gi, ii, ok := s.locate(updated.ID)
	if !ok {
		return
	}
	s.groups[gi].Items[ii] = updated
	s.selection.Update(updated)
}

func (s *Session) removeItems(ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		s.selection.Remove(id)
	}
	for gi := range s.groups {
		kept := s.groups[gi].Items[:0]
		for _, item := range s.groups[gi].Items {
			if _, gone := drop[item.ID]; !gone {
				kept = append(kept, item)
			}
		}
		s.groups[gi].Items = kept
	}
	s.groups = cart.DropEmptyGroups(s.groups)
}

func (s *Session) locate(id uuid.UUID) (int, int, bool) {
	for gi, g := range s.groups {
		for ii, item := range g.Items {
			if item.ID == id {
				return gi, ii, true
			}
		}
	}
	return 0, 0, false
}

func (s *Session) group(storeID uuid.UUID) (cart.StoreGroup, bool) {
	for _, g := range s.groups {
		if g.Store.ID == storeID {
			return g, true
		}
	}
	return cart.StoreGroup{}, false
}
