package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Selection is the set of cart items checked for checkout. It keeps a snapshot
// of each member so totals follow the latest server values after Reconcile.
// Items that are inactive or out of stock are never members.
//
// Selection is not safe for concurrent use; the owning session serializes access.
type Selection struct {
	order []uuid.UUID
	items map[uuid.UUID]Item
}

func NewSelection() *Selection {
	return &Selection{items: make(map[uuid.UUID]Item)}
}

// Toggle checks or unchecks one item and reports whether it is selected afterwards.
// Checking an unselectable item is ignored.
func (s *Selection) Toggle(item Item, checked bool) bool {
	if !checked {
		s.remove(item.ID)
		return false
	}
	if !item.Selectable() {
		s.remove(item.ID)
		return false
	}
	s.put(item)
	return true
}

// ToggleStore selects every selectable item of group, or deselects all of its items.
func (s *Selection) ToggleStore(group StoreGroup, checked bool) {
	for _, item := range group.Items {
		if checked {
			if item.Selectable() {
				s.put(item)
			}
			continue
		}
		s.remove(item.ID)
	}
}

// Reconcile refreshes member snapshots from groups and evicts members that
// disappeared or can no longer be selected.
func (s *Selection) Reconcile(groups []StoreGroup) {
	current := make(map[uuid.UUID]Item)
	for _, g := range groups {
		for _, item := range g.Items {
			current[item.ID] = item
		}
	}
	for _, id := range append([]uuid.UUID(nil), s.order...) {
		item, ok := current[id]
		if !ok || !item.Selectable() {
			s.remove(id)
			continue
		}
		s.items[id] = item
	}
}

// Update replaces a member's snapshot. Non-members are ignored; a member that
// became unselectable is evicted.
func (s *Selection) Update(item Item) {
	if _, ok := s.items[item.ID]; !ok {
		return
	}
	if !item.Selectable() {
		s.remove(item.ID)
		return
	}
	s.items[item.ID] = item
}

func (s *Selection) Remove(id uuid.UUID) {
	s.remove(id)
}

func (s *Selection) Contains(id uuid.UUID) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Selection) Count() int {
	return len(s.order)
}

// Items returns members in selection order.
func (s *Selection) Items() []Item {
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Total is the sum of member totalPrice values, the amount handed to checkout.
func (s *Selection) Total() decimal.Decimal {
	total := decimal.Zero
	for _, id := range s.order {
		total = total.Add(s.items[id].TotalPrice)
	}
	return total
}

// AllSelected reports whether every selectable item of group is a member.
func (s *Selection) AllSelected(group StoreGroup) bool {
	found := false
	for _, item := range group.Items {
		if !item.Selectable() {
			continue
		}
		found = true
		if !s.Contains(item.ID) {
			return false
		}
	}
	return found
}

func (s *Selection) put(item Item) {
	if _, ok := s.items[item.ID]; !ok {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = item
}

func (s *Selection) remove(id uuid.UUID) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for idx, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:idx], s.order[idx+1:]...)
			break
		}
	}
}
