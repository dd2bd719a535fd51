package storefront

import (
	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/internal/cart"
)

// VariantEditor holds the in-progress attribute selection of a variant-change
// dialog. It is discarded when the dialog closes.
type VariantEditor struct {
	item     cart.Item
	selected map[string]string
	// existing holds the variant ids of the item's product already in the cart.
	existing []uuid.UUID
}

func newVariantEditor(item cart.Item, existing []uuid.UUID) *VariantEditor {
	return &VariantEditor{
		item:     item.Clone(),
		selected: item.SelectedAttributes(),
		existing: append([]uuid.UUID(nil), existing...),
	}
}

func (e *VariantEditor) ItemID() uuid.UUID {
	return e.item.ID
}

// Options lists the attributes the shopper chooses from.
func (e *VariantEditor) Options() []cart.AttributeOption {
	return e.item.AvailableAttributes
}

// Choose records value for attribute name. Both must be offered by the product.
func (e *VariantEditor) Choose(name, value string) error {
	for _, opt := range e.item.AvailableAttributes {
		if opt.Name != name {
			continue
		}
		for _, v := range opt.Values {
			if v == value {
				e.selected[name] = value
				return nil
			}
		}
		return ErrUnknownAttribute
	}
	return ErrUnknownAttribute
}

// Clear removes the choice for attribute name.
func (e *VariantEditor) Clear(name string) {
	delete(e.selected, name)
}

func (e *VariantEditor) Selection() map[string]string {
	out := make(map[string]string, len(e.selected))
	for k, v := range e.selected {
		out[k] = v
	}
	return out
}

// Resolve maps the current selection to a variant of the product.
func (e *VariantEditor) Resolve() (uuid.UUID, bool) {
	return cart.MatchVariant(e.item.AvailableAttributes, e.selected, e.item.AllVariantAttributes, e.item.VariantIDs())
}

// IsDuplicate reports whether the resolved variant already has its own cart line.
func (e *VariantEditor) IsDuplicate() bool {
	id, ok := e.Resolve()
	if !ok {
		return false
	}
	return cart.IsDuplicateVariant(id, e.existing, e.item.VariantID)
}

// CanSubmit drives the enabled state of the update action.
func (e *VariantEditor) CanSubmit() bool {
	_, err := e.Validate()
	return err == nil
}

// Validate returns the variant to switch to, or why the change must not be sent.
func (e *VariantEditor) Validate() (uuid.UUID, error) {
	id, ok := e.Resolve()
	if !ok {
		return uuid.Nil, ErrIncompleteSelection
	}
	if id == e.item.VariantID {
		return uuid.Nil, ErrVariantUnchanged
	}
	if cart.IsDuplicateVariant(id, e.existing, e.item.VariantID) {
		return uuid.Nil, ErrDuplicateVariant
	}
	return id, nil
}
