package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlashSale is the active flash-sale campaign of an item's product.
type FlashSale struct {
	ID                 uuid.UUID `json:"id"`
	PercentageDiscount int       `json:"percentage_discount"`
	SoldCount          int       `json:"sold_count"`
	Quantity           int       `json:"quantity"`
	EndTime            time.Time `json:"end_time"`
}

// Addon is an add-on selected for a cart item. PriceAdjust is a signed per-unit delta.
type Addon struct {
	AddonID        uuid.UUID       `json:"addon_id"`
	AddonName      string          `json:"addon_name"`
	AddonGroupName string          `json:"addon_group_name"`
	PriceAdjust    decimal.Decimal `json:"price_adjust"`
}

// AttributeValue is one name/value pair of the item's current variant.
type AttributeValue struct {
	AttributeName  string `json:"attribute_name"`
	AttributeValue string `json:"attribute_value"`
}

// AttributeOption declares an attribute of the product and every value its variants use.
type AttributeOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// VariantAttribute is one row of the flattened variant -> attribute mapping.
type VariantAttribute struct {
	VariantID      uuid.UUID `json:"variant_id"`
	AttributeName  string    `json:"attribute_name"`
	AttributeValue string    `json:"attribute_value"`
}

type VariantRef struct {
	ID  uuid.UUID `json:"id"`
	SKU string    `json:"sku"`
}

// Item is the cart line as shown to the shopper. TotalPrice is server computed and
// already includes the flash-sale discount and addon adjustments, scaled by quantity.
type Item struct {
	ID                    uuid.UUID          `json:"id"`
	ProductID             uuid.UUID          `json:"product_id"`
	VariantID             uuid.UUID          `json:"variant_id"`
	ProductName           string             `json:"product_name"`
	Slug                  string             `json:"slug"`
	Image                 string             `json:"image,omitempty"`
	Quantity              int                `json:"quantity"`
	Price                 decimal.Decimal    `json:"price"`
	TotalPrice            decimal.Decimal    `json:"total_price"`
	Addons                []Addon            `json:"addons"`
	VariantAttributes     []AttributeValue   `json:"variant_attributes"`
	AvailableAttributes   []AttributeOption  `json:"available_attributes"`
	AllVariantAttributes  []VariantAttribute `json:"all_variant_attributes"`
	Variants              []VariantRef       `json:"variants"`
	VariantAttributeNames string             `json:"variant_attribute_names"`
	InStock               bool               `json:"in_stock"`
	IsActive              bool               `json:"is_active"`
	FlashSale             *FlashSale         `json:"flash_sale,omitempty"`
}

// Selectable reports whether the item may be checked out or mutated.
func (i Item) Selectable() bool {
	return i.IsActive && i.InStock
}

// FindAddon returns the addon with the given id.
func (i Item) FindAddon(addonID uuid.UUID) (Addon, bool) {
	for _, a := range i.Addons {
		if a.AddonID == addonID {
			return a, true
		}
	}
	return Addon{}, false
}

// SelectedAttributes returns the current variant's attributes as a name -> value map.
func (i Item) SelectedAttributes() map[string]string {
	out := make(map[string]string, len(i.VariantAttributes))
	for _, attr := range i.VariantAttributes {
		out[attr.AttributeName] = attr.AttributeValue
	}
	return out
}

// VariantIDs lists the product's active variant ids in declared order.
func (i Item) VariantIDs() []uuid.UUID {
	if len(i.Variants) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(i.Variants))
	for _, v := range i.Variants {
		ids = append(ids, v.ID)
	}
	return ids
}

// Clone returns a deep copy so callers can mutate slices without aliasing.
func (i Item) Clone() Item {
	out := i
	out.Addons = append([]Addon(nil), i.Addons...)
	out.VariantAttributes = append([]AttributeValue(nil), i.VariantAttributes...)
	out.AllVariantAttributes = append([]VariantAttribute(nil), i.AllVariantAttributes...)
	out.Variants = append([]VariantRef(nil), i.Variants...)
	if i.AvailableAttributes != nil {
		out.AvailableAttributes = make([]AttributeOption, len(i.AvailableAttributes))
		for idx, opt := range i.AvailableAttributes {
			out.AvailableAttributes[idx] = AttributeOption{Name: opt.Name, Values: append([]string(nil), opt.Values...)}
		}
	}
	if i.FlashSale != nil {
		fs := *i.FlashSale
		out.FlashSale = &fs
	}
	return out
}

type Store struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image,omitempty"`
}

// StoreGroup holds the cart items sold by one store.
type StoreGroup struct {
	Store Store  `json:"store"`
	Items []Item `json:"items"`
}

// DropEmptyGroups removes groups without items, keeping order.
func DropEmptyGroups(groups []StoreGroup) []StoreGroup {
	out := groups[:0:0]
	for _, g := range groups {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	return out
}
