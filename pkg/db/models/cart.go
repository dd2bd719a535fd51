package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one line of a shopper's cart: a variant, a quantity and its addons.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_cart_items_user_variant"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:ux_cart_items_user_variant"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Addons    []CartItemAddon `gorm:"foreignKey:CartItemID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error { assignID(&c.ID); return nil }

type CartItemAddon struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartItemID uuid.UUID `gorm:"column:cart_item_id;type:uuid;not null;uniqueIndex:ux_cart_item_addons_item_addon"`
	AddonID    uuid.UUID `gorm:"column:addon_id;type:uuid;not null;uniqueIndex:ux_cart_item_addons_item_addon"`
}

func (a *CartItemAddon) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

// All lists every persisted model, in dependency order. Used by sqlite-backed tests.
func All() []any {
	return []any{
		&Store{}, &Product{}, &ProductVariant{}, &Attribute{}, &AttributeValue{},
		&ProductDetail{}, &AddonGroup{}, &Addon{}, &FlashSale{}, &CartItem{}, &CartItemAddon{},
	}
}
