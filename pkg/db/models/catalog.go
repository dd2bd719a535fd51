package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is a seller storefront grouping products in the cart view.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Image     *string   `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error { assignID(&s.ID); return nil }

type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex:idx_products_slug"`
	Thumbnail *string   `gorm:"column:thumbnail"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error { assignID(&p.ID); return nil }

// ProductVariant is one purchasable combination of a product's attribute values.
type ProductVariant struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	SKU           string          `gorm:"column:sku;not null;uniqueIndex:idx_product_variants_sku"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(15,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL      *string         `gorm:"column:image_url"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error { assignID(&v.ID); return nil }

type Attribute struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex:idx_attributes_name"`
}

func (a *Attribute) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

type AttributeValue struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AttributeID uuid.UUID `gorm:"column:attribute_id;type:uuid;not null;uniqueIndex:idx_attribute_values_attribute_value"`
	Value       string    `gorm:"column:value;not null;uniqueIndex:idx_attribute_values_attribute_value"`
}

func (a *AttributeValue) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

// ProductDetail links a variant to one attribute value.
type ProductDetail struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID        uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_product_details_variant_value"`
	AttributeValueID uuid.UUID `gorm:"column:attribute_value_id;type:uuid;not null;uniqueIndex:idx_product_details_variant_value"`
}

func (d *ProductDetail) BeforeCreate(*gorm.DB) error { assignID(&d.ID); return nil }

type AddonGroup struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
}

func (g *AddonGroup) BeforeCreate(*gorm.DB) error { assignID(&g.ID); return nil }

type Addon struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	AddonGroupID uuid.UUID       `gorm:"column:addon_group_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	PriceAdjust  decimal.Decimal `gorm:"column:price_adjust;type:numeric(15,2);not null;default:0"`
}

func (a *Addon) BeforeCreate(*gorm.DB) error { assignID(&a.ID); return nil }

// FlashSale is a time-boxed percentage discount on a product.
type FlashSale struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID          uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	PercentageDiscount int       `gorm:"column:percentage_discount;not null"`
	Quantity           int       `gorm:"column:quantity;not null;default:0"`
	SoldCount          int       `gorm:"column:sold_count;not null;default:0"`
	StartTime          time.Time `gorm:"column:start_time;not null"`
	EndTime            time.Time `gorm:"column:end_time;not null"`
}

func (f *FlashSale) BeforeCreate(*gorm.DB) error { assignID(&f.ID); return nil }
