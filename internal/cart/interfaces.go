package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemRepository defines the cart line persistence surface.
type ItemRepository interface {
	WithTx(tx *gorm.DB) ItemRepository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	FindByUserAndVariant(ctx context.Context, userID, variantID uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	UpdateVariant(ctx context.Context, id, variantID uuid.UUID) error
	ReplaceAddons(ctx context.Context, itemID uuid.UUID, addonIDs []uuid.UUID) error
	DeleteAddon(ctx context.Context, itemID, addonID uuid.UUID) (bool, error)
	Delete(ctx context.Context, ids ...uuid.UUID) (int64, error)
	UserIDsHoldingProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
}

// AddonRow is an addon joined with its group and owning product.
type AddonRow struct {
	ID          uuid.UUID       `gorm:"column:id"`
	ProductID   uuid.UUID       `gorm:"column:product_id"`
	Name        string          `gorm:"column:name"`
	GroupName   string          `gorm:"column:group_name"`
	PriceAdjust decimal.Decimal `gorm:"column:price_adjust"`
}

// CatalogReader loads the catalog data a cart view is assembled from.
type CatalogReader interface {
	VariantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProductVariant, error)
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	StoresByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Store, error)
	ActiveVariantsByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.ProductVariant, error)
	VariantAttributesByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]VariantAttribute, error)
	AddonsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]AddonRow, error)
	ActiveFlashSales(ctx context.Context, productIDs []uuid.UUID, now time.Time) (map[uuid.UUID]models.FlashSale, error)
	NextFlashSaleStart(ctx context.Context, productIDs []uuid.UUID, now time.Time) (time.Time, error)
}

// Locker grants short exclusive leases on a key.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
	LockKey(scope, id string) string
}

// ViewCache stores assembled cart views per user. A positive maxAge shortens the
// entry's lifetime below the cache's own TTL.
type ViewCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]StoreGroup, bool, error)
	Set(ctx context.Context, userID uuid.UUID, groups []StoreGroup, maxAge time.Duration) error
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
