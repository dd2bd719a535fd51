package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists cart lines and their addon selections.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) ItemRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListByUser returns the user's cart lines, oldest first, with addons preloaded.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Addons").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Addons").
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindByUserAndVariant(ctx context.Context, userID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Addons").
		Where("user_id = ? AND variant_id = ?", userID, variantID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts the cart line. Addons are written separately through ReplaceAddons.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Omit("Addons").Create(item).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *Repository) UpdateVariant(ctx context.Context, id, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("variant_id", variantID).Error
}

// ReplaceAddons swaps the line's addon set for addonIDs.
func (r *Repository) ReplaceAddons(ctx context.Context, itemID uuid.UUID, addonIDs []uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_item_id = ?", itemID).Delete(&models.CartItemAddon{}).Error; err != nil {
		return err
	}
	if len(addonIDs) == 0 {
		return nil
	}
	rows := make([]models.CartItemAddon, 0, len(addonIDs))
	for _, id := range addonIDs {
		rows = append(rows, models.CartItemAddon{CartItemID: itemID, AddonID: id})
	}
	return tx.Create(&rows).Error
}

// DeleteAddon removes one addon from the line and reports whether it was present.
func (r *Repository) DeleteAddon(ctx context.Context, itemID, addonID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_item_id = ? AND addon_id = ?", itemID, addonID).
		Delete(&models.CartItemAddon{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the given lines together with their addons.
func (r *Repository) Delete(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_item_id IN ?", ids).Delete(&models.CartItemAddon{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// UserIDsHoldingProduct lists users with at least one line for a variant of productID.
func (r *Repository) UserIDsHoldingProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Distinct("cart_items.user_id").
		Joins("JOIN product_variants pv ON pv.id = cart_items.variant_id").
		Where("pv.product_id = ?", productID).
		Pluck("cart_items.user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
