package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/pkg/db/models"
	"gorm.io/gorm"
)

// CatalogRepository reads the catalog tables a cart view depends on.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) VariantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProductVariant, error) {
	out := make(map[uuid.UUID]models.ProductVariant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ProductVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *CatalogRepository) ProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *CatalogRepository) StoresByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Store, error) {
	out := make(map[uuid.UUID]models.Store, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Store
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ActiveVariantsByProducts groups each product's active variants in creation order.
func (r *CatalogRepository) ActiveVariantsByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]models.ProductVariant, error) {
	out := make(map[uuid.UUID][]models.ProductVariant, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []models.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id IN ? AND is_active = ?", productIDs, true).
		Order("created_at ASC").
		Order("sku ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], row)
	}
	return out, nil
}

type variantAttributeRow struct {
	ProductID      uuid.UUID `gorm:"column:product_id"`
	VariantID      uuid.UUID `gorm:"column:variant_id"`
	AttributeName  string    `gorm:"column:attribute_name"`
	AttributeValue string    `gorm:"column:attribute_value"`
}

// VariantAttributesByProducts flattens every variant's attribute values per product,
// inactive variants included.
func (r *CatalogRepository) VariantAttributesByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]VariantAttribute, error) {
	out := make(map[uuid.UUID][]VariantAttribute, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []variantAttributeRow
	if err := r.db.WithContext(ctx).
		Table("product_details AS pd").
		Select("pv.product_id, pd.variant_id, a.name AS attribute_name, av.value AS attribute_value").
		Joins("JOIN product_variants pv ON pv.id = pd.variant_id").
		Joins("JOIN attribute_values av ON av.id = pd.attribute_value_id").
		Joins("JOIN attributes a ON a.id = av.attribute_id").
		Where("pv.product_id IN ?", productIDs).
		Order("pv.created_at ASC").
		Order("pv.sku ASC").
		Order("a.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], VariantAttribute{
			VariantID:      row.VariantID,
			AttributeName:  row.AttributeName,
			AttributeValue: row.AttributeValue,
		})
	}
	return out, nil
}

func (r *CatalogRepository) AddonsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]AddonRow, error) {
	out := make(map[uuid.UUID]AddonRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []AddonRow
	if err := r.db.WithContext(ctx).
		Table("addons AS ad").
		Select("ad.id, ag.product_id, ad.name, ag.name AS group_name, ad.price_adjust").
		Joins("JOIN addon_groups ag ON ag.id = ad.addon_group_id").
		Where("ad.id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ActiveFlashSales returns, per product, the earliest-started sale whose window contains now.
func (r *CatalogRepository) ActiveFlashSales(ctx context.Context, productIDs []uuid.UUID, now time.Time) (map[uuid.UUID]models.FlashSale, error) {
	out := make(map[uuid.UUID]models.FlashSale, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []models.FlashSale
	if err := r.db.WithContext(ctx).
		Where("product_id IN ? AND start_time <= ? AND end_time >= ?", productIDs, now, now).
		Order("start_time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, ok := out[row.ProductID]; !ok {
			out[row.ProductID] = row
		}
	}
	return out, nil
}

// NextFlashSaleStart returns the earliest start after now of any sale on the products,
// or the zero time when none is scheduled.
func (r *CatalogRepository) NextFlashSaleStart(ctx context.Context, productIDs []uuid.UUID, now time.Time) (time.Time, error) {
	if len(productIDs) == 0 {
		return time.Time{}, nil
	}
	var rows []models.FlashSale
	if err := r.db.WithContext(ctx).
		Where("product_id IN ? AND start_time > ?", productIDs, now).
		Order("start_time ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return time.Time{}, err
	}
	if len(rows) == 0 {
		return time.Time{}, nil
	}
	return rows[0].StartTime, nil
}
