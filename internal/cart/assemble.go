package cart

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/pkg/db/models"
)

// catalogSnapshot holds every catalog row needed to render a set of cart lines.
type catalogSnapshot struct {
	variants       map[uuid.UUID]models.ProductVariant
	products       map[uuid.UUID]models.Product
	stores         map[uuid.UUID]models.Store
	activeVariants map[uuid.UUID][]models.ProductVariant
	attributes     map[uuid.UUID][]VariantAttribute
	addons         map[uuid.UUID]AddonRow
	flashSales     map[uuid.UUID]models.FlashSale
}

func loadSnapshot(ctx context.Context, catalog CatalogReader, rows []models.CartItem, now time.Time) (*catalogSnapshot, error) {
	variantIDs := make([]uuid.UUID, 0, len(rows))
	var addonIDs []uuid.UUID
	for _, row := range rows {
		variantIDs = append(variantIDs, row.VariantID)
		for _, a := range row.Addons {
			addonIDs = append(addonIDs, a.AddonID)
		}
	}

	snap := &catalogSnapshot{}
	var err error
	if snap.variants, err = catalog.VariantsByIDs(ctx, uniqueIDs(variantIDs)); err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(snap.variants))
	for _, v := range snap.variants {
		productIDs = append(productIDs, v.ProductID)
	}
	productIDs = uniqueIDs(productIDs)
	if snap.products, err = catalog.ProductsByIDs(ctx, productIDs); err != nil {
		return nil, err
	}

	storeIDs := make([]uuid.UUID, 0, len(snap.products))
	for _, p := range snap.products {
		storeIDs = append(storeIDs, p.StoreID)
	}
	if snap.stores, err = catalog.StoresByIDs(ctx, uniqueIDs(storeIDs)); err != nil {
		return nil, err
	}
	if snap.activeVariants, err = catalog.ActiveVariantsByProducts(ctx, productIDs); err != nil {
		return nil, err
	}
	if snap.attributes, err = catalog.VariantAttributesByProducts(ctx, productIDs); err != nil {
		return nil, err
	}
	if snap.addons, err = catalog.AddonsByIDs(ctx, uniqueIDs(addonIDs)); err != nil {
		return nil, err
	}
	if snap.flashSales, err = catalog.ActiveFlashSales(ctx, productIDs, now); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *catalogSnapshot) productIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	return ids
}

// saleBoundary is the earliest end among the active sales, or zero.
func (s *catalogSnapshot) saleBoundary() time.Time {
	var earliest time.Time
	for _, sale := range s.flashSales {
		if earliest.IsZero() || sale.EndTime.Before(earliest) {
			earliest = sale.EndTime
		}
	}
	return earliest
}

// outOfRangeSales lists active sales whose discount falls outside [0,100].
func (s *catalogSnapshot) outOfRangeSales() []models.FlashSale {
	var out []models.FlashSale
	for _, sale := range s.flashSales {
		if ClampPercent(sale.PercentageDiscount) != sale.PercentageDiscount {
			out = append(out, sale)
		}
	}
	return out
}

// buildItem renders one cart line. ok is false when the variant or product row is gone.
func (s *catalogSnapshot) buildItem(row models.CartItem) (Item, uuid.UUID, bool) {
	variant, ok := s.variants[row.VariantID]
	if !ok {
		return Item{}, uuid.Nil, false
	}
	product, ok := s.products[variant.ProductID]
	if !ok {
		return Item{}, uuid.Nil, false
	}

	item := Item{
		ID:          row.ID,
		ProductID:   product.ID,
		VariantID:   variant.ID,
		ProductName: product.Name,
		Slug:        product.Slug,
		Quantity:    row.Quantity,
		Price:       variant.Price,
		InStock:     variant.IsActive && variant.StockQuantity > 0,
		IsActive:    product.IsActive,
	}
	if product.Thumbnail != nil {
		item.Image = *product.Thumbnail
	}

	if sale, ok := s.flashSales[product.ID]; ok {
		item.FlashSale = &FlashSale{
			ID:                 sale.ID,
			PercentageDiscount: sale.PercentageDiscount,
			SoldCount:          sale.SoldCount,
			Quantity:           sale.Quantity,
			EndTime:            sale.EndTime,
		}
	}

	item.Addons = make([]Addon, 0, len(row.Addons))
	for _, selected := range row.Addons {
		addon, ok := s.addons[selected.AddonID]
		if !ok {
			continue
		}
		item.Addons = append(item.Addons, Addon{
			AddonID:        addon.ID,
			AddonName:      addon.Name,
			AddonGroupName: addon.GroupName,
			PriceAdjust:    addon.PriceAdjust,
		})
	}

	all := s.attributes[product.ID]
	item.AllVariantAttributes = append([]VariantAttribute{}, all...)
	item.AvailableAttributes = availableAttributes(all)
	item.VariantAttributes = []AttributeValue{}
	var names []string
	for _, attr := range all {
		if attr.VariantID != variant.ID {
			continue
		}
		item.VariantAttributes = append(item.VariantAttributes, AttributeValue{
			AttributeName:  attr.AttributeName,
			AttributeValue: attr.AttributeValue,
		})
		names = append(names, attr.AttributeValue)
	}
	item.VariantAttributeNames = strings.Join(names, ", ")
	if item.VariantAttributeNames == "" {
		item.VariantAttributeNames = variant.SKU
	}

	item.Variants = make([]VariantRef, 0, len(s.activeVariants[product.ID]))
	for _, v := range s.activeVariants[product.ID] {
		item.Variants = append(item.Variants, VariantRef{ID: v.ID, SKU: v.SKU})
	}

	item.TotalPrice = LineTotal(item.Price, item.FlashSale, item.Addons, item.Quantity)
	return item, product.StoreID, true
}

// groupByStore renders rows grouped by store, in first-appearance order.
func (s *catalogSnapshot) groupByStore(rows []models.CartItem) []StoreGroup {
	groups := []StoreGroup{}
	index := map[uuid.UUID]int{}
	for _, row := range rows {
		item, storeID, ok := s.buildItem(row)
		if !ok {
			continue
		}
		pos, seen := index[storeID]
		if !seen {
			store := Store{ID: storeID}
			if st, ok := s.stores[storeID]; ok {
				store.Name = st.Name
				if st.Image != nil {
					store.Image = *st.Image
				}
			}
			groups = append(groups, StoreGroup{Store: store})
			pos = len(groups) - 1
			index[storeID] = pos
		}
		groups[pos].Items = append(groups[pos].Items, item)
	}
	return groups
}

// availableAttributes declares each attribute with its distinct values in first-seen order.
func availableAttributes(all []VariantAttribute) []AttributeOption {
	out := []AttributeOption{}
	pos := map[string]int{}
	seen := map[string]map[string]struct{}{}
	for _, attr := range all {
		idx, ok := pos[attr.AttributeName]
		if !ok {
			out = append(out, AttributeOption{Name: attr.AttributeName, Values: []string{}})
			idx = len(out) - 1
			pos[attr.AttributeName] = idx
			seen[attr.AttributeName] = map[string]struct{}{}
		}
		if _, dup := seen[attr.AttributeName][attr.AttributeValue]; dup {
			continue
		}
		seen[attr.AttributeName][attr.AttributeValue] = struct{}{}
		out[idx].Values = append(out[idx].Values, attr.AttributeValue)
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
