package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoreStats summarises flash-sale savings of one store group's active items.
type StoreStats struct {
	FlashSaleCount  int             `json:"flash_sale_count"`
	TotalSavings    decimal.Decimal `json:"total_savings"`
	OriginalTotal   decimal.Decimal `json:"original_total"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
}

func ComputeStoreStats(group StoreGroup) StoreStats {
	stats := StoreStats{
		TotalSavings:    decimal.Zero,
		OriginalTotal:   decimal.Zero,
		DiscountedTotal: decimal.Zero,
	}
	for _, item := range group.Items {
		if !item.IsActive {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		stats.OriginalTotal = stats.OriginalTotal.Add(item.Price.Add(AddonsPerUnit(item.Addons)).Mul(qty))
		stats.DiscountedTotal = stats.DiscountedTotal.Add(item.TotalPrice)

		if item.FlashSale != nil {
			stats.FlashSaleCount++
			pct := decimal.NewFromInt(int64(ClampPercent(item.FlashSale.PercentageDiscount)))
			stats.TotalSavings = stats.TotalSavings.Add(item.Price.Mul(pct).Div(hundred).Mul(qty))
		}
	}
	return stats
}

// StatsByStore computes StoreStats for every group keyed by store id.
func StatsByStore(groups []StoreGroup) map[uuid.UUID]StoreStats {
	out := make(map[uuid.UUID]StoreStats, len(groups))
	for _, g := range groups {
		out[g.Store.ID] = ComputeStoreStats(g)
	}
	return out
}

// PartitionByActivity splits the cart into groups of active items and a flat
// list of inactive items, the way the cart page lists unavailable products apart.
func PartitionByActivity(groups []StoreGroup) ([]StoreGroup, []Item) {
	active := make([]StoreGroup, 0, len(groups))
	var inactive []Item
	for _, g := range groups {
		kept := make([]Item, 0, len(g.Items))
		for _, item := range g.Items {
			if item.IsActive {
				kept = append(kept, item)
				continue
			}
			inactive = append(inactive, item)
		}
		if len(kept) > 0 {
			active = append(active, StoreGroup{Store: g.Store, Items: kept})
		}
	}
	return active, inactive
}
