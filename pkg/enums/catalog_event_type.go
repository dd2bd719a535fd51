package enums

import "fmt"

// CatalogEventType names catalog changes that affect cart item availability.
type CatalogEventType string

const (
	CatalogEventProductDeactivated  CatalogEventType = "product.deactivated"
	CatalogEventProductActivated    CatalogEventType = "product.activated"
	CatalogEventVariantStockChanged CatalogEventType = "variant.stock_changed"
)

var validCatalogEventTypes = []CatalogEventType{
	CatalogEventProductDeactivated,
	CatalogEventProductActivated,
	CatalogEventVariantStockChanged,
}

func (t CatalogEventType) String() string {
	return string(t)
}

func (t CatalogEventType) IsValid() bool {
	for _, candidate := range validCatalogEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseCatalogEventType(value string) (CatalogEventType, error) {
	for _, candidate := range validCatalogEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid catalog event type %q", value)
}
