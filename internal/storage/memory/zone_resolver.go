package memory

import (
	"fmt"

	"github.com/saleor/saleor-sub058/internal/domain"
)

// zoneResolverInMemory — статический справочник зон доставки.
type zoneResolverInMemory struct {
	zones []domain.ShippingZone
}

// NewZoneResolver возвращает резолвер зон по фиксированному набору.
// Порядок зон определяет приоритет, если страну обслуживают несколько.
func NewZoneResolver(zones ...domain.ShippingZone) domain.ZoneResolver {
	copied := make([]domain.ShippingZone, len(zones))
	copy(copied, zones)
	return &zoneResolverInMemory{zones: copied}
}

// ResolveZone возвращает первую зону, обслуживающую страну, или ErrZoneNotFound.
func (r *zoneResolverInMemory) ResolveZone(countryCode string) (domain.ShippingZone, error) {
	for _, zone := range r.zones {
		if zone.ServesCountry(countryCode) {
			return zone, nil
		}
	}
	return domain.ShippingZone{}, fmt.Errorf("%w: %s", domain.ErrZoneNotFound, domain.NormalizeCountryCode(countryCode))
}

var _ domain.ZoneResolver = (*zoneResolverInMemory)(nil)
