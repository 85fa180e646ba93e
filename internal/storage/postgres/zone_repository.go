package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saleor/saleor-sub058/internal/domain"
)

// ZoneRepository читает справочник зон доставки и реализует ZoneResolver.
// Сами зоны управляются извне; таблица shipping_zones — read model движка.
type ZoneRepository struct {
	db *sql.DB
}

// NewZoneRepository создаёт PostgreSQL-реализацию ZoneResolver.
func NewZoneRepository(store *Store) *ZoneRepository {
	return &ZoneRepository{db: store.DB()}
}

// ResolveZone возвращает зону, обслуживающую страну, или ErrZoneNotFound.
// При нескольких подходящих зонах выбор детерминирован по id.
func (r *ZoneRepository) ResolveZone(countryCode string) (domain.ShippingZone, error) {
	code := domain.NormalizeCountryCode(countryCode)
	if code == "" {
		return domain.ShippingZone{}, fmt.Errorf("%w: empty country code", domain.ErrZoneNotFound)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		zone      domain.ShippingZone
		countries string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, array_to_string(countries, ',')
		FROM shipping_zones
		WHERE $1 = ANY(countries)
		ORDER BY id ASC
		LIMIT 1
	`, code).Scan(&zone.ID, &zone.Name, &countries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ShippingZone{}, fmt.Errorf("%w: %s", domain.ErrZoneNotFound, code)
		}
		return domain.ShippingZone{}, fmt.Errorf("resolve shipping zone: %w", err)
	}

	if countries != "" {
		zone.Countries = strings.Split(countries, ",")
	}
	return zone, nil
}

// UpsertZone записывает зону в справочник (сидинг окружений и интеграционные тесты).
func (r *ZoneRepository) UpsertZone(zone domain.ShippingZone) error {
	if strings.TrimSpace(zone.ID) == "" {
		return fmt.Errorf("shipping zone id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	normalized := make([]string, 0, len(zone.Countries))
	for _, c := range zone.Countries {
		if code := domain.NormalizeCountryCode(c); code != "" {
			normalized = append(normalized, code)
		}
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO shipping_zones (id, name, countries)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    countries = EXCLUDED.countries
	`, zone.ID, zone.Name, normalized); err != nil {
		return fmt.Errorf("upsert shipping zone: %w", err)
	}

	return nil
}

var _ domain.ZoneResolver = (*ZoneRepository)(nil)
