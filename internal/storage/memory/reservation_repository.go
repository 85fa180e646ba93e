package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saleor/saleor-sub058/internal/domain"
)

// reservationRepositoryInMemory — in-memory реализация ReservationRepository
// для локальной разработки и тестов. Один mutex на всю таблицу даёт те же
// наблюдаемые гарантии, что и строчная блокировка в PostgreSQL.
type reservationRepositoryInMemory struct {
	mu    sync.Mutex
	items map[string]domain.Reservation
	zones map[string]domain.ShippingZone
}

// NewReservationRepository возвращает in-memory репозиторий. Зоны передаются
// при создании: фильтрация по стране требует знать набор стран каждой зоны.
func NewReservationRepository(zones ...domain.ShippingZone) domain.ReservationRepository {
	zoneMap := make(map[string]domain.ShippingZone, len(zones))
	for _, zone := range zones {
		zoneMap[zone.ID] = zone
	}
	return &reservationRepositoryInMemory{
		items: make(map[string]domain.Reservation),
		zones: zoneMap,
	}
}

// AggregateByVariant группирует подходящие строки по варианту, суммируя количество.
func (r *reservationRepositoryInMemory) AggregateByVariant(f domain.ReservationFilter) (map[string]int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := make(map[string]int32)
	for _, res := range r.items {
		if !r.matches(res, f) {
			continue
		}
		totals[res.VariantID] += res.Quantity
	}
	return totals, nil
}

// Upsert обновляет существующую строку (user, variant) на месте либо создаёт новую.
func (r *reservationRepositoryInMemory) Upsert(res domain.Reservation) (domain.Reservation, error) {
	if errs := res.Validate(); len(errs) > 0 {
		return domain.Reservation{}, errs[0]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.findByUserVariant(res.UserID, res.VariantID); ok {
		// Количество и срок действия заменяются, не накапливаются.
		current.ShippingZoneID = res.ShippingZoneID
		current.Quantity = res.Quantity
		current.Expires = res.Expires
		current.UpdatedAt = res.UpdatedAt
		r.items[current.ID] = current
		return current, nil
	}

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	r.items[res.ID] = res
	return res, nil
}

// Delete удаляет подходящие строки и возвращает их количество.
func (r *reservationRepositoryInMemory) Delete(f domain.ReservationFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, res := range r.items {
		if !r.matches(res, f) {
			continue
		}
		delete(r.items, id)
		deleted++
	}
	return deleted, nil
}

// DeleteExpired удаляет строки с expires <= before, самые старые первыми.
func (r *reservationRepositoryInMemory) DeleteExpired(before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := make([]domain.Reservation, 0)
	for _, res := range r.items {
		if !res.Expires.After(before) {
			expired = append(expired, res)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		if !expired[i].Expires.Equal(expired[j].Expires) {
			return expired[i].Expires.Before(expired[j].Expires)
		}
		return expired[i].ID < expired[j].ID
	})

	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	for _, res := range expired {
		delete(r.items, res.ID)
	}
	return len(expired), nil
}

func (r *reservationRepositoryInMemory) findByUserVariant(userID, variantID string) (domain.Reservation, bool) {
	var (
		found  domain.Reservation
		exists bool
	)
	for _, res := range r.items {
		if res.UserID != userID || res.VariantID != variantID {
			continue
		}
		// Детерминированный выбор выжившей строки: самая ранняя по created_at, id.
		if !exists || res.CreatedAt.Before(found.CreatedAt) ||
			(res.CreatedAt.Equal(found.CreatedAt) && res.ID < found.ID) {
			found = res
			exists = true
		}
	}
	return found, exists
}

func (r *reservationRepositoryInMemory) matches(res domain.Reservation, f domain.ReservationFilter) bool {
	if f.CountryCode != "" {
		zone, ok := r.zones[res.ShippingZoneID]
		if !ok || !zone.ServesCountry(f.CountryCode) {
			return false
		}
	}
	if f.UserID != "" && res.UserID != f.UserID {
		return false
	}
	if f.ExcludeUserID != "" && res.UserID == f.ExcludeUserID {
		return false
	}
	if f.VariantIDs != nil && !containsString(f.VariantIDs, res.VariantID) {
		return false
	}
	if !f.ActiveAt.IsZero() && !res.Expires.After(f.ActiveAt) {
		return false
	}
	if !f.ExpiredAt.IsZero() && res.Expires.After(f.ExpiredAt) {
		return false
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

var _ domain.ReservationRepository = (*reservationRepositoryInMemory)(nil)
