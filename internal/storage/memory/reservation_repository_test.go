package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saleor/saleor-sub058/internal/domain"
	"github.com/saleor/saleor-sub058/internal/storage/memory"
)

var testZones = []domain.ShippingZone{
	{ID: "zone-us", Name: "Americas", Countries: []string{"US", "CA"}},
	{ID: "zone-eu", Name: "Europe", Countries: []string{"DE", "FR"}},
}

func newRepo() domain.ReservationRepository {
	return memory.NewReservationRepository(testZones...)
}

func mustUpsert(t *testing.T, repo domain.ReservationRepository, userID, zoneID, variantID string, qty int32, expires time.Time) domain.Reservation {
	t.Helper()

	res, err := repo.Upsert(domain.Reservation{
		UserID:         userID,
		ShippingZoneID: zoneID,
		VariantID:      variantID,
		Quantity:       qty,
		Expires:        expires,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	return res
}

func TestReservationRepository_AggregateByVariant_Empty(t *testing.T) {
	repo := newRepo()

	totals, err := repo.AggregateByVariant(domain.ReservationFilter{CountryCode: "US", ActiveAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected empty totals, got %v", totals)
	}
	if totals["variant-1"] != 0 {
		t.Fatal("absent variant must read as zero")
	}
}

func TestReservationRepository_AggregateByVariant_Filters(t *testing.T) {
	repo := newRepo()
	now := time.Now().UTC()
	future := now.Add(10 * time.Minute)

	mustUpsert(t, repo, "user-1", "zone-us", "variant-1", 4, future)
	mustUpsert(t, repo, "user-2", "zone-us", "variant-1", 3, future)
	mustUpsert(t, repo, "user-3", "zone-eu", "variant-1", 7, future)
	mustUpsert(t, repo, "user-2", "zone-us", "variant-2", 2, future)

	totals, err := repo.AggregateByVariant(domain.ReservationFilter{CountryCode: "US", ActiveAt: now})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if totals["variant-1"] != 7 {
		t.Fatalf("expected 7 for variant-1 in US, got %d", totals["variant-1"])
	}
	if totals["variant-2"] != 2 {
		t.Fatalf("expected 2 for variant-2 in US, got %d", totals["variant-2"])
	}

	// Конкуренция со стороны других покупателей: исключаем собственные строки.
	totals, err = repo.AggregateByVariant(domain.ReservationFilter{
		CountryCode:   "US",
		ActiveAt:      now,
		ExcludeUserID: "user-1",
	})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if totals["variant-1"] != 3 {
		t.Fatalf("expected 3 for variant-1 excluding user-1, got %d", totals["variant-1"])
	}

	totals, err = repo.AggregateByVariant(domain.ReservationFilter{
		CountryCode: "US",
		ActiveAt:    now,
		UserID:      "user-2",
		VariantIDs:  []string{"variant-1"},
	})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if len(totals) != 1 || totals["variant-1"] != 3 {
		t.Fatalf("expected only user-2 variant-1 rows, got %v", totals)
	}
}

func TestReservationRepository_AggregateByVariant_ExpiredExcluded(t *testing.T) {
	repo := newRepo()
	now := time.Now().UTC()

	mustUpsert(t, repo, "user-1", "zone-us", "variant-1", 4, now.Add(-time.Minute))
	mustUpsert(t, repo, "user-2", "zone-us", "variant-1", 3, now.Add(time.Minute))

	totals, err := repo.AggregateByVariant(domain.ReservationFilter{CountryCode: "US", ActiveAt: now})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if totals["variant-1"] != 3 {
		t.Fatalf("expired row must be invisible to reads, got %d", totals["variant-1"])
	}

	expired, err := repo.AggregateByVariant(domain.ReservationFilter{CountryCode: "US", ExpiredAt: now})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if expired["variant-1"] != 4 {
		t.Fatalf("expected expired partition to hold 4, got %d", expired["variant-1"])
	}
}

func TestReservationRepository_Upsert_ReplacesInPlace(t *testing.T) {
	repo := newRepo()
	now := time.Now().UTC()

	first := mustUpsert(t, repo, "user-1", "zone-us", "variant-1", 4, now.Add(10*time.Minute))
	second := mustUpsert(t, repo, "user-1", "zone-eu", "variant-1", 2, now.Add(20*time.Minute))

	if first.ID != second.ID {
		t.Fatalf("expected the same surviving row, got %s and %s", first.ID, second.ID)
	}
	if second.Quantity != 2 {
		t.Fatalf("quantity must be replaced, got %d", second.Quantity)
	}
	if second.ShippingZoneID != "zone-eu" {
		t.Fatalf("zone must be overwritten, got %s", second.ShippingZoneID)
	}
	if !second.Expires.Equal(now.Add(20 * time.Minute)) {
		t.Fatalf("expires must be refreshed, got %s", second.Expires)
	}

	totals, err := repo.AggregateByVariant(domain.ReservationFilter{CountryCode: "DE", ActiveAt: now})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if totals["variant-1"] != 2 {
		t.Fatalf("expected single row with quantity 2, got %v", totals)
	}
}

func TestReservationRepository_Upsert_Invalid(t *testing.T) {
	repo := newRepo()

	_, err := repo.Upsert(domain.Reservation{
		UserID:         "user-1",
		ShippingZoneID: "zone-us",
		VariantID:      "variant-1",
		Quantity:       0,
		Expires:        time.Now().UTC().Add(time.Minute),
	})
	if err == nil {
		t.Fatal("expected zero-quantity upsert to fail")
	}
}

func TestReservationRepository_Delete_Scoped(t *testing.T) {
	repo := newRepo()
	now := time.Now().UTC()
	future := now.Add(10 * time.Minute)

	mustUpsert(t, repo, "user-1", "zone-us", "variant-1", 4, future)
	mustUpsert(t, repo, "user-1", "zone-us", "variant-2", 2, future)
	mustUpsert(t, repo, "user-2", "zone-us", "variant-1", 3, future)
	mustUpsert(t, repo, "user-1", "zone-eu", "variant-3", 5, future)

	deleted, err := repo.Delete(domain.ReservationFilter{
		UserID:      "user-1",
		CountryCode: "US",
		VariantIDs:  []string{"variant-1", "variant-2"},
	})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted rows, got %d", deleted)
	}

	// Чужие строки, другие варианты и зоны вне страны остаются нетронутыми.
	totals, err := repo.AggregateByVariant(domain.ReservationFilter{ActiveAt: now})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if totals["variant-1"] != 3 {
		t.Fatalf("other user's rows must survive, got %v", totals)
	}
	if totals["variant-3"] != 5 {
		t.Fatalf("rows outside the country must survive, got %v", totals)
	}
}

func TestReservationRepository_DeleteExpired(t *testing.T) {
	repo := newRepo()
	now := time.Now().UTC()

	mustUpsert(t, repo, "user-1", "zone-us", "variant-1", 4, now.Add(-2*time.Minute))
	mustUpsert(t, repo, "user-2", "zone-us", "variant-2", 2, now.Add(-time.Minute))
	mustUpsert(t, repo, "user-3", "zone-us", "variant-3", 1, now.Add(time.Minute))

	deleted, err := repo.DeleteExpired(now, 1)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected batch of 1, got %d", deleted)
	}

	deleted, err = repo.DeleteExpired(now, 0)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected remaining expired row, got %d", deleted)
	}

	// Повторный запуск без просроченных строк ничего не меняет.
	deleted, err = repo.DeleteExpired(now, 0)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected idempotent sweep, got %d", deleted)
	}

	totals, err := repo.AggregateByVariant(domain.ReservationFilter{ActiveAt: now})
	if err != nil {
		t.Fatalf("AggregateByVariant failed: %v", err)
	}
	if totals["variant-3"] != 1 {
		t.Fatalf("active row must survive the sweep, got %v", totals)
	}
}

func TestZoneResolver_ResolveZone(t *testing.T) {
	resolver := memory.NewZoneResolver(testZones...)

	zone, err := resolver.ResolveZone("de")
	if err != nil {
		t.Fatalf("ResolveZone failed: %v", err)
	}
	if zone.ID != "zone-eu" {
		t.Fatalf("expected zone-eu, got %s", zone.ID)
	}

	if _, err := resolver.ResolveZone("JP"); !errors.Is(err, domain.ErrZoneNotFound) {
		t.Fatalf("expected ErrZoneNotFound for unserved country, got %v", err)
	}
}
