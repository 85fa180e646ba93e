package reservation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saleor/saleor-sub058/internal/domain"
	"github.com/saleor/saleor-sub058/internal/service/reservation"
	"github.com/saleor/saleor-sub058/internal/storage/memory"
)

const ttl = 10 * time.Minute

var serviceTestZones = []domain.ShippingZone{
	{ID: "zone-us", Name: "Americas", Countries: []string{"US", "CA"}},
	{ID: "zone-eu", Name: "Europe", Countries: []string{"DE", "FR"}},
}

func newService() *reservation.Service {
	repo := memory.NewReservationRepository(serviceTestZones...)
	return reservation.NewServiceWithoutMetrics(repo, nil)
}

func TestService_GetReservedQuantity_EmptyStore(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	qty, err := svc.GetReservedQuantity("variant-1", "US", "", now)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 0 {
		t.Fatalf("expected 0 for empty store, got %d", qty)
	}
}

func TestService_Upsert_ReplacesQuantityAndExpiry(t *testing.T) {
	svc := newService()
	now1 := time.Now().UTC()
	now2 := now1.Add(3 * time.Minute)

	first, err := svc.Upsert("user-1", "zone-us", "variant-1", 4, ttl, now1)
	if err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	qty, err := svc.GetReservedQuantity("variant-1", "US", "", now1)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 4 {
		t.Fatalf("expected 4 after first upsert, got %d", qty)
	}

	second, err := svc.Upsert("user-1", "zone-us", "variant-1", 2, ttl, now2)
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected single surviving row, got ids %s and %s", first.ID, second.ID)
	}
	if second.Quantity != 2 {
		t.Fatalf("quantity must equal the second call's argument, got %d", second.Quantity)
	}
	if !second.Expires.Equal(now2.Add(ttl)) {
		t.Fatalf("expires must be now2+ttl, got %s", second.Expires)
	}

	qty, err = svc.GetReservedQuantity("variant-1", "US", "", now2)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 2 {
		t.Fatalf("expected replaced quantity 2, got %d", qty)
	}
}

func TestService_Upsert_Validation(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	if _, err := svc.Upsert("user-1", "zone-us", "variant-1", 0, ttl, now); !errors.Is(err, domain.ErrReservationQtyInvalid) {
		t.Fatalf("expected ErrReservationQtyInvalid, got %v", err)
	}
	if _, err := svc.Upsert("user-1", "zone-us", "variant-1", 1, 0, now); !errors.Is(err, domain.ErrReservationTTLInvalid) {
		t.Fatalf("expected ErrReservationTTLInvalid, got %v", err)
	}
	if _, err := svc.Upsert("", "zone-us", "variant-1", 1, ttl, now); !errors.Is(err, domain.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
}

func TestService_GetReservedQuantity_ExcludeUser(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	if _, err := svc.Upsert("user-1", "zone-us", "variant-1", 4, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := svc.Upsert("user-2", "zone-us", "variant-1", 3, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	qty, err := svc.GetReservedQuantity("variant-1", "US", "user-1", now)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 3 {
		t.Fatalf("expected contention from other users only, got %d", qty)
	}
}

func TestService_GetReservedQuantityBulk_EqualsSingles(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	seed := []struct {
		user    string
		zone    string
		variant string
		qty     int32
	}{
		{"user-1", "zone-us", "variant-1", 4},
		{"user-2", "zone-us", "variant-1", 3},
		{"user-2", "zone-us", "variant-2", 2},
		{"user-3", "zone-eu", "variant-3", 9},
	}
	for _, s := range seed {
		if _, err := svc.Upsert(s.user, s.zone, s.variant, s.qty, ttl, now); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	variants := []string{"variant-1", "variant-2", "variant-3", "variant-absent"}
	bulk, err := svc.GetReservedQuantityBulk(variants, "US", "", now)
	if err != nil {
		t.Fatalf("GetReservedQuantityBulk failed: %v", err)
	}

	for _, variantID := range variants {
		single, err := svc.GetReservedQuantity(variantID, "US", "", now)
		if err != nil {
			t.Fatalf("GetReservedQuantity failed: %v", err)
		}
		if bulk[variantID] != single {
			t.Fatalf("bulk[%s]=%d differs from single=%d", variantID, bulk[variantID], single)
		}
	}

	empty, err := svc.GetReservedQuantityBulk(nil, "US", "", now)
	if err != nil {
		t.Fatalf("GetReservedQuantityBulk failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result for K=0, got %v", empty)
	}
}

func TestService_GetUserReservedQuantityBulk(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	if _, err := svc.Upsert("user-1", "zone-us", "variant-1", 4, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := svc.Upsert("user-2", "zone-us", "variant-1", 3, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	totals, err := svc.GetUserReservedQuantityBulk("user-1", "US", []string{"variant-1", "variant-2"}, now)
	if err != nil {
		t.Fatalf("GetUserReservedQuantityBulk failed: %v", err)
	}
	if totals["variant-1"] != 4 {
		t.Fatalf("expected user-1 quantity 4, got %d", totals["variant-1"])
	}
	if totals["variant-2"] != 0 {
		t.Fatalf("absent variant must read as zero, got %d", totals["variant-2"])
	}
}

func TestService_ExpiredRowsInvisibleBeforeSweep(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	if _, err := svc.Upsert("user-1", "zone-us", "variant-1", 4, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	afterExpiry := now.Add(ttl).Add(time.Second)

	// Просроченная строка исключается из чтений ещё до запуска sweeper'а.
	qty, err := svc.GetReservedQuantity("variant-1", "US", "", afterExpiry)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 0 {
		t.Fatalf("expired row must be invisible to reads, got %d", qty)
	}

	deleted, err := svc.SweepExpired(afterExpiry, 0)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 swept row, got %d", deleted)
	}

	deleted, err = svc.SweepExpired(afterExpiry, 0)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("sweep must be idempotent, got %d", deleted)
	}
}

func TestService_RemoveUserReservations_Scoped(t *testing.T) {
	svc := newService()
	now := time.Now().UTC()

	if _, err := svc.Upsert("user-1", "zone-us", "variant-1", 4, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := svc.Upsert("user-2", "zone-us", "variant-1", 3, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := svc.Upsert("user-1", "zone-eu", "variant-2", 5, ttl, now); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if err := svc.RemoveUserReservations("user-1", "US", []string{"variant-1"}); err != nil {
		t.Fatalf("RemoveUserReservations failed: %v", err)
	}

	qty, err := svc.GetReservedQuantity("variant-1", "US", "", now)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 3 {
		t.Fatalf("other user's rows must survive removal, got %d", qty)
	}

	qty, err = svc.GetReservedQuantity("variant-2", "DE", "", now)
	if err != nil {
		t.Fatalf("GetReservedQuantity failed: %v", err)
	}
	if qty != 5 {
		t.Fatalf("rows outside the country must survive removal, got %d", qty)
	}
}
