package domain

import (
	"errors"
	"testing"
	"time"
)

func validReservation() Reservation {
	return Reservation{
		ID:             "res-1",
		UserID:         "user-1",
		ShippingZoneID: "zone-us",
		VariantID:      "variant-1",
		Quantity:       4,
		Expires:        time.Now().UTC().Add(10 * time.Minute),
	}
}

func TestReservation_Validate_OK(t *testing.T) {
	r := validReservation()
	if errs := r.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestReservation_Validate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Reservation)
		wantErr error
	}{
		{"missing user", func(r *Reservation) { r.UserID = " " }, ErrUserIDRequired},
		{"missing zone", func(r *Reservation) { r.ShippingZoneID = "" }, ErrShippingZoneRequired},
		{"missing variant", func(r *Reservation) { r.VariantID = "" }, ErrVariantIDRequired},
		{"zero quantity", func(r *Reservation) { r.Quantity = 0 }, ErrReservationQtyInvalid},
		{"negative quantity", func(r *Reservation) { r.Quantity = -2 }, ErrReservationQtyInvalid},
		{"missing expiry", func(r *Reservation) { r.Expires = time.Time{} }, ErrReservationExpiryRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReservation()
			tc.mutate(&r)

			errs := r.Validate()
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, err := range errs {
				if errors.Is(err, tc.wantErr) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tc.wantErr, errs)
			}
		})
	}
}

func TestReservation_ActiveAt(t *testing.T) {
	now := time.Now().UTC()
	r := validReservation()
	r.Expires = now.Add(time.Minute)

	if !r.ActiveAt(now) {
		t.Fatal("reservation expiring in the future must be active")
	}
	if r.ActiveAt(now.Add(time.Minute)) {
		t.Fatal("reservation is void exactly at expires")
	}
	if r.ActiveAt(now.Add(2 * time.Minute)) {
		t.Fatal("expired reservation must not be active")
	}
}

func TestShippingZone_ServesCountry(t *testing.T) {
	zone := ShippingZone{ID: "zone-eu", Name: "Europe", Countries: []string{"DE", "fr", "PL"}}

	if !zone.ServesCountry("DE") {
		t.Fatal("expected DE to be served")
	}
	if !zone.ServesCountry("fr") {
		t.Fatal("country match must ignore case")
	}
	if !zone.ServesCountry(" pl ") {
		t.Fatal("country match must trim whitespace")
	}
	if zone.ServesCountry("US") {
		t.Fatal("US is not in the zone")
	}
	if zone.ServesCountry("") {
		t.Fatal("empty code never matches")
	}
}

func TestCheckoutError_CodeAndUnwrap(t *testing.T) {
	cause := &InsufficientStockError{VariantID: "v1", DisplayName: "Blue Mug", AvailableQuantity: 3}
	err := &CheckoutError{
		Code:    CheckoutErrorInsufficientStock,
		Field:   "quantity",
		Message: cause.Error(),
		Err:     cause,
	}

	if !IsCheckoutError(err, CheckoutErrorInsufficientStock) {
		t.Fatal("expected INSUFFICIENT_STOCK code")
	}
	if IsCheckoutError(err, CheckoutErrorZeroQuantity) {
		t.Fatal("unexpected ZERO_QUANTITY match")
	}

	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatal("expected wrapped InsufficientStockError")
	}
	if ise.AvailableQuantity != 3 {
		t.Fatalf("expected available quantity 3, got %d", ise.AvailableQuantity)
	}
}

func TestProductVariant_DisplayName(t *testing.T) {
	v := ProductVariant{ID: "v1", SKU: "SKU-1", Name: "Blue Mug"}
	if v.DisplayName() != "Blue Mug" {
		t.Fatalf("expected name, got %s", v.DisplayName())
	}

	v.Name = ""
	if v.DisplayName() != "SKU-1" {
		t.Fatalf("expected sku fallback, got %s", v.DisplayName())
	}
}
