package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка неаутентифицированного вызова: проверяется до любой валидации.
	ErrUnauthenticated = errors.New("authenticated user is required")
	// Ошибка отсутствующего идентификатора пользователя в резерве.
	ErrUserIDRequired = errors.New("user_id is required")
	// Ошибка отсутствующей зоны доставки в резерве.
	ErrShippingZoneRequired = errors.New("shipping_zone_id is required")
	// Ошибка отсутствующего варианта товара в резерве.
	ErrVariantIDRequired = errors.New("product_variant_id is required")
	// Ошибка некорректного количества в резерве (<= 0).
	ErrReservationQtyInvalid = errors.New("reservation quantity must be greater than zero")
	// Ошибка отсутствующего срока действия резерва.
	ErrReservationExpiryRequired = errors.New("reservation expiration is required")
	// Ошибка некорректного TTL при создании резерва.
	ErrReservationTTLInvalid = errors.New("reservation ttl must be greater than zero")
	// ErrReservationConflict сигнализирует о нарушении уникальности (user, zone, variant).
	ErrReservationConflict = errors.New("reservation already exists for user, zone and variant")
	// ErrZoneNotFound возвращается, если ни одна зона не обслуживает страну.
	ErrZoneNotFound = errors.New("no shipping zone serves the country")
	// ErrVariantNotFound возвращается, если вариант товара не найден в каталоге.
	ErrVariantNotFound = errors.New("product variant not found")
)

// CheckoutErrorCode — стабильный машинный код ошибки этапа checkout.
type CheckoutErrorCode string

const (
	CheckoutErrorZeroQuantity             CheckoutErrorCode = "ZERO_QUANTITY"
	CheckoutErrorQuantityGreaterThanLimit CheckoutErrorCode = "QUANTITY_GREATER_THAN_LIMIT"
	CheckoutErrorInvalidCountryCode       CheckoutErrorCode = "INVALID_COUNTRY_CODE"
	CheckoutErrorInsufficientStock        CheckoutErrorCode = "INSUFFICIENT_STOCK"
	CheckoutErrorTooManyReservations      CheckoutErrorCode = "TOO_MANY_RESERVATIONS"
	CheckoutErrorNotFound                 CheckoutErrorCode = "NOT_FOUND"
)

// CheckoutError — структурированная ошибка валидации запроса резервирования.
// Field указывает поле запроса, к которому относится ошибка.
type CheckoutError struct {
	Code    CheckoutErrorCode
	Field   string
	Message string
	Err     error
}

func (e *CheckoutError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// NewCheckoutError создаёт ошибку валидации с машинным кодом.
func NewCheckoutError(code CheckoutErrorCode, field, message string) *CheckoutError {
	return &CheckoutError{Code: code, Field: field, Message: message}
}

// IsCheckoutError проверяет ошибку на конкретный код checkout.
func IsCheckoutError(err error, code CheckoutErrorCode) bool {
	var ce *CheckoutError
	return errors.As(err, &ce) && ce.Code == code
}

// InsufficientStockError — отказ Availability Oracle: запрошенное количество
// превышает доступный остаток.
type InsufficientStockError struct {
	VariantID         string
	DisplayName       string
	AvailableQuantity int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.DisplayName, e.AvailableQuantity)
}
