package domain

import (
	"strings"
	"time"
)

// Reservation — временная заявка пользователя на количество варианта товара
// в рамках одной зоны доставки. После Expires заявка считается недействительной,
// даже если физическая строка ещё не удалена sweeper'ом.
type Reservation struct {
	ID             string
	UserID         string
	ShippingZoneID string
	VariantID      string
	Quantity       int32
	Expires        time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate проверяет, корректно ли заполнены ключевые поля резервирования.
func (r *Reservation) Validate() []error {
	var errs []error

	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if strings.TrimSpace(r.ShippingZoneID) == "" {
		errs = append(errs, ErrShippingZoneRequired)
	}
	if strings.TrimSpace(r.VariantID) == "" {
		errs = append(errs, ErrVariantIDRequired)
	}
	if r.Quantity <= 0 {
		errs = append(errs, ErrReservationQtyInvalid)
	}
	if r.Expires.IsZero() {
		errs = append(errs, ErrReservationExpiryRequired)
	}

	return errs
}

// ActiveAt сообщает, действует ли резервирование в момент now.
func (r *Reservation) ActiveAt(now time.Time) bool {
	return r.Expires.After(now)
}
