package kafka

import "time"

// EventType определяет тип события жизненного цикла резервирования.
type EventType string

const (
	// EventTypeReservationReserved — резерв создан или обновлён admission-путём.
	EventTypeReservationReserved EventType = "reservation.reserved"
	// EventTypeReservationReleased — резервы пользователя сняты removal-путём.
	EventTypeReservationReleased EventType = "reservation.released"
	// EventTypeReservationExpired — sweeper физически удалил просроченные строки.
	EventTypeReservationExpired EventType = "reservation.expired"
)

// Topics для Kafka.
const (
	TopicReservationEvents = "reservations.events"
)

// ReservationEvent — событие по конкретному резерву.
type ReservationEvent struct {
	EventType      EventType              `json:"event_type"`
	ReservationID  string                 `json:"reservation_id,omitempty"`
	UserID         string                 `json:"user_id"`
	VariantID      string                 `json:"product_variant_id,omitempty"`
	ShippingZoneID string                 `json:"shipping_zone_id,omitempty"`
	Quantity       int32                  `json:"quantity,omitempty"`
	Expires        time.Time              `json:"expires,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`

	// VariantIDs заполняется только для reservation.released: снятие
	// покрывает несколько вариантов одним запросом.
	VariantIDs []string `json:"product_variant_ids,omitempty"`
}

// SweepEvent — итог одного прохода sweeper'а.
type SweepEvent struct {
	EventType EventType `json:"event_type"`
	Deleted   int       `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReservationEvent создаёт событие по резерву.
func NewReservationEvent(eventType EventType, reservationID, userID, variantID, zoneID string, quantity int32, expires time.Time) *ReservationEvent {
	return &ReservationEvent{
		EventType:      eventType,
		ReservationID:  reservationID,
		UserID:         userID,
		VariantID:      variantID,
		ShippingZoneID: zoneID,
		Quantity:       quantity,
		Expires:        expires,
		Timestamp:      time.Now().UTC(),
	}
}

// NewReservationsReleasedEvent создаёт событие снятия резервов пользователя
// по набору вариантов.
func NewReservationsReleasedEvent(userID string, variantIDs []string) *ReservationEvent {
	return &ReservationEvent{
		EventType:  EventTypeReservationReleased,
		UserID:     userID,
		VariantIDs: variantIDs,
		Timestamp:  time.Now().UTC(),
	}
}

// NewSweepEvent создаёт событие прохода sweeper'а.
func NewSweepEvent(deleted int) *SweepEvent {
	return &SweepEvent{
		EventType: EventTypeReservationExpired,
		Deleted:   deleted,
		Timestamp: time.Now().UTC(),
	}
}
