package checkout

import "time"

const (
	defaultReservationTTL       = 10 * time.Minute
	defaultQuantityLimitPerItem = int32(50)
	defaultRemovalBatchLimit    = 50
)

// Config — явный объект настроек резервирования на этапе checkout.
// Конструируется один раз и передаётся в контроллеры; глобального
// состояния настроек нет.
type Config struct {
	// ReservationTTL — срок действия резерва с момента (пере)создания.
	ReservationTTL time.Duration
	// QuantityLimitPerItem — предел количества в одном запросе резервирования.
	// Лимит действует на отдельный вызов, не суммарно по всем резервам
	// пользователя: это осознанно сохранённое поведение (UX-ограничение
	// на строку корзины, не анти-абьюз контроль).
	QuantityLimitPerItem int32
	// RemovalBatchLimit — предел числа вариантов в одном bulk-удалении.
	RemovalBatchLimit int
}

// DefaultConfig возвращает настройки по умолчанию: TTL 10 минут, оба лимита 50.
func DefaultConfig() Config {
	return Config{
		ReservationTTL:       defaultReservationTTL,
		QuantityLimitPerItem: defaultQuantityLimitPerItem,
		RemovalBatchLimit:    defaultRemovalBatchLimit,
	}
}

// withDefaults подставляет значения по умолчанию вместо незаполненных полей.
func (c Config) withDefaults() Config {
	if c.ReservationTTL <= 0 {
		c.ReservationTTL = defaultReservationTTL
	}
	if c.QuantityLimitPerItem <= 0 {
		c.QuantityLimitPerItem = defaultQuantityLimitPerItem
	}
	if c.RemovalBatchLimit <= 0 {
		c.RemovalBatchLimit = defaultRemovalBatchLimit
	}
	return c
}
