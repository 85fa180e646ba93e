package domain

import "time"

// ReservationFilter задаёт условия выборки и удаления строк резервов.
// Пустые поля означают отсутствие соответствующего условия; фильтры
// компонуются сервисным слоем, а не цепочками на живом курсоре.
type ReservationFilter struct {
	// CountryCode ограничивает выборку зонами, обслуживающими страну
	// (set-membership по набору стран зоны, никогда по id зоны напрямую).
	CountryCode string
	// UserID оставляет только строки владельца.
	UserID string
	// ExcludeUserID отбрасывает строки владельца (конкуренция со стороны других).
	ExcludeUserID string
	// VariantIDs ограничивает выборку набором вариантов; nil — без ограничения.
	VariantIDs []string
	// ActiveAt оставляет строки с expires > ActiveAt.
	ActiveAt time.Time
	// ExpiredAt оставляет строки с expires <= ExpiredAt.
	ExpiredAt time.Time
}

// ReservationRepository описывает требования к хранилищу резервов.
type ReservationRepository interface {
	// AggregateByVariant группирует подходящие строки по варианту, суммируя
	// количество. Нулевые записи в результат не попадают: отсутствие ключа
	// означает ноль. Пустой результат — не ошибка.
	AggregateByVariant(f ReservationFilter) (map[string]int32, error)
	// Upsert атомарно обновляет или создаёт строку для (user, variant),
	// сериализуя конкурентные вызовы по этой паре узкой блокировкой.
	// Количество и срок действия заменяются, не накапливаются.
	Upsert(r Reservation) (Reservation, error)
	// Delete удаляет подходящие строки и возвращает их количество.
	Delete(f ReservationFilter) (int, error)
	// DeleteExpired удаляет строки с expires <= before порциями limit (0 — без лимита).
	DeleteExpired(before time.Time, limit int) (int, error)
}
