package reservation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/saleor/saleor-sub058/internal/domain"
	"github.com/saleor/saleor-sub058/internal/messaging/kafka"
	"github.com/saleor/saleor-sub058/internal/metrics"
)

// Service реализует бизнес-операции над хранилищем резервов: агрегированные
// чтения, upsert заявки пользователя, снятие заявок и зачистку просроченных.
type Service struct {
	repo     domain.ReservationRepository
	logger   *log.Entry
	metrics  *metrics.ReservationMetrics
	producer *kafka.Producer
}

// NewService создаёт рабочий экземпляр сервиса.
func NewService(repo domain.ReservationRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reservations")
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics.NewReservationMetrics(),
	}
}

// NewServiceWithKafka создаёт сервис, публикующий события жизненного цикла
// резервов в Kafka. События отправляются после коммита и не влияют на результат.
func NewServiceWithKafka(repo domain.ReservationRepository, producer *kafka.Producer, logger *log.Entry) *Service {
	svc := NewService(repo, logger)
	svc.producer = producer
	return svc
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(repo domain.ReservationRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reservations")
	}
	return &Service{repo: repo, logger: logger}
}

// GetReservedQuantity возвращает суммарное активное зарезервированное
// количество варианта в стране. excludeUserID, если задан, отбрасывает
// резервы самого запрашивающего. Отсутствие строк — ноль, не ошибка.
func (s *Service) GetReservedQuantity(variantID, countryCode, excludeUserID string, now time.Time) (int32, error) {
	totals, err := s.GetReservedQuantityBulk([]string{variantID}, countryCode, excludeUserID, now)
	if err != nil {
		return 0, err
	}
	return totals[variantID], nil
}

// GetReservedQuantityBulk — то же для набора вариантов одним запросом.
func (s *Service) GetReservedQuantityBulk(variantIDs []string, countryCode, excludeUserID string, now time.Time) (map[string]int32, error) {
	if len(variantIDs) == 0 {
		return map[string]int32{}, nil
	}
	return s.repo.AggregateByVariant(domain.ReservationFilter{
		CountryCode:   countryCode,
		ExcludeUserID: excludeUserID,
		VariantIDs:    variantIDs,
		ActiveAt:      effectiveNow(now),
	})
}

// GetUserReservedQuantityBulk возвращает активные резервы конкретного
// пользователя по набору вариантов.
func (s *Service) GetUserReservedQuantityBulk(userID, countryCode string, variantIDs []string, now time.Time) (map[string]int32, error) {
	if len(variantIDs) == 0 {
		return map[string]int32{}, nil
	}
	return s.repo.AggregateByVariant(domain.ReservationFilter{
		CountryCode: countryCode,
		UserID:      userID,
		VariantIDs:  variantIDs,
		ActiveAt:    effectiveNow(now),
	})
}

// Upsert создаёт или обновляет заявку (user, variant): количество заменяется,
// срок действия сдвигается на ttl от now. Конкурентные вызовы по одной паре
// сериализуются узкой блокировкой на уровне хранилища.
func (s *Service) Upsert(userID, zoneID, variantID string, quantity int32, ttl time.Duration, now time.Time) (domain.Reservation, error) {
	if ttl <= 0 {
		return domain.Reservation{}, domain.ErrReservationTTLInvalid
	}
	now = effectiveNow(now)

	res := domain.Reservation{
		ID:             uuid.NewString(),
		UserID:         strings.TrimSpace(userID),
		ShippingZoneID: strings.TrimSpace(zoneID),
		VariantID:      strings.TrimSpace(variantID),
		Quantity:       quantity,
		Expires:        now.Add(ttl),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if errs := res.Validate(); len(errs) > 0 {
		return domain.Reservation{}, errs[0]
	}

	start := time.Now()
	committed, err := s.repo.Upsert(res)
	if err != nil {
		// Ошибки конкуренции и хранилища не глотаются: вызывающий решает, повторять ли.
		return domain.Reservation{}, err
	}
	if s.metrics != nil {
		s.metrics.RecordUpsert(time.Since(start))
	}

	s.publishEvent(
		kafka.NewReservationEvent(
			kafka.EventTypeReservationReserved,
			committed.ID, committed.UserID, committed.VariantID,
			committed.ShippingZoneID, committed.Quantity, committed.Expires,
		),
		committed.UserID+"/"+committed.VariantID,
	)

	return committed, nil
}

// RemoveUserReservations удаляет все резервы пользователя по указанным
// вариантам в зонах, обслуживающих страну. Активность строк не проверяется:
// снятая заявка не должна оставлять и просроченный мусор.
func (s *Service) RemoveUserReservations(userID, countryCode string, variantIDs []string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUserIDRequired
	}
	if len(variantIDs) == 0 {
		return nil
	}

	deleted, err := s.repo.Delete(domain.ReservationFilter{
		UserID:      userID,
		CountryCode: countryCode,
		VariantIDs:  variantIDs,
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordRemoval(deleted)
	}

	s.logger.WithFields(log.Fields{
		"user_id": userID,
		"deleted": deleted,
	}).Debug("user reservations removed")

	s.publishEvent(kafka.NewReservationsReleasedEvent(userID, variantIDs), userID)

	return nil
}

// SweepExpired удаляет строки с expires <= now. limit>0 ограничивает размер
// порции, 0 — удалить всё за один проход. Возвращает число удалённых строк.
func (s *Service) SweepExpired(now time.Time, limit int) (int, error) {
	deleted, err := s.repo.DeleteExpired(effectiveNow(now), limit)
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.RecordSwept(deleted)
	}
	if deleted > 0 {
		s.publishEvent(kafka.NewSweepEvent(deleted), "sweep")
	}
	return deleted, nil
}

// publishEvent отправляет событие, если producer настроен. Ошибка публикации
// логируется и не влияет на исход операции.
func (s *Service) publishEvent(event interface{}, key string) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(kafka.TopicReservationEvents, key, event); err != nil {
		s.logger.WithError(err).Warn("failed to publish reservation event")
	}
}

func effectiveNow(now time.Time) time.Time {
	if now.IsZero() {
		return time.Now().UTC()
	}
	return now
}
