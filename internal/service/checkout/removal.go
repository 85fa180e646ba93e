package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/saleor/saleor-sub058/internal/domain"
	"github.com/saleor/saleor-sub058/internal/service/reservation"
)

// RemovedReservation — отчёт по одному варианту после bulk-удаления.
type RemovedReservation struct {
	VariantID string
	Quantity  int32
}

// RemovalController валидирует и выполняет bulk-снятие резервов пользователя.
// Запрос выполняется целиком или не выполняется вовсе: частичное удаление
// не допускается.
type RemovalController struct {
	reservations *reservation.Service
	catalog      domain.VariantCatalog
	cfg          Config
	logger       *log.Entry

	clock func() time.Time
}

// NewRemovalController конструирует контроллер с зависимостями.
func NewRemovalController(
	reservations *reservation.Service,
	catalog domain.VariantCatalog,
	cfg Config,
	logger *log.Entry,
) *RemovalController {
	if logger == nil {
		logger = log.New().WithField("component", "removal-controller")
	}
	return &RemovalController{
		reservations: reservations,
		catalog:      catalog,
		cfg:          cfg.withDefaults(),
		logger:       logger,
		clock:        func() time.Time { return time.Now().UTC() },
	}
}

// Remove снимает резервы пользователя по набору вариантов и возвращает
// удалённые количества. Отчёт строится по снимку до удаления: сама операция
// удаления подробностей по строкам не возвращает.
func (c *RemovalController) Remove(userID, countryCode string, variantIDs []string) ([]RemovedReservation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	ids := dedupe(variantIDs)
	if len(ids) > c.cfg.RemovalBatchLimit {
		return nil, domain.NewCheckoutError(
			domain.CheckoutErrorTooManyReservations,
			"variants",
			fmt.Sprintf("cannot remove more than %d reservations at once", c.cfg.RemovalBatchLimit),
		)
	}
	if len(ids) == 0 {
		return []RemovedReservation{}, nil
	}

	variants, err := c.catalog.Variants(ids)
	if err != nil {
		if errors.Is(err, domain.ErrVariantNotFound) {
			return nil, &domain.CheckoutError{
				Code:    domain.CheckoutErrorNotFound,
				Field:   "variants",
				Message: "one or more product variants could not be found",
				Err:     err,
			}
		}
		return nil, fmt.Errorf("resolve variants: %w", err)
	}

	held, err := c.reservations.GetUserReservedQuantityBulk(userID, countryCode, ids, c.clock())
	if err != nil {
		return nil, fmt.Errorf("snapshot user reservations: %w", err)
	}

	if err := c.reservations.RemoveUserReservations(userID, countryCode, ids); err != nil {
		return nil, err
	}

	removed := make([]RemovedReservation, 0, len(variants))
	for _, variant := range variants {
		removed = append(removed, RemovedReservation{
			VariantID: variant.ID,
			Quantity:  held[variant.ID],
		})
	}

	c.logger.WithFields(log.Fields{
		"user_id":  userID,
		"variants": len(removed),
	}).Debug("reservations removed")

	return removed, nil
}

// dedupe убирает дубликаты, сохраняя порядок первого вхождения.
// Пустые id не отбрасываются: каталог их не разрешит, и запрос
// завершится NOT_FOUND целиком.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
