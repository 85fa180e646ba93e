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

// AdmissionController валидирует запрос резервирования, разрешает зону
// доставки, спрашивает Availability Oracle и фиксирует заявку через
// ReservationService.
type AdmissionController struct {
	reservations *reservation.Service
	zones        domain.ZoneResolver
	stock        domain.StockChecker
	cfg          Config
	logger       *log.Entry

	clock func() time.Time
}

// NewAdmissionController конструирует контроллер с зависимостями.
func NewAdmissionController(
	reservations *reservation.Service,
	zones domain.ZoneResolver,
	stock domain.StockChecker,
	cfg Config,
	logger *log.Entry,
) *AdmissionController {
	if logger == nil {
		logger = log.New().WithField("component", "admission-controller")
	}
	return &AdmissionController{
		reservations: reservations,
		zones:        zones,
		stock:        stock,
		cfg:          cfg.withDefaults(),
		logger:       logger,
		clock:        func() time.Time { return time.Now().UTC() },
	}
}

// Reserve проводит один запрос резервирования. Побочный эффект ровно один:
// создана или обновлена одна строка резерва. Проверка остатка и коммит
// заявки намеренно не атомарны между собой: резервы ограничивают окно
// oversell через TTL, но не дают жёсткой взаимной блокировки покупателей.
func (c *AdmissionController) Reserve(userID, countryCode, variantID string, quantity int32) (domain.Reservation, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Reservation{}, domain.ErrUnauthenticated
	}

	if quantity < 1 {
		return domain.Reservation{}, domain.NewCheckoutError(
			domain.CheckoutErrorZeroQuantity,
			"quantity",
			"quantity must be at least 1",
		)
	}
	if quantity > c.cfg.QuantityLimitPerItem {
		return domain.Reservation{}, domain.NewCheckoutError(
			domain.CheckoutErrorQuantityGreaterThanLimit,
			"quantity",
			fmt.Sprintf("cannot reserve more than %d of a single item", c.cfg.QuantityLimitPerItem),
		)
	}

	zone, err := c.zones.ResolveZone(countryCode)
	if err != nil {
		if errors.Is(err, domain.ErrZoneNotFound) {
			return domain.Reservation{}, &domain.CheckoutError{
				Code:    domain.CheckoutErrorInvalidCountryCode,
				Field:   "countryCode",
				Message: fmt.Sprintf("no shipping zone serves country %s", domain.NormalizeCountryCode(countryCode)),
				Err:     err,
			}
		}
		return domain.Reservation{}, fmt.Errorf("resolve shipping zone: %w", err)
	}

	if err := c.stock.CheckStock(variantID, countryCode, quantity, userID); err != nil {
		var ise *domain.InsufficientStockError
		if errors.As(err, &ise) {
			return domain.Reservation{}, &domain.CheckoutError{
				Code:    domain.CheckoutErrorInsufficientStock,
				Field:   "quantity",
				Message: fmt.Sprintf("could not reserve %s: only %d remaining in stock", ise.DisplayName, ise.AvailableQuantity),
				Err:     err,
			}
		}
		return domain.Reservation{}, fmt.Errorf("check stock: %w", err)
	}

	res, err := c.reservations.Upsert(userID, zone.ID, variantID, quantity, c.cfg.ReservationTTL, c.clock())
	if err != nil {
		return domain.Reservation{}, err
	}

	c.logger.WithFields(log.Fields{
		"user_id":    res.UserID,
		"variant_id": res.VariantID,
		"zone_id":    res.ShippingZoneID,
		"quantity":   res.Quantity,
	}).Debug("reservation admitted")

	return res, nil
}
