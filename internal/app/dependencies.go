package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/saleor/saleor-sub058/internal/domain"
	"github.com/saleor/saleor-sub058/internal/service/catalog"
	"github.com/saleor/saleor-sub058/internal/service/checkout"
	"github.com/saleor/saleor-sub058/internal/service/reservation"
	"github.com/saleor/saleor-sub058/internal/service/stock"
	"github.com/saleor/saleor-sub058/internal/storage/memory"
	"github.com/saleor/saleor-sub058/internal/storage/postgres"
)

// Dependencies содержит хранилище и справочники, на которых работает сервис.
type Dependencies struct {
	Repo    domain.ReservationRepository
	Zones   domain.ZoneResolver
	Stock   domain.StockChecker
	Catalog domain.VariantCatalog

	// Admission и Removal — checkout-поверхность для внешнего API-слоя.
	// Заполняются через WireCheckout после создания сервиса резервирования.
	Admission *checkout.AdmissionController
	Removal   *checkout.RemovalController

	// Store не nil только в postgres-режиме.
	Store  *postgres.Store
	Logger *log.Entry
}

// Демо-справочник зон для in-memory режима.
var demoZones = []domain.ShippingZone{
	{ID: "zone-americas", Name: "Americas", Countries: []string{"US", "CA", "MX", "BR"}},
	{ID: "zone-europe", Name: "Europe", Countries: []string{"DE", "FR", "PL", "GB"}},
	{ID: "zone-apac", Name: "Asia Pacific", Countries: []string{"JP", "AU", "SG"}},
}

var demoVariants = []domain.ProductVariant{
	{ID: "variant-mug-blue", SKU: "MUG-BLUE", Name: "Blue Mug"},
	{ID: "variant-mug-red", SKU: "MUG-RED", Name: "Red Mug"},
	{ID: "variant-tee-black", SKU: "TEE-BLACK", Name: "Black T-Shirt"},
}

// NewDependencies создаёт зависимости приложения: postgres при заданном DSN,
// иначе in-memory хранилище с демо-справочниками.
// NOTE: stock и catalog здесь mock-реализации; в production их заменяют
// клиенты warehouse- и product-сервисов.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Stock:   stock.NewMockChecker(),
		Catalog: catalog.NewMockCatalog(demoVariants...),
		Logger:  logger,
	}

	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN не задан, используем in-memory хранилище")
		deps.Repo = memory.NewReservationRepository(demoZones...)
		deps.Zones = memory.NewZoneResolver(demoZones...)
		return deps, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	deps.Store = store
	deps.Repo = postgres.NewReservationRepository(store)
	deps.Zones = postgres.NewZoneRepository(store)
	logger.Info("postgres хранилище инициализировано")
	return deps, nil
}

// WireCheckout строит контроллеры checkout поверх сервиса резервирования,
// перенося TTL и лимиты из конфигурации приложения.
func (d *Dependencies) WireCheckout(svc *reservation.Service, cfg Config) {
	checkoutCfg := checkout.Config{
		ReservationTTL:       cfg.ReservationTTL,
		QuantityLimitPerItem: cfg.QuantityLimitPerItem,
		RemovalBatchLimit:    cfg.RemovalBatchLimit,
	}
	d.Admission = checkout.NewAdmissionController(
		svc, d.Zones, d.Stock, checkoutCfg,
		d.Logger.WithField("component", "admission-controller"),
	)
	d.Removal = checkout.NewRemovalController(
		svc, d.Catalog, checkoutCfg,
		d.Logger.WithField("component", "removal-controller"),
	)
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
