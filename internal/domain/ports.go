package domain

// ZoneResolver находит зону доставки, обслуживающую страну.
type ZoneResolver interface {
	// ResolveZone возвращает зону, в набор стран которой входит countryCode,
	// или ErrZoneNotFound. Идентичность зоны стабильна на время жизни резерва.
	ResolveZone(countryCode string) (ShippingZone, error)
}

// VariantCatalog описывает доступ к каталогу вариантов товара.
type VariantCatalog interface {
	// Variants возвращает варианты по идентификаторам. Если хотя бы один
	// не найден — ErrVariantNotFound, частичный результат не возвращается.
	Variants(ids []string) ([]ProductVariant, error)
}

// StockChecker — внешний источник истины по фактическим складским остаткам.
// Вызывается до коммита резерва; уже существующие резервы запрашивающего
// пользователя в расчёт остатка не входят.
type StockChecker interface {
	// CheckStock возвращает nil, если количество доступно,
	// или *InsufficientStockError с текущим остатком и именем позиции.
	CheckStock(variantID, countryCode string, quantity int32, userID string) error
}
