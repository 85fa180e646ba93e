package stock

import "github.com/saleor/saleor-sub058/internal/domain"

// MockChecker — конфигурируемая заглушка StockChecker для тестов и локальной
// разработки. Настоящий Availability Oracle живёт во внешнем сервисе склада.
type MockChecker struct {
	Err error

	Calls         int
	LastVariantID string
	LastCountry   string
	LastQuantity  int32
	LastUserID    string
}

// NewMockChecker возвращает mock с успешным сценарием по умолчанию.
func NewMockChecker() *MockChecker {
	return &MockChecker{}
}

// CheckStock возвращает заранее настроенную ошибку и запоминает аргументы.
func (m *MockChecker) CheckStock(variantID, countryCode string, quantity int32, userID string) error {
	m.Calls++
	m.LastVariantID = variantID
	m.LastCountry = countryCode
	m.LastQuantity = quantity
	m.LastUserID = userID
	return m.Err
}

var _ domain.StockChecker = (*MockChecker)(nil)
