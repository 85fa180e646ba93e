package catalog

import (
	"fmt"

	"github.com/saleor/saleor-sub058/internal/domain"
)

// MockCatalog — заглушка каталога вариантов для тестов и локальной разработки.
type MockCatalog struct {
	Items map[string]domain.ProductVariant
	Err   error

	Calls int
}

// NewMockCatalog возвращает каталог с фиксированным набором вариантов.
func NewMockCatalog(variants ...domain.ProductVariant) *MockCatalog {
	items := make(map[string]domain.ProductVariant, len(variants))
	for _, v := range variants {
		items[v.ID] = v
	}
	return &MockCatalog{Items: items}
}

// Variants возвращает варианты по идентификаторам; частичный результат
// не возвращается.
func (m *MockCatalog) Variants(ids []string) ([]domain.ProductVariant, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}

	result := make([]domain.ProductVariant, 0, len(ids))
	for _, id := range ids {
		variant, ok := m.Items[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, id)
		}
		result = append(result, variant)
	}
	return result, nil
}

var _ domain.VariantCatalog = (*MockCatalog)(nil)
