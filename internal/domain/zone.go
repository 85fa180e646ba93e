package domain

import "strings"

// ShippingZone — именованный набор стран с общей конфигурацией доставки.
// Здесь используется только как ключ партиционирования резервов;
// жизненный цикл зон управляется извне.
type ShippingZone struct {
	ID        string
	Name      string
	Countries []string
}

// ServesCountry проверяет, входит ли страна в набор зоны.
// Коды сравниваются без учёта регистра.
func (z *ShippingZone) ServesCountry(countryCode string) bool {
	code := NormalizeCountryCode(countryCode)
	if code == "" {
		return false
	}
	for _, c := range z.Countries {
		if NormalizeCountryCode(c) == code {
			return true
		}
	}
	return false
}

// NormalizeCountryCode приводит код страны к каноническому виду (upper-case, без пробелов).
func NormalizeCountryCode(countryCode string) string {
	return strings.ToUpper(strings.TrimSpace(countryCode))
}

// ProductVariant — ссылка на резервируемый вариант товара.
// Каталог товаров живёт вне движка резервирования.
type ProductVariant struct {
	ID   string
	SKU  string
	Name string
}

// DisplayName возвращает имя варианта для сообщений пользователю.
func (v *ProductVariant) DisplayName() string {
	if strings.TrimSpace(v.Name) != "" {
		return v.Name
	}
	return v.SKU
}
