package entity

import "github.com/shopspring/decimal"

// Product es una referencia de solo lectura al catálogo externo. El núcleo la
// consulta para identidad y umbrales de reorden; nunca la muta.
type Product struct {
	ID         string
	SKU        string
	Name       string
	ReorderMin decimal.Decimal
	ReorderMax decimal.Decimal
}
