package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

var _ inventory.ProductCatalog = (*ProductCatalog)(nil)

// ProductCatalog adaptador de solo lectura al catálogo de productos, que es
// propiedad de la aplicación circundante: el núcleo consulta identidad y
// umbrales de reorden, nunca escribe.
type ProductCatalog struct {
	q Querier
}

// NewProductCatalog construye el adaptador de catálogo. Pasar pool o tx (Querier).
func NewProductCatalog(q Querier) *ProductCatalog {
	return &ProductCatalog{q: q}
}

// GetProduct obtiene identidad y umbrales de reorden de un producto.
func (r *ProductCatalog) GetProduct(productID string) (*entity.Product, error) {
	query := `SELECT id, sku, name, reorder_min, reorder_max FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&p.ID, &p.SKU, &p.Name, &p.ReorderMin, &p.ReorderMax,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
