package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Son violaciones de regla de negocio: se devuelven síncronamente al caller y
// no deben reintentarse. En el punto donde se levantan se envuelven con
// fmt.Errorf("%w: ...") para nombrar las cantidades involucradas; errors.Is
// sigue funcionando para el mapeo HTTP. Los fallos de infraestructura
// (pool, red) son otra clase y nunca se envuelven con estos centinelas.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Cantidades y lotes
	ErrInvalidQuantity           = errors.New("cantidad inválida")
	ErrInsufficientBatchQuantity = errors.New("cantidad insuficiente en el lote")
	ErrBatchBlocked              = errors.New("lote bloqueado por estado de calidad")
	ErrInsufficientStock         = errors.New("stock insuficiente")

	// Ubicaciones
	ErrCapacityExceeded       = errors.New("capacidad de la ubicación excedida")
	ErrInsufficientAllocation = errors.New("asignación insuficiente en la ubicación")

	// Conteos cíclicos
	ErrCountScopeConflict = errors.New("ya existe un conteo activo sobre ese alcance")
	ErrAlreadyStarted     = errors.New("el conteo ya fue iniciado")
	ErrAlreadyCounted     = errors.New("el ítem ya fue contado")
	ErrIncompleteCount    = errors.New("el conteo tiene ítems pendientes")
)
