package repository

import "errors"

// Integrity guard errors raised by stock mutations. Both abort the whole
// enclosing transaction.
var (
	// ErrStockNegativo: a signed adjustment would leave cantidad or
	// peso_total below zero.
	ErrStockNegativo = errors.New("el ajuste dejaría el stock en negativo")

	// ErrStockInsuficiente: a move's source row lacks the requested
	// head count or weight.
	ErrStockInsuficiente = errors.New("stock insuficiente en el origen")

	// ErrInsumoInsuficiente: a supply consumption exceeds the available
	// insumo stock.
	ErrInsumoInsuficiente = errors.New("stock de insumo insuficiente")
)
