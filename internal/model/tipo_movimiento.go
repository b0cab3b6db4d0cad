package model

// TipoMovimiento describes one movement-type code of a "movimiento" activity:
// whether it adds or removes animals, and whether the weight may be omitted
// on entry (in which case the engine resolves the lot/category average).
type TipoMovimiento struct {
	Codigo       string
	Nombre       string
	Direccion    int  // +1 entrada, -1 salida
	PesoOpcional bool // true: peso may be omitted and auto-resolved
}

// Movement-type codes.
const (
	MovEntrada    = "entrada"
	MovSalida     = "salida"
	MovCompra     = "compra"
	MovVenta      = "venta"
	MovNacimiento = "nacimiento"
	MovMortandad  = "mortandad"
)

// tiposMovimiento is the fixed movement-type catalog. Birth and death are the
// optional-weight types: the animal's weight is usually unknown at entry.
var tiposMovimiento = map[string]TipoMovimiento{
	MovEntrada:    {Codigo: MovEntrada, Nombre: "Entrada", Direccion: +1},
	MovSalida:     {Codigo: MovSalida, Nombre: "Salida", Direccion: -1},
	MovCompra:     {Codigo: MovCompra, Nombre: "Compra", Direccion: +1},
	MovVenta:      {Codigo: MovVenta, Nombre: "Venta", Direccion: -1},
	MovNacimiento: {Codigo: MovNacimiento, Nombre: "Nacimiento", Direccion: +1, PesoOpcional: true},
	MovMortandad:  {Codigo: MovMortandad, Nombre: "Mortandad", Direccion: -1, PesoOpcional: true},
}

// TipoMovimientoPorCodigo looks up a movement type by its code.
func TipoMovimientoPorCodigo(codigo string) (TipoMovimiento, bool) {
	t, ok := tiposMovimiento[codigo]
	return t, ok
}

// TiposMovimiento returns the full catalog for listing endpoints.
func TiposMovimiento() []TipoMovimiento {
	out := make([]TipoMovimiento, 0, len(tiposMovimiento))
	for _, t := range tiposMovimiento {
		out = append(out, t)
	}
	return out
}
