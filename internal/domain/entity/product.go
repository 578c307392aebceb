package entity

// Nombres de campo conocidos en la hoja de inventario. Record.Get ya resuelve
// mayúsculas y tildes, así que cada lista sólo trae las variantes de redacción.
var (
	FieldCode        = []string{"Codigo", "Cod"}
	FieldReference   = []string{"Referencia", "Ref"}
	FieldDescription = []string{"Descripcion", "Nombre", "Producto"}
	FieldUnit        = []string{"Unidad-medida", "Unidad de medida", "Unidad"}
	FieldQuantity    = []string{"cantidad", "Stock"}
	FieldLocation    = []string{"Ubicación"}
	FieldMinStock    = []string{"Stock-min", "Stock minimo"}
	FieldStatus      = []string{"Estado"}
)

// QuantityColumn es la clave con la que se escribe la cantidad; el escritor la
// empareja sin distinguir mayúsculas contra el encabezado real.
const QuantityColumn = "cantidad"

// Product es la proyección tipada de un Record para los colaboradores que necesitan
// campos concretos (histórico, QR, etiqueta). El Record sigue siendo la fuente.
type Product struct {
	ID          string
	Code        string
	Reference   string
	Description string
	Unit        string
	Quantity    string
	Location    string
	MinStock    string
	Status      string
}

// ProductFromRecord proyecta un Record con el identificador ya resuelto.
func ProductFromRecord(id string, r Record) Product {
	return Product{
		ID:          id,
		Code:        r.Lookup(FieldCode...),
		Reference:   r.Lookup(FieldReference...),
		Description: r.Lookup(FieldDescription...),
		Unit:        r.Lookup(FieldUnit...),
		Quantity:    r.Lookup(FieldQuantity...),
		Location:    r.Lookup(FieldLocation...),
		MinStock:    r.Lookup(FieldMinStock...),
		Status:      r.Lookup(FieldStatus...),
	}
}
