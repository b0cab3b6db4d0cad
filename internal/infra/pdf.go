package infra

// pdf.go
// Parte diario PDF rendering with go-pdf/fpdf. One page per activity:
// header with kind, date and time, a table of animal lines (categoría, lote,
// movimiento, cantidad, peso) and a table of consumed supplies, and the
// free-form note at the bottom. Output goes to storagePath/parte_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"partediario/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// ParteNombres carries the display names the PDF needs, resolved in batch by
// the worker before rendering.
type ParteNombres struct {
	Lotes      map[uuid.UUID]string
	Categorias map[uuid.UUID]string
	Insumos    map[uuid.UUID]string
}

func (n ParteNombres) lote(id uuid.UUID) string {
	if s, ok := n.Lotes[id]; ok {
		return s
	}
	return id.String()[:8]
}

func (n ParteNombres) categoria(id uuid.UUID) string {
	if s, ok := n.Categorias[id]; ok {
		return s
	}
	return id.String()[:8]
}

func (n ParteNombres) insumo(id uuid.UUID) string {
	if s, ok := n.Insumos[id]; ok {
		return s
	}
	return id.String()[:8]
}

var tituloPorTipo = map[string]string{
	model.TipoMovimientoAnimal: "Movimiento de animales",
	model.TipoActividadMixta:   "Actividad mixta",
	model.TipoReclasificacion:  "Reclasificación",
	model.TipoDestete:          "Destete",
	model.TipoTraslado:         "Traslado entre lotes",
}

// GenerateParteDiarioPDF renders the activity as an A4 parte diario report.
// storagePath is created if needed. Returns the path of the written file.
func GenerateParteDiarioPDF(a *model.Actividad, nombres ParteNombres, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("parte_%s.pdf", a.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Parte Diario", "", 1, "C", false, 0, "")

	titulo := tituloPorTipo[a.Tipo]
	if titulo == "" {
		titulo = a.Tipo
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, titulo, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Fecha: %s   Hora: %s", a.Fecha.Format("02/01/2006"), a.Hora), "", 1, "L", false, 0, "")
	if a.LoteID != nil {
		pdf.CellFormat(contentW, 5, "Lote: "+nombres.lote(*a.LoteID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Animal lines ──────────────────────────────────────────────────────────
	if len(a.DetallesAnimales) > 0 {
		col1 := contentW * 0.34 // categoría
		col2 := contentW * 0.30 // lote / movimiento
		col3 := contentW * 0.14 // cantidad
		col4 := contentW * 0.22 // peso

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(col1, 6, "Categoría", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "Detalle", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, "Cantidad", "B", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "Peso (kg)", "B", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		for _, d := range a.DetallesAnimales {
			categoria := nombres.categoria(d.CategoriaAnimalID)
			if d.CategoriaAnimalAnteriorID != nil {
				categoria = nombres.categoria(*d.CategoriaAnimalAnteriorID) + " > " + categoria
			}

			detalle := nombres.lote(d.LoteID)
			if d.LoteOrigenID != nil && d.LoteDestinoID != nil {
				detalle = nombres.lote(*d.LoteOrigenID) + " > " + nombres.lote(*d.LoteDestinoID)
			} else if d.TipoMovimiento != nil {
				detalle = *d.TipoMovimiento + " / " + detalle
			}

			peso := d.Peso.StringFixed(0)
			if d.TipoPeso == model.PesoPromedio {
				peso += " prom."
			}

			pdf.CellFormat(col1, 6, categoria, "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 6, detalle, "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 6, fmt.Sprintf("%d", d.Cantidad), "", 0, "R", false, 0, "")
			pdf.CellFormat(col4, 6, peso, "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Supplies ──────────────────────────────────────────────────────────────
	if len(a.DetallesInsumos) > 0 {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Insumos utilizados", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, d := range a.DetallesInsumos {
			pdf.CellFormat(contentW*0.7, 6, nombres.insumo(d.InsumoID), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.3, 6, d.Cantidad.String(), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Note ──────────────────────────────────────────────────────────────────
	if a.Nota != nil && *a.Nota != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, "Nota: "+*a.Nota, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
