// Package pdf genera la guía de transporte de un trato.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: GUÍA DE TRANSPORTE  │  ID del trato + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE / PRODUCTO / RANGO DE TEMPERATURA                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: De | A | Actor | Fecha                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + estado actual                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/logistica-api/internal/application/ports"
	"github.com/jhoicas/logistica-api/internal/domain/entity"
)

var _ ports.WaybillGenerator = (*WaybillGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// WaybillGenerator implementa ports.WaybillGenerator usando Maroto v2.
type WaybillGenerator struct {
	issuer string
}

// NewWaybillGenerator construye el generador; issuer aparece como autor del PDF.
func NewWaybillGenerator(issuer string) *WaybillGenerator {
	return &WaybillGenerator{issuer: issuer}
}

// GenerateWaybill genera el PDF y devuelve sus bytes.
func (g *WaybillGenerator) GenerateWaybill(_ context.Context, trade *entity.Trade, history []*entity.TradeTransition) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de transporte "+trade.ID, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(trade))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(shipmentRow(trade))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow("Cant.", "Producto", "Precio Unit.", "Total"))
	m.AddRows(itemRow(trade))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow("De", "A", "Actor", "Fecha"))
	for _, tr := range history {
		m.AddRows(historyRow(tr))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(trade))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(trade *entity.Trade) core.Row {
	return row.New(18).Add(
		col.New(6).Add(
			text.New("GUÍA DE TRANSPORTE", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+trade.TransportState.String(), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New(trade.ID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+trade.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func shipmentRow(trade *entity.Trade) core.Row {
	return row.New(16).Add(
		col.New(6).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(trade.Customer, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
		col.New(6).Add(
			text.New("TEMPERATURA DE TRANSPORTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Right,
			}),
			text.New(fmt.Sprintf("%d °C a %d °C", trade.MinTemperature, trade.MaxTemperature), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6, Align: align.Right,
			}),
		),
	)
}

// tableHeaderRow cabecera de cuatro columnas (2/4/3/3).
func tableHeaderRow(c1, c2, c3, c4 string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h(c1, 2, align.Left),
		h(c2, 4, align.Left),
		h(c3, 3, align.Right),
		h(c4, 3, align.Right),
	)
}

func itemRow(trade *entity.Trade) core.Row {
	unit := decimal.Zero
	if trade.Quantity > 0 {
		unit = trade.Price.Div(decimal.NewFromInt(trade.Quantity))
	}
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1}))
	}
	return row.New(7).Add(
		cell(fmt.Sprintf("%d", trade.Quantity), 2, align.Left),
		cell(trade.ProductName, 4, align.Left),
		cell("$"+formatMoney(unit), 3, align.Right),
		cell("$"+formatMoney(trade.Price), 3, align.Right),
	)
}

func historyRow(tr *entity.TradeTransition) core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Color: colorGray}))
	}
	return row.New(6).Add(
		cell(tr.From.String(), 2, align.Left),
		cell(tr.To.String(), 4, align.Left),
		cell(tr.Actor, 3, align.Right),
		cell(tr.At.Format("02/01/2006 15:04"), 3, align.Right),
	)
}

func footerRow(trade *entity.Trade) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(trade.ID, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Escanea el código QR para consultar\nel estado del envío.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(trade.ProductName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 20, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney separa miles con punto y decimales con coma. Ej: 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
