// Package pdf genera la requisición de compra imprimible de una solicitud aprobada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Departamento + año fiscal │ N° Requisición + Fecha  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE: Nombre + email                                 │
//	│  DETALLE: Descripción / Justificación / Fuente de fondos     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MONTOS: Monto solicitado / Presupuesto / Saldo              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  HISTORIAL: Fecha | Acción | Estado | Monto                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id + firma del aprobador                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/procurement-api/internal/application/usecase"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/pkg/money"
)

var _ usecase.RequisitionPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa usecase.RequisitionPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateRequisitionPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateRequisitionPDF(ctx context.Context, doc usecase.RequisitionDocument) ([]byte, error) {
	if doc.View == nil {
		return nil, fmt.Errorf("pdf: documento sin solicitud")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := doc.View

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Requisición de compra", true).
		WithAuthor(v.DepartmentName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(requesterRow(doc))
	m.AddRows(detailRows(doc)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(amountsRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(historyHeaderRow())
	m.AddRows(historyRows(doc.History)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(doc usecase.RequisitionDocument) core.Row {
	v := doc.View
	return row.New(18).Add(
		col.New(7).Add(
			text.New(v.DepartmentName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Año fiscal %d", v.FiscalYear), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("REQUISICIÓN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(requisitionNumber(v.Request.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+v.Request.RequestDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func requesterRow(doc usecase.RequisitionDocument) core.Row {
	v := doc.View
	return row.New(14).Add(
		col.New(12).Add(
			text.New("SOLICITANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(v.RequesterFirstName+" "+v.RequesterLastName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Email: "+nonEmpty(v.RequesterEmail, "-"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func detailRows(doc usecase.RequisitionDocument) []core.Row {
	pr := doc.View.Request
	field := func(label, value string) core.Row {
		return row.New(7).Add(
			col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: 1})),
			col.New(9).Add(text.New(nonEmpty(value, "-"), props.Text{Size: 8, Top: 1})),
		)
	}
	return []core.Row{
		field("Descripción:", pr.Description),
		field("Justificación:", pr.Justification),
		field("Fuente de fondos:", pr.FundingSource),
		field("Estado:", string(pr.Status)),
	}
}

func amountsRow(doc usecase.RequisitionDocument) core.Row {
	v := doc.View
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Monto solicitado:"),
			label("Presupuesto total:"),
			label("Saldo disponible:"),
		),
		col.New(3).Add(
			value(money.FormatUSD(v.Request.Amount)),
			value(money.FormatUSD(v.BudgetTotal)),
			value(money.FormatUSD(v.BudgetRemaining)),
		),
	)
}

func historyHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Acción", 3, align.Left),
		h("Estado", 3, align.Left),
		h("Monto", 3, align.Right),
	)
}

func historyRows(events []*entity.RequestEvent) []core.Row {
	out := make([]core.Row, 0, len(events))
	for _, e := range events {
		transition := string(e.ToStatus)
		if e.FromStatus != "" {
			transition = string(e.FromStatus) + " → " + transition
		}
		out = append(out, row.New(6).Add(
			col.New(3).Add(text.New(e.OccurredAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(string(e.Action), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(transition, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(money.FormatUSD(e.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

// footerRow: QR con el id de la solicitud y bloque de firma.
func footerRow(doc usecase.RequisitionDocument) core.Row {
	v := doc.View
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(v.Request.ID, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New("Aprobado por: "+nonEmpty(v.ApproverName, "-"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary,
			}),
			text.New("Generado: "+doc.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Top: 16, Left: 3, Color: colorGray,
			}),
			text.New("Documento interno. Los fondos quedan comprometidos contra el presupuesto del departamento.", props.Text{
				Size: 6.5, Top: 26, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// requisitionNumber toma el primer segmento del UUID como número visible.
func requisitionNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "REQ-" + id
}
