package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	darkColor  = &props.Color{Red: 33, Green: 37, Blue: 41}
	mutedColor = &props.Color{Red: 100, Green: 100, Blue: 100}
	whiteColor = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// GenerateDocumentPDF creates a printable quotation or invoice using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateDocumentPDF(data *DocumentExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addDocHeader(m, data)
	addDocParties(m, data)
	addDocLineItemsTable(m, data)
	addDocTotals(m, data)
	addDocAmountInWords(m, data)
	addDocNotes(m, data)
	addDocSignatures(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s PDF: %w", data.Kind, err)
	}

	return doc.GetBytes(), nil
}

// addDocHeader adds company name, document title, and number.
func addDocHeader(m core.Maroto, data *DocumentExportData) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(
				text.New(data.CompanyName, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
			col.New(6).Add(
				text.New(data.Kind.Title(), props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: darkColor,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("%s | %s", data.CompanyAddress, data.CompanyEmail), props.Text{
					Size:  8,
					Align: align.Left,
					Color: mutedColor,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("No: %s", data.Number), props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Right,
				}),
			),
		),
	)

	m.AddRows(row.New(3))
}

// addDocParties adds client and site details on the left and document
// metadata on the right.
func addDocParties(m core.Maroto, data *DocumentExportData) {
	labelStyle := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Left,
		Color: mutedColor,
	}
	valueStyle := props.Text{
		Size:  8,
		Align: align.Left,
	}
	rightLabelStyle := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Right,
		Color: mutedColor,
	}
	rightValueStyle := props.Text{
		Size:  8,
		Align: align.Right,
	}

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("CLIENT", labelStyle)),
			col.New(6).Add(text.New("DETAILS", rightLabelStyle)),
		),
	)

	left := []string{
		data.Client.Name,
		joinNonEmpty([]string{data.Client.Phone, data.Client.Email}, " | "),
		fmtField("Project", data.ProjectName),
		fmtField("Site", data.SiteAddress),
	}
	right := []struct{ label, value string }{
		{"Date:", data.IssueDate},
		{"Due Date:", data.DueDate},
		{"Quotation Ref:", data.QuotationRef},
		{"Status:", data.Status},
	}

	for i := 0; i < len(left) || i < len(right); i++ {
		var l, rl, rv string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			rl, rv = right[i].label, right[i].value
		}
		if l == "" && rv == "" {
			continue
		}
		if rv == "" {
			rl = ""
		}
		lStyle := valueStyle
		if i == 0 {
			lStyle.Style = fontstyle.Bold
		}
		m.AddRows(
			row.New(7).Add(
				col.New(6).Add(text.New(l, lStyle)),
				col.New(3).Add(text.New(rl, rightLabelStyle)),
				col.New(3).Add(text.New(rv, rightValueStyle)),
			),
		)
	}

	m.AddRows(row.New(3))
}

// addDocLineItemsTable adds the line items table with header and body rows.
func addDocLineItemsTable(m core.Maroto, data *DocumentExportData) {
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: whiteColor,
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: darkColor}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("SI No", headerText)).WithStyle(&headerCell),
			col.New(5).Add(text.New("Description", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Qty", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("UoM", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Unit Price", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Total", headerText)).WithStyle(&headerCell),
		),
	)

	altBg := &props.Color{Red: 248, Green: 249, Blue: 250}

	for i, item := range data.LineItems {
		bodyText := props.Text{Size: 7, Align: align.Center}
		bodyTextLeft := props.Text{Size: 7, Align: align.Left}
		bodyTextRight := props.Text{Size: 7, Align: align.Right}

		cols := []core.Col{
			col.New(1).Add(text.New(fmt.Sprintf("%d", item.SINo), bodyText)),
			col.New(5).Add(text.New(item.Description, bodyTextLeft)),
			col.New(1).Add(text.New(FormatQty(item.Qty), bodyTextRight)),
			col.New(1).Add(text.New(item.UOM, bodyText)),
			col.New(2).Add(text.New(FormatAmount(item.UnitPrice), bodyTextRight)),
			col.New(2).Add(text.New(FormatAmount(item.TotalPrice), bodyTextRight)),
		}

		if i%2 == 1 {
			cellStyle := &props.Cell{BackgroundColor: altBg}
			for j := range cols {
				cols[j] = cols[j].WithStyle(cellStyle)
			}
		}

		m.AddRows(row.New(7).Add(cols...))
	}

	m.AddRows(row.New(2))
}

// addDocTotals adds right-aligned subtotal, tax and net rows.
func addDocTotals(m core.Maroto, data *DocumentExportData) {
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}

	labelStyle := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := props.Text{
		Size:  8,
		Align: align.Right,
	}

	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New("Subtotal", labelStyle)).WithStyle(summaryCell),
			col.New(3).Add(text.New(data.Currency.FormatMoney(data.Subtotal), valueStyle)).WithStyle(summaryCell),
		),
	)

	taxLabel := fmt.Sprintf("VAT %s%%", data.TaxPercentage.String())
	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New(taxLabel, labelStyle)).WithStyle(summaryCell),
			col.New(3).Add(text.New(data.Currency.FormatMoney(data.TaxAmount), valueStyle)).WithStyle(summaryCell),
		),
	)

	netCell := &props.Cell{BackgroundColor: darkColor}
	netStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
		Color: whiteColor,
	}

	m.AddRows(
		row.New(8).Add(
			col.New(9).Add(text.New("Net Amount", netStyle)).WithStyle(netCell),
			col.New(3).Add(text.New(data.Currency.FormatMoney(data.NetAmount), netStyle)).WithStyle(netCell),
		),
	)

	m.AddRows(row.New(3))
}

// addDocAmountInWords adds the amount in words row.
func addDocAmountInWords(m core.Maroto, data *DocumentExportData) {
	if data.AmountInWords == "" {
		return
	}

	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Amount in Words: %s", data.AmountInWords), props.Text{
					Size:  8,
					Style: fontstyle.BoldItalic,
					Align: align.Left,
				}),
			),
		),
	)

	m.AddRows(row.New(3))
}

// addDocNotes adds the notes section if non-empty.
func addDocNotes(m core.Maroto, data *DocumentExportData) {
	if data.Notes == "" {
		return
	}

	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(text.New("NOTES", props.Text{
				Size:  7,
				Style: fontstyle.Bold,
				Align: align.Left,
				Color: mutedColor,
			})),
		),
	)
	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(text.New(data.Notes, props.Text{
				Size:  8,
				Align: align.Left,
			})),
		),
	)

	m.AddRows(row.New(3))
}

// addDocSignatures adds the signature section at the bottom.
func addDocSignatures(m core.Maroto, data *DocumentExportData) {
	m.AddRows(row.New(10))

	lineStyle := props.Text{
		Size:  8,
		Align: align.Center,
		Color: mutedColor,
	}

	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("____________________________", lineStyle)),
			col.New(6).Add(text.New("____________________________", lineStyle)),
		),
	)

	labelStyle := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: mutedColor,
	}

	clientLabel := "Client Acceptance"
	if data.Kind == KindInvoice {
		clientLabel = "Received By"
	}

	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(text.New(clientLabel, labelStyle)),
			col.New(6).Add(text.New("Authorized Signatory / Accounts", labelStyle)),
		),
	)
}

// joinNonEmpty joins non-empty strings with the given separator.
func joinNonEmpty(parts []string, sep string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	result := ""
	for i, p := range nonEmpty {
		if i > 0 {
			result += sep
		}
		result += p
	}
	return result
}

// fmtField returns "label: value" if value is non-empty, otherwise empty string.
func fmtField(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", label, value)
}
