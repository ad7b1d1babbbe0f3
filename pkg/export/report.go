package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Dataset is one table of the report: ordered headers plus rows keyed by
// header name.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// ReportSection is one titled table inside a multi-section report.
type ReportSection struct {
	Title string  `json:"title"`
	Data  Dataset `json:"data"`
}

// ReportRenderer renders a titled, multi-section document.
type ReportRenderer struct{}

// NewReportRenderer constructs a report renderer.
func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{}
}

// RenderPDF lays out every section as a header followed by its table.
func (r *ReportRenderer) RenderPDF(title string, sections []ReportSection) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("report requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, section := range sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("section %q has no headers", section.Title)
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 9, tr(section.Title), "", 1, "L", false, 0, "")

		colWidth := 190.0 / float64(len(section.Data.Headers))
		pdf.SetFont("Arial", "B", 10)
		for _, header := range section.Data.Headers {
			pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		if len(section.Data.Rows) == 0 {
			pdf.CellFormat(190, 7, tr("Sin registros"), "1", 1, "C", false, 0, "")
		}
		for _, row := range section.Data.Rows {
			for _, header := range section.Data.Headers {
				pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCSV concatenates the sections, each preceded by a title line and
// separated by a blank line.
func (r *ReportRenderer) RenderCSV(sections []ReportSection) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("report requires at least one section")
	}
	buf := &bytes.Buffer{}
	for i, section := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(section.Title)
		buf.WriteString("\n")
		if err := writeCSV(buf, section.Data); err != nil {
			return nil, fmt.Errorf("render section %q: %w", section.Title, err)
		}
	}
	return buf.Bytes(), nil
}

func writeCSV(buf *bytes.Buffer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
