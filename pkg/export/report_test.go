package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSections() []ReportSection {
	return []ReportSection{
		{
			Title: "Temas Impartidos",
			Data: Dataset{
				Headers: []string{"Tema", "Docente"},
				Rows:    []map[string]string{{"Tema": "Algebra", "Docente": "Ana"}},
			},
		},
		{
			Title: "Estado de las Tareas",
			Data: Dataset{
				Headers: []string{"Observaciones", "Tema"},
				Rows:    []map[string]string{},
			},
		},
	}
}

func TestReportRendererPDF(t *testing.T) {
	renderer := NewReportRenderer()
	out, err := renderer.RenderPDF("Reporte del Curso", sampleSections())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestReportRendererPDFRequiresSections(t *testing.T) {
	renderer := NewReportRenderer()
	_, err := renderer.RenderPDF("Reporte del Curso", nil)
	require.Error(t, err)
}

func TestReportRendererCSVRequiresHeaders(t *testing.T) {
	renderer := NewReportRenderer()
	_, err := renderer.RenderCSV([]ReportSection{{Title: "Temas Impartidos"}})
	require.Error(t, err)
}

func TestReportRendererCSVSections(t *testing.T) {
	renderer := NewReportRenderer()
	out, err := renderer.RenderCSV(sampleSections())
	require.NoError(t, err)

	text := string(out)
	require.Contains(t, text, "Temas Impartidos\n")
	require.Contains(t, text, "Tema,Docente")
	require.Contains(t, text, "Algebra,Ana")
	require.Contains(t, text, "\nEstado de las Tareas\nObservaciones,Tema\n")
	require.Equal(t, 1, strings.Count(text, "\n\n"))
}
