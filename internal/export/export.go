// Package export writes a page of tasks in the formats offered by
// `taskdeck list --format`.
package export

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jung-kurt/gofpdf"

	"github.com/dori/taskdeck/internal/model"
)

// Format is an output format name
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	CSV  Format = "csv"
	HTML Format = "html"
	PDF  Format = "pdf"
)

// Formats lists every supported format
var Formats = []Format{Text, JSON, CSV, HTML, PDF}

// ParseFormat resolves a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

//go:embed templates/tasks.html
var templatesFS embed.FS

var htmlTmpl = template.Must(
	template.New("tasks.html").
		Funcs(template.FuncMap{
			"created": func(t model.Task) string { return t.FormatCreated() },
		}).
		ParseFS(templatesFS, "templates/tasks.html"),
)

// Lister fetches a page of tasks
type Lister interface {
	ListTasks(ctx context.Context, q model.QueryState) (model.Page, error)
}

// Exporter fetches a page and writes it out
type Exporter struct {
	svc Lister
	now func() time.Time
}

func NewExporter(svc Lister) *Exporter {
	return &Exporter{svc: svc, now: time.Now}
}

// Export fetches the page selected by q and writes it to w as format
func (e *Exporter) Export(ctx context.Context, w io.Writer, q model.QueryState, format Format) error {
	page, err := e.svc.ListTasks(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	return Write(w, format, page, e.now())
}

// Write renders page to w. generated is stamped on the HTML and PDF
// documents.
func Write(w io.Writer, format Format, page model.Page, generated time.Time) error {
	switch format {
	case Text:
		return writeText(w, page)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case CSV:
		return writeCSV(w, page)
	case HTML:
		return writeHTML(w, page, generated)
	case PDF:
		return writePDF(w, page, generated)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func summary(p model.Pagination) string {
	if p.TotalPages == 0 {
		return "no tasks"
	}
	return fmt.Sprintf("page %d of %d, %d tasks", p.CurrentPage, p.TotalPages, p.TotalCount)
}

func writeText(w io.Writer, page model.Page) error {
	if len(page.Items) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	rows := make([][]string, 0, len(page.Items))
	for _, t := range page.Items {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Priority.Marker() + " " + t.Priority.Label(),
			model.PlainTitle(t.Title),
			t.FormatCreated(),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "Priority", "Title", "Created").
		Rows(rows...)

	_, err := fmt.Fprintf(w, "%s\n%s\n", tbl, summary(page.Pagination))
	return err
}

func writeCSV(w io.Writer, page model.Page) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "priority", "created_at"}); err != nil {
		return err
	}
	for _, t := range page.Items {
		created := ""
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.UTC().Format(time.RFC3339)
		}
		record := []string{strconv.FormatInt(t.ID, 10), t.Title, string(t.Priority), created}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type htmlData struct {
	Tasks     []model.Task
	Summary   string
	Generated string
}

func writeHTML(w io.Writer, page model.Page, generated time.Time) error {
	return htmlTmpl.Execute(w, htmlData{
		Tasks:     page.Items,
		Summary:   summary(page.Pagination),
		Generated: generated.Format(model.DateLayout),
	})
}

func writePDF(w io.Writer, page model.Page, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetCreationDate(generated)

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, tr(summary(page.Pagination)+" - generated "+generated.Format(model.DateLayout)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(15, 7, "ID", "1", 0, "L", false, 0, "")
	pdf.CellFormat(22, 7, "Priority", "1", 0, "L", false, 0, "")
	pdf.CellFormat(115, 7, "Title", "1", 0, "L", false, 0, "")
	pdf.CellFormat(38, 7, "Created", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, t := range page.Items {
		pdf.CellFormat(15, 7, strconv.FormatInt(t.ID, 10), "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 7, t.Priority.Label(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(115, 7, tr(model.PlainTitle(t.Title)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(38, 7, t.FormatCreated(), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
