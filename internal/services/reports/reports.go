package reports

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/BearBump/CourierDesk/internal/apperr"
	"github.com/BearBump/CourierDesk/internal/integrations/backend"
)

type Backend interface {
	Report(ctx context.Context, q backend.Query) (backend.Record, error)
}

type Params struct {
	Type string
	From string // YYYY-MM-DD
	To   string
}

func (p Params) query() backend.Query {
	q := backend.Query{}
	if p.Type != "" {
		q["type"] = p.Type
	}
	if p.From != "" {
		q["from"] = p.From
	}
	if p.To != "" {
		q["to"] = p.To
	}
	return q
}

// Validate checks date format and order.
func (p Params) Validate() error {
	var from, to time.Time
	var err error
	if p.From != "" {
		if from, err = time.Parse(time.DateOnly, p.From); err != nil {
			return apperr.Validation("Invalid start date")
		}
	}
	if p.To != "" {
		if to, err = time.Parse(time.DateOnly, p.To); err != nil {
			return apperr.Validation("Invalid end date")
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return apperr.Validation("Start date must be before end date")
	}
	return nil
}

// Report is a flat table; Totals is aligned with Columns and empty for
// non-numeric columns.
type Report struct {
	Title       string     `json:"title"`
	Columns     []string   `json:"columns"`
	Rows        [][]string `json:"rows"`
	Totals      []string   `json:"totals"`
	GeneratedAt time.Time  `json:"generatedAt"`
}

type Service struct {
	backend Backend
	now     func() time.Time
}

func New(b Backend) *Service {
	return &Service{backend: b, now: time.Now}
}

func (s *Service) Fetch(ctx context.Context, p Params) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	rec, err := s.backend.Report(ctx, p.query())
	if err != nil {
		return Report{}, err
	}
	r := Tabulate(rec)
	if r.Title == "" {
		r.Title = title(p)
	}
	r.GeneratedAt = s.now().UTC()
	return r, nil
}

func title(p Params) string {
	t := "Report"
	if p.Type != "" {
		t = strings.ToUpper(p.Type[:1]) + p.Type[1:] + " report"
	}
	if p.From != "" || p.To != "" {
		t += fmt.Sprintf(" (%s – %s)", p.From, p.To)
	}
	return t
}

// Tabulate flattens a report record. Rows come from "rows", "items" or
// "data"; columns are the union of row keys, "label" or "date" first.
func Tabulate(rec backend.Record) Report {
	r := Report{}
	if t, ok := rec["title"].(string); ok {
		r.Title = t
	}
	var raw []any
	for _, k := range []string{"rows", "items", "data"} {
		if v, ok := rec[k].([]any); ok {
			raw = v
			break
		}
	}

	rows := make([]map[string]any, 0, len(raw))
	keys := map[string]struct{}{}
	for _, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, m)
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	r.Columns = columns(keys)

	sums := make([]float64, len(r.Columns))
	numeric := make([]bool, len(r.Columns))
	for i := range numeric {
		numeric[i] = len(rows) > 0
	}
	r.Rows = make([][]string, 0, len(rows))
	for _, m := range rows {
		line := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			v, ok := m[c]
			if !ok || v == nil {
				continue
			}
			if n, isNum := v.(float64); isNum {
				sums[i] += n
				line[i] = strconv.FormatFloat(n, 'f', -1, 64)
			} else {
				numeric[i] = false
				line[i] = fmt.Sprint(v)
			}
		}
		r.Rows = append(r.Rows, line)
	}

	r.Totals = make([]string, len(r.Columns))
	for i := range r.Columns {
		if numeric[i] {
			r.Totals[i] = strconv.FormatFloat(sums[i], 'f', -1, 64)
		}
	}
	return r
}

func columns(keys map[string]struct{}) []string {
	out := make([]string, 0, len(keys))
	var lead []string
	for _, k := range []string{"label", "date"} {
		if _, ok := keys[k]; ok {
			lead = append(lead, k)
			delete(keys, k)
		}
	}
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return append(lead, out...)
}

// WritePDF renders r as a single landscape table.
func WritePDF(w io.Writer, r Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+r.GeneratedAt.Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(r.Columns) == 0 {
		pdf.CellFormat(0, 8, "No data", "", 1, "L", false, 0, "")
		return errors.Wrap(pdf.Output(w), "write pdf")
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(r.Columns))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range r.Columns {
		pdf.CellFormat(colW, 7, tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range r.Rows {
		for _, cell := range row {
			pdf.CellFormat(colW, 6, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if hasTotals(r.Totals) {
		pdf.SetFont("Helvetica", "B", 9)
		for i, t := range r.Totals {
			if i == 0 && t == "" {
				t = "Total"
			}
			pdf.CellFormat(colW, 6, tr(t), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	return errors.Wrap(pdf.Output(w), "write pdf")
}

func hasTotals(t []string) bool {
	for _, s := range t {
		if s != "" {
			return true
		}
	}
	return false
}
