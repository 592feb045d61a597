package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"caltrack/internal/domain"
)

const (
	DefaultLogSheet    = "Sheet1"
	DefaultWeightSheet = "Sheet2"
	// DefaultMatchTolerance bounds the timestamp distance when a delete has
	// to match a legacy row by content.
	DefaultMatchTolerance = 2 * time.Minute
)

var (
	logColumns    = []string{"ID", "Timestamp", "Date", "User", "Item", "Calories", "Protein", "Category"}
	weightColumns = []string{"Date", "User", "Weight", "Unit"}
	timeLayouts   = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "1/2/2006 15:04:05"}
)

// Config holds the spreadsheet location and credentials.
type Config struct {
	SpreadsheetID  string
	LogSheet       string
	WeightSheet    string
	Credentials    Credentials
	MatchTolerance time.Duration
}

// Ledger stores log and weight rows in two sheets of one spreadsheet. Rows
// are addressed by header name so columns may be in any order.
type Ledger struct {
	api         valuesAPI
	roster      *domain.Roster
	logSheet    string
	weightSheet string
	tolerance   time.Duration
}

var _ domain.Ledger = (*Ledger)(nil)

// New connects to the spreadsheet with a service account.
func New(ctx context.Context, cfg Config, roster *domain.Roster) (*Ledger, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	api, err := newServiceAPI(ctx, cfg.SpreadsheetID, cfg.Credentials)
	if err != nil {
		return nil, err
	}
	return newLedger(api, cfg, roster), nil
}

func newLedger(api valuesAPI, cfg Config, roster *domain.Roster) *Ledger {
	l := &Ledger{
		api:         api,
		roster:      roster,
		logSheet:    cfg.LogSheet,
		weightSheet: cfg.WeightSheet,
		tolerance:   cfg.MatchTolerance,
	}
	if l.logSheet == "" {
		l.logSheet = DefaultLogSheet
	}
	if l.weightSheet == "" {
		l.weightSheet = DefaultWeightSheet
	}
	if l.tolerance <= 0 {
		l.tolerance = DefaultMatchTolerance
	}
	return l
}

// AppendLog adds one row to the log sheet.
func (l *Ledger) AppendLog(ctx context.Context, e domain.LogEntry) error {
	h, err := l.ensureHeader(ctx, l.logSheet, logColumns)
	if err != nil {
		return fmt.Errorf("log sheet header: %w", err)
	}
	u := l.user(e.User)
	row := h.encode(map[string]any{
		"id":        e.ID,
		"timestamp": e.Timestamp.UTC().Format(time.RFC3339),
		"date":      domain.DayKey(e.Timestamp, u),
		"user":      u.ID,
		"item":      e.Item,
		"calories":  e.Calories,
		"protein":   e.Protein,
		"category":  e.Category,
	})
	if err := l.api.Append(ctx, l.logSheet, [][]any{row}); err != nil {
		return fmt.Errorf("append log row: %w", err)
	}
	return nil
}

// DeleteLog removes the row for e. Rows are matched by ID. Rows without an
// ID are matched by content, picking the closest in time. A missing row is
// not an error.
func (l *Ledger) DeleteLog(ctx context.Context, e domain.LogEntry) error {
	rows, err := l.api.Get(ctx, quote(l.logSheet))
	if err != nil {
		return fmt.Errorf("read log sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil
	}
	idx := l.matchRow(parseHeader(rows[0]), rows, e)
	if idx < 0 {
		return nil
	}
	if err := l.api.DeleteRow(ctx, l.logSheet, idx); err != nil {
		return fmt.Errorf("delete log row %d: %w", idx+1, err)
	}
	return nil
}

func (l *Ledger) matchRow(h header, rows [][]any, e domain.LogEntry) int {
	u := l.user(e.User)
	best, bestDiff := -1, time.Duration(-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if id := h.cell(row, "id"); id != "" {
			if id == e.ID {
				return i
			}
			continue
		}
		if !strings.EqualFold(h.cell(row, "user"), u.ID) ||
			h.cell(row, "item") != strings.TrimSpace(e.Item) {
			continue
		}
		if cals, ok := parseNumber(h.cell(row, "calories")); !ok || cals != e.Calories {
			continue
		}

		var diff time.Duration
		if ts, ok := parseTime(h.cell(row, "timestamp")); ok {
			diff = absDuration(ts.Sub(e.Timestamp))
			if diff > l.tolerance {
				continue
			}
		} else {
			day := h.cell(row, "date")
			if day != domain.DayKey(e.Timestamp, u) {
				continue
			}
			noon, err := domain.NoonOf(day, u)
			if err != nil {
				continue
			}
			diff = absDuration(noon.Sub(e.Timestamp))
		}
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return best
}

// ListLogs reads every log row. Rows without a Timestamp are placed at noon
// of their Date in the user's zone. Rows without an ID get "row-<n>".
func (l *Ledger) ListLogs(ctx context.Context) ([]domain.LogEntry, error) {
	rows, err := l.api.Get(ctx, quote(l.logSheet))
	if err != nil {
		return nil, fmt.Errorf("read log sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	h := parseHeader(rows[0])

	out := make([]domain.LogEntry, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		userID := strings.ToLower(h.cell(row, "user"))
		if userID == "" {
			continue
		}
		u := l.user(userID)

		ts, ok := parseTime(h.cell(row, "timestamp"))
		if !ok {
			noon, err := domain.NoonOf(h.cell(row, "date"), u)
			if err != nil {
				continue
			}
			ts = noon
		}
		id := h.cell(row, "id")
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		cals, _ := parseNumber(h.cell(row, "calories"))
		protein, _ := parseNumber(h.cell(row, "protein"))

		out = append(out, domain.LogEntry{
			ID:        id,
			Timestamp: ts,
			User:      u.ID,
			Item:      h.cell(row, "item"),
			Calories:  cals,
			Protein:   protein,
			Category:  h.cell(row, "category"),
		})
	}
	return out, nil
}

// AppendWeight adds one row to the weight sheet.
func (l *Ledger) AppendWeight(ctx context.Context, w domain.WeightEntry) error {
	h, err := l.ensureHeader(ctx, l.weightSheet, weightColumns)
	if err != nil {
		return fmt.Errorf("weight sheet header: %w", err)
	}
	row := h.encode(map[string]any{
		"date":   w.Day,
		"user":   strings.ToLower(w.User),
		"weight": w.Value,
		"unit":   w.Unit,
	})
	if err := l.api.Append(ctx, l.weightSheet, [][]any{row}); err != nil {
		return fmt.Errorf("append weight row: %w", err)
	}
	return nil
}

// ListWeights reads every weight row in sheet order. A missing Unit means
// the user's configured unit.
func (l *Ledger) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := l.api.Get(ctx, quote(l.weightSheet))
	if err != nil {
		return nil, fmt.Errorf("read weight sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	h := parseHeader(rows[0])

	out := make([]domain.WeightEntry, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		userID := strings.ToLower(h.cell(row, "user"))
		value, ok := parseNumber(h.cell(row, "weight"))
		if userID == "" || !ok || value <= 0 {
			continue
		}
		u := l.user(userID)
		unit := strings.ToLower(h.cell(row, "unit"))
		if !domain.ValidUnit(unit) {
			unit = u.WeightUnit
		}
		day := h.cell(row, "date")
		created, _ := domain.NoonOf(day, u)
		out = append(out, domain.WeightEntry{
			User:      u.ID,
			Day:       day,
			Value:     value,
			Unit:      unit,
			CreatedAt: created,
		})
	}
	return out, nil
}

// ensureHeader returns the sheet's header, writing one if the sheet is empty.
func (l *Ledger) ensureHeader(ctx context.Context, sheet string, columns []string) (header, error) {
	rows, err := l.api.Get(ctx, quote(sheet)+"!1:1")
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		if h := parseHeader(rows[0]); len(h) > 0 {
			return h, nil
		}
	}
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := l.api.Append(ctx, sheet, [][]any{row}); err != nil {
		return nil, err
	}
	return parseHeader(row), nil
}

func (l *Ledger) user(id string) domain.User {
	if l.roster != nil {
		if u, ok := l.roster.Lookup(id); ok {
			return u
		}
	}
	return domain.User{ID: strings.ToLower(strings.TrimSpace(id)), WeightUnit: "kg"}
}

// header maps a lowercased column name to its index.
type header map[string]int

func parseHeader(row []any) header {
	h := make(header, len(row))
	for i, v := range row {
		name := strings.ToLower(cellString(v))
		if name == "" {
			continue
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

func (h header) cell(row []any, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return cellString(row[i])
}

// encode lays values out in header order. Columns the sheet lacks are dropped.
func (h header) encode(values map[string]any) []any {
	width := 0
	for name := range values {
		if i, ok := h[name]; ok && i+1 > width {
			width = i + 1
		}
	}
	row := make([]any, width)
	for i := range row {
		row[i] = ""
	}
	for name, v := range values {
		if i, ok := h[name]; ok {
			row[i] = v
		}
	}
	return row
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
