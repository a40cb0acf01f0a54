// Package dataset loads the visit history file into memory.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"visit-dashboard/internal/models"
)

const (
	batchSize  = 2000
	maxWorkers = 10
)

var (
	ErrEmptyFile     = errors.New("empty file")
	ErrMissingColumn = errors.New("missing required column")
)

type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the file at path and returns its visits in file order,
// restricted to models.VisitColumns. Files ending in .xlsx are read from
// their first sheet; everything else is treated as CSV.
func (l *Loader) Load(ctx context.Context, path string) ([]models.VisitRecord, error) {
	start := time.Now()
	l.logger.Info("loading dataset", "path", path)

	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: %w", path, ErrEmptyFile)
	}

	index, err := projectColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, skipped, err := parseRows(ctx, rows[1:], index)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if skipped > 0 {
		l.logger.Warn("skipped malformed rows", "path", path, "skipped", skipped)
	}
	if len(records) == 0 {
		l.logger.Warn("dataset has no rows", "path", path)
	}

	l.logger.Info("dataset loaded",
		"path", path,
		"records", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

func readRows(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// projectColumns maps every required column to its position in header.
func projectColumns(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	index := make(map[string]int, len(models.VisitColumns))
	var missing []string
	for _, col := range models.VisitColumns {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = pos
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

type parsedRow struct {
	record models.VisitRecord
	valid  bool
}

func parseRows(ctx context.Context, rows [][]string, index map[string]int) ([]models.VisitRecord, int, error) {
	parsed := make([]parsedRow, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				rec, err := parseRecord(rows[i], index)
				if err != nil {
					continue
				}
				parsed[i] = parsedRow{record: rec, valid: true}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	records := make([]models.VisitRecord, 0, len(rows))
	skipped := 0
	for _, p := range parsed {
		if !p.valid {
			skipped++
			continue
		}
		p.record.RowID = len(records)
		records = append(records, p.record)
	}
	return records, skipped, nil
}

func parseRecord(row []string, index map[string]int) (models.VisitRecord, error) {
	get := func(col string) string {
		if i := index[col]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	// Bucketing keys must be present; every record belongs to one bucket.
	daysPassed, err := parseInt(get(models.ColDaysPassed))
	if err != nil {
		return models.VisitRecord{}, fmt.Errorf("%s: %w", models.ColDaysPassed, err)
	}
	monthsPassed, err := parseInt(get(models.ColMonthsPassed))
	if err != nil {
		return models.VisitRecord{}, fmt.Errorf("%s: %w", models.ColMonthsPassed, err)
	}
	partySize, err := parseOptionalInt(get(models.ColPartySize))
	if err != nil {
		return models.VisitRecord{}, fmt.Errorf("%s: %w", models.ColPartySize, err)
	}
	noShows, err := parseOptionalInt(get(models.ColNoShowCount))
	if err != nil {
		return models.VisitRecord{}, fmt.Errorf("%s: %w", models.ColNoShowCount, err)
	}

	var rating *float64
	if raw := get(models.ColLastVisitRating); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.VisitRecord{}, fmt.Errorf("%s: %w", models.ColLastVisitRating, err)
		}
		if !math.IsNaN(v) {
			rating = &v
		}
	}

	return models.VisitRecord{
		PartySize:        partySize,
		SpaceID:          get(models.ColSpaceID),
		LastRegisteredAt: parseTimestamp(get(models.ColLastRegisteredAt)),
		LastSeatedAt:     parseTimestamp(get(models.ColLastSeatedAt)),
		LastDepartedAt:   parseTimestamp(get(models.ColLastDepartedAt)),
		LastVisitRating:  rating,
		RequestStatus:    get(models.ColRequestStatus),
		GuestTags:        get(models.ColGuestTags),
		NoShowCount:      noShows,
		VisitDuration:    get(models.ColVisitDuration),
		TimeToSeat:       get(models.ColTimeToSeat),
		DaysPassed:       daysPassed,
		MonthsPassed:     monthsPassed,
	}, nil
}

// parseInt accepts "5" as well as the "5.0" form spreadsheets tend to write.
func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, errors.New("empty value")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return int(f), nil
}

// parseOptionalInt reads an empty cell as null.
func parseOptionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := parseInt(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseTimestamp(raw string) models.Timestamp {
	if raw == "" {
		return models.Timestamp{}
	}
	t, err := ParseTime(raw)
	if err != nil {
		return models.Timestamp{Raw: raw}
	}
	return models.Timestamp{Raw: raw, Time: &t}
}

// ParseTime interprets s in whatever common date or datetime layout it is
// written in. Values without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	return dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
}
