package s3prices

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/frontier/internal/domain"
)

// row is one archived daily observation, already adjusted
type row struct {
	date  time.Time
	open  float64
	close float64
}

// Close columns in order of preference
var closeColumns = []string{"adj_close", "adjclose", "close", "price"}

// parseCSV reads a header row followed by daily rows. A date column and one of
// the close columns are required; open is optional and defaults to the close.
// When both an adjusted and a raw close are present the open is scaled by
// their ratio. Rows come back sorted by date with later duplicates winning.
func parseCSV(data []byte) ([]row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	dateCol, ok := cols["date"]
	if !ok {
		return nil, errors.New("missing date column")
	}
	closeCol := -1
	for _, name := range closeColumns {
		if i, ok := cols[name]; ok {
			closeCol = i
			break
		}
	}
	if closeCol < 0 {
		return nil, fmt.Errorf("missing close column (one of %s)", strings.Join(closeColumns, ", "))
	}
	openCol, hasOpen := cols["open"]
	rawCloseCol, hasRawClose := cols["close"]
	scaleOpen := hasOpen && hasRawClose && rawCloseCol != closeCol

	byDate := make(map[time.Time]row)
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(field(rec, dateCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closePx, ok := parsePrice(field(rec, closeCol))
		if !ok {
			continue
		}

		rw := row{date: date, open: closePx, close: closePx}
		if hasOpen {
			if open, ok := parsePrice(field(rec, openCol)); ok {
				rw.open = open
				if scaleOpen {
					if raw, ok := parsePrice(field(rec, rawCloseCol)); ok {
						rw.open *= closePx / raw
					}
				}
			}
		}
		byDate[date] = rw
	}

	rows := make([]row, 0, len(byDate))
	for _, rw := range byDate {
		rows = append(rows, rw)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })
	return rows, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parsePrice accepts positive finite numbers only
func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// periodStart turns a lookback such as "10y", "6mo", "2wk", "5d", "ytd" or
// "max" into the earliest date to keep.
func periodStart(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "max":
		return time.Time{}, nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	}

	for _, unit := range []string{"mo", "wk", "y", "d"} {
		if !strings.HasSuffix(p, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
		if err != nil || n <= 0 {
			break
		}
		switch unit {
		case "y":
			return now.AddDate(-n, 0, 0), nil
		case "mo":
			return now.AddDate(0, -n, 0), nil
		case "wk":
			return now.AddDate(0, 0, -7*n), nil
		default:
			return now.AddDate(0, 0, -n), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported period %q", period)
}

func since(rows []row, start time.Time) []row {
	i := sort.Search(len(rows), func(i int) bool { return !rows[i].date.Before(start) })
	return rows[i:]
}

// resample keeps the last close of every interval bucket, dated at the start
// of the bucket. Supported intervals are 1d, 1wk, 1mo and 3mo.
func resample(rows []row, interval string) ([]domain.PricePoint, error) {
	var bucket func(time.Time) time.Time
	switch interval {
	case "1d":
		bucket = func(t time.Time) time.Time { return t }
	case "1wk":
		bucket = func(t time.Time) time.Time {
			offset := (int(t.Weekday()) + 6) % 7
			return t.AddDate(0, 0, -offset)
		}
	case "1mo":
		bucket = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	case "3mo":
		bucket = func(t time.Time) time.Time {
			m := time.Month((int(t.Month())-1)/3*3 + 1)
			return time.Date(t.Year(), m, 1, 0, 0, 0, 0, time.UTC)
		}
	default:
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}

	points := make([]domain.PricePoint, 0, len(rows))
	for _, rw := range rows {
		b := bucket(rw.date)
		if n := len(points); n > 0 && points[n-1].Date.Equal(b) {
			points[n-1].Price = rw.close
			continue
		}
		points = append(points, domain.PricePoint{Date: b, Price: rw.close})
	}
	return points, nil
}
