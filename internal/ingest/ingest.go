// Package ingest decodes uploaded shipment files into rows the grouper can
// partition. Spreadsheet validation beyond basic shape belongs to the
// uploader; only CSV is decoded here.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"shipcast/internal/series"
)

var (
	ErrEmptyFile         = errors.New("file has no header row")
	ErrMissingDateColumn = errors.New("missing date column")
	ErrMissingColumn     = errors.New("missing required column")
	ErrUnsupportedFormat = errors.New("unsupported file format, upload a CSV file")
	ErrUnknownMeasure    = errors.New("unknown measure")
)

// DateColumn is the date field name every upload must carry.
const DateColumn = "DATE"

// Measure names the numeric volume column a pipeline run operates on along
// with its display unit.
type Measure struct {
	Name   string
	Column string
	Unit   string
}

var (
	MeasureShipments = Measure{Name: "shipments", Column: "Connote", Unit: "shipments"}
	MeasureWeight    = Measure{Name: "weight", Column: "Weight", Unit: "kg"}
)

// MeasureByName resolves a request parameter to a known measure, defaulting
// to shipment counts.
func MeasureByName(name string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MeasureShipments.Name:
		return MeasureShipments, nil
	case MeasureWeight.Name:
		return MeasureWeight, nil
	}
	return Measure{}, fmt.Errorf("%q, %w", name, ErrUnknownMeasure)
}

// Row is one decoded transaction: a calendar date, the categorical key parts
// and the measured volume.
type Row struct {
	Date  time.Time
	Key   series.GroupKey
	Value float64
}

// Spec describes the columns a ReadCSV call extracts.
type Spec struct {
	Measure    Measure
	KeyColumns []string
}

// ReadCSV decodes rows from an uploaded CSV stream. Rows with unparseable
// dates or values are dropped; absent columns are an error.
func ReadCSV(r io.Reader, spec Spec) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))] = i
	}

	dateIdx, exists := colIdx[DateColumn]
	if !exists {
		return nil, fmt.Errorf("%s, %w", DateColumn, ErrMissingDateColumn)
	}
	valueIdx, exists := colIdx[spec.Measure.Column]
	if !exists {
		return nil, fmt.Errorf("%s, %w", spec.Measure.Column, ErrMissingColumn)
	}
	keyIdxs := make([]int, 0, len(spec.KeyColumns))
	for _, name := range spec.KeyColumns {
		idx, exists := colIdx[name]
		if !exists {
			return nil, fmt.Errorf("%s, %w", name, ErrMissingColumn)
		}
		keyIdxs = append(keyIdxs, idx)
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read record, %w", err)
		}

		date, ok := parseDate(record[dateIdx])
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(record[valueIdx]), ",", ""), 64)
		if err != nil {
			continue
		}

		parts := make([]string, 0, len(keyIdxs))
		for _, idx := range keyIdxs {
			parts = append(parts, strings.TrimSpace(record[idx]))
		}
		rows = append(rows, Row{
			Date:  date,
			Key:   series.NewGroupKey(parts...),
			Value: value,
		})
	}
	return rows, nil
}

// CheckFilename rejects anything other than a .csv upload.
func CheckFilename(name string) error {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return nil
	}
	return fmt.Errorf("%q, %w", name, ErrUnsupportedFormat)
}

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"2-Jan-2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return series.Day(t), true
		}
	}
	return time.Time{}, false
}
