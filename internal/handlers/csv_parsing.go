package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/epeers/bondrisk/internal/models"
)

// csvTable is a CSV reader positioned after its header row, with a
// case-insensitive column index.
type csvTable struct {
	reader *csv.Reader
	colIdx map[string]int
	rowNum int // header is row 1, data starts at row 2
}

func newCSVTable(r io.Reader, required ...string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	// rows may be shorter than the header; field() guards the index
	reader.FieldsPerRecord = -1

	return &csvTable{reader: reader, colIdx: colIdx, rowNum: 1}, nil
}

// next returns the next record, or io.EOF when the input is exhausted.
func (t *csvTable) next() ([]string, error) {
	record, err := t.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("row %d: failed to read CSV record: %w", t.rowNum+1, err)
	}
	t.rowNum++
	return record, nil
}

func (t *csvTable) field(record []string, col string) string {
	idx, ok := t.colIdx[col]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (t *csvTable) float(record []string, col string) (float64, error) {
	s := t.field(record, col)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("row %d: invalid %s %q", t.rowNum, col, s)
	}
	return v, nil
}

// ParseBondsCSV parses a bond reference data CSV.
// Required columns: isin, ticker, maturity_bucket, rating_score, yield_level, price_level
// Rows with an empty isin are skipped. Field validation beyond number
// parsing happens in the service layer.
func ParseBondsCSV(r io.Reader) ([]models.BondRequest, error) {
	t, err := newCSVTable(r, "isin", "ticker", "maturity_bucket", "rating_score", "yield_level", "price_level")
	if err != nil {
		return nil, err
	}

	var bonds []models.BondRequest
	for {
		record, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		isin := t.field(record, "isin")
		if isin == "" {
			continue
		}

		rating, err := t.float(record, "rating_score")
		if err != nil {
			return nil, err
		}
		yield, err := t.float(record, "yield_level")
		if err != nil {
			return nil, err
		}
		price, err := t.float(record, "price_level")
		if err != nil {
			return nil, err
		}

		bonds = append(bonds, models.BondRequest{
			ISIN:           isin,
			Ticker:         t.field(record, "ticker"),
			MaturityBucket: strings.ToUpper(t.field(record, "maturity_bucket")),
			RatingScore:    rating,
			YieldLevel:     yield,
			PriceLevel:     price,
		})
	}

	return bonds, nil
}

// ParsePositionsCSV parses a CSV with isin and size columns. Row order is
// kept, since it is the order positions are analyzed in.
func ParsePositionsCSV(r io.Reader) ([]models.PositionRequest, error) {
	t, err := newCSVTable(r, "isin", "size")
	if err != nil {
		return nil, err
	}

	var positions []models.PositionRequest
	for {
		record, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		isin := t.field(record, "isin")
		if isin == "" {
			return nil, fmt.Errorf("row %d: isin is empty", t.rowNum)
		}

		size, err := t.float(record, "size")
		if err != nil {
			return nil, err
		}

		positions = append(positions, models.PositionRequest{ISIN: isin, Size: size})
	}

	return positions, nil
}
