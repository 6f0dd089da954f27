package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// Reader implements ports.ResultReader. It loads a previously written
// results artifact, xlsx or csv by extension, so a finished run can be
// re-summarized without recomputing the study.
type Reader struct{}

// NewReader creates a result reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadResults parses a results artifact back into a table.
func (r *Reader) ReadResults(path string) (*study.ResultTable, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("results file not found: %s", path)
	}

	start := time.Now()
	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		rows, err = readCSVRows(path)
	} else {
		rows, err = readSheetRows(path)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[ResultsReader] %s read in %.2fms (%d rows)",
		path, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("results file %s has no header row", path)
	}
	return parseResults(rows)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	return csv.NewReader(f).ReadAll()
}

func readSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := "results"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		sheet = f.GetSheetName(0)
	}
	return f.GetRows(sheet)
}

func parseResults(rows [][]string) (*study.ResultTable, error) {
	header := rows[0]
	if len(header) < len(ResultHeaders) {
		return nil, fmt.Errorf("results header has %d columns, want %d", len(header), len(ResultHeaders))
	}
	for i, want := range ResultHeaders {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("results column %d is %q, want %q", i+1, header[i], want)
		}
	}

	table := &study.ResultTable{}
	for i, cells := range rows[1:] {
		line := i + 2
		if len(cells) < len(ResultHeaders) {
			return nil, fmt.Errorf("row %d has %d columns, want %d", line, len(cells), len(ResultHeaders))
		}

		replication, err := strconv.Atoi(strings.TrimSpace(cells[0]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad replication %q: %w", line, cells[0], err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(cells[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad sample size %q: %w", line, cells[1], err)
		}
		location, err := study.ParseLocation(cells[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		cutpoint, err := strconv.Atoi(strings.TrimSpace(cells[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad cutpoint %q: %w", line, cells[3], err)
		}
		mechanism, err := study.ParseMechanism(cells[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(cells[5]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad rate %q: %w", line, cells[5], err)
		}
		method, err := study.ParseMethod(cells[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		ari, err := parseARI(cells[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		table.Append(study.ResultRow{
			Replication: replication,
			SampleSize:  n,
			Location:    location,
			Cutpoint:    cutpoint,
			Mechanism:   mechanism,
			Rate:        rate,
			Method:      method,
			ARI:         ari,
		})
	}
	return table, nil
}

func parseARI(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, missingToken) || s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad ari %q: %w", s, err)
	}
	return v, nil
}
