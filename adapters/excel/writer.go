// Package excel persists study artifacts as spreadsheet or CSV files. The
// format is chosen from the path extension, so one flag serves both the
// people who open results in a spreadsheet and the ones who pipe them into
// R.
package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// missingToken is written for an ARI the pipeline could not produce, and
// recognized again on read.
const missingToken = "NA"

// ResultHeaders is the column order of the results artifact.
var ResultHeaders = []string{
	"replication", "n", "cutpoint_location", "cutpoint", "mechanism", "rate", "method", "ari",
}

// SummaryHeaders is the column order of the summary artifact.
var SummaryHeaders = []string{
	"n", "cutpoint_location", "mechanism", "rate", "method",
	"replications", "failures", "mean_ari", "sd_ari",
}

// Writer implements ports.ResultWriter.
type Writer struct{}

// NewWriter creates a result writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteResults writes the replication-level result table.
func (w *Writer) WriteResults(path string, table *study.ResultTable) error {
	rows := make([][]string, 0, table.Len())
	for _, r := range table.Rows {
		rows = append(rows, []string{
			strconv.Itoa(r.Replication),
			strconv.Itoa(r.SampleSize),
			r.Location.String(),
			strconv.Itoa(r.Cutpoint),
			r.Mechanism.String(),
			fToStr(r.Rate, 2),
			r.Method.String(),
			ariToStr(r.ARI),
		})
	}
	return writeTable(path, "results", ResultHeaders, rows)
}

// WriteSummary writes the aggregated per-condition method comparison.
func (w *Writer) WriteSummary(path string, summaries []study.MethodSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.SampleSize),
			s.Location.String(),
			s.Mechanism.String(),
			fToStr(s.Rate, 2),
			s.Method.String(),
			strconv.Itoa(s.Replications),
			strconv.Itoa(s.Failures),
			ariToStr(s.MeanARI),
			ariToStr(s.SDARI),
		})
	}
	return writeTable(path, "summary", SummaryHeaders, rows)
}

// writeTable renders one header plus data rows, as CSV or as a single-sheet
// workbook depending on the extension.
func writeTable(path, sheet string, headers []string, rows [][]string) error {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return writeCSV(path, headers, rows)
	}
	return writeXLSX(path, sheet, headers, rows)
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeXLSX(path, sheet string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		rowIdx := r + 2
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func ariToStr(v float64) string {
	if math.IsNaN(v) {
		return missingToken
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}

// SummaryPath derives the summary artifact's path from the results path:
// semtrees_results.xlsx becomes semtrees_results_summary.xlsx.
func SummaryPath(resultsPath string) string {
	ext := filepath.Ext(resultsPath)
	base := strings.TrimSuffix(resultsPath, ext)
	return fmt.Sprintf("%s_summary%s", base, ext)
}
