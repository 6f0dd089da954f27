package excel

import (
	"strconv"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// WriteDataset renders one simulated panel with its planted subgroup
// labels, for inspection or for feeding external tooling. Missing cells
// are written as the NA token.
func (w *Writer) WriteDataset(path string, data *panel.Dataset, truth panel.Labeling) error {
	if truth.Len() != data.N() {
		return core.NewShapeError(data.N(), panel.NumColumns, truth.Len(), panel.NumColumns)
	}

	headers := append(append([]string{}, panel.ColumnNames[:]...), "subgroup")
	rows := make([][]string, data.N())
	for i := 0; i < data.N(); i++ {
		row := make([]string, 0, len(headers))
		for c := 0; c < panel.NumColumns; c++ {
			if data.IsMissing(i, c) {
				row = append(row, missingToken)
			} else {
				row = append(row, strconv.FormatFloat(data.At(i, c), 'f', 6, 64))
			}
		}
		row = append(row, strconv.Itoa(truth.At(i)))
		rows[i] = row
	}
	return writeTable(path, "data", headers, rows)
}
