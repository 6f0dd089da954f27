package imputers

import (
	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/panel"
)

// randomForest bags regression trees grown on bootstrap samples with
// per-node predictor sampling.
type randomForest struct {
	trees []*regressionTree
}

// growForest fits ntree bagged trees. Bootstrap draws and predictor
// sampling both come from the supplied stream.
func growForest(working *panel.Dataset, rows []int, target []float64, features []int, control treeControl, ntree int, rng *rand.Rand) *randomForest {
	f := &randomForest{trees: make([]*regressionTree, 0, ntree)}
	boot := make([]int, len(rows))
	for b := 0; b < ntree; b++ {
		for i := range boot {
			boot[i] = rows[rng.Intn(len(rows))]
		}
		sample := make([]int, len(boot))
		copy(sample, boot)
		f.trees = append(f.trees, growTree(working, sample, target, features, control, rng))
	}
	return f
}

// predict averages the per-tree leaf means for a row.
func (f *randomForest) predict(working *panel.Dataset, row int) float64 {
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(working, row)
	}
	return sum / float64(len(f.trees))
}
