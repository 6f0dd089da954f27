package growth

// Leaf is one terminal node of a fitted growth tree.
type Leaf struct {
	Params ModelParams `json:"params"`
	N      int         `json:"n"`
	LogLik float64     `json:"loglik"`
}

// Tree is the outcome of one score-based partitioning pass: either a single
// root leaf, or one split of the covariate into two child models.
type Tree struct {
	Split      bool    `json:"split"`
	SplitValue float64 `json:"split_value"` // rows with covariate <= SplitValue go left
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"`

	Root  Leaf  `json:"root"`
	Left  *Leaf `json:"left,omitempty"`
	Right *Leaf `json:"right,omitempty"`
}

// Leaves returns the number of terminal nodes.
func (t *Tree) Leaves() int {
	if t.Split {
		return 2
	}
	return 1
}

// Assign maps each covariate value to a leaf index: 0 for the left (or
// only) leaf, 1 for the right.
func (t *Tree) Assign(covariate []float64) []int {
	labels := make([]int, len(covariate))
	if !t.Split {
		return labels
	}
	for i, v := range covariate {
		if v > t.SplitValue {
			labels[i] = 1
		}
	}
	return labels
}
