package imputers

import (
	"fmt"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
	"github.com/Jincheol-Lim/SEMtrees/domain/study"
	"github.com/Jincheol-Lim/SEMtrees/ports"
)

// ForMethod returns the imputer implementing one strategy.
func ForMethod(m study.Method) (ports.Imputer, error) {
	switch m {
	case study.MethodIgnore:
		return NewIgnoreImputer(), nil
	case study.MethodMissForest:
		return NewMissForestImputer(), nil
	case study.MethodKNN:
		return NewKNNImputer(), nil
	case study.MethodFAMD:
		return NewFAMDImputer(), nil
	case study.MethodCART:
		return NewCARTImputer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrMethodNotFound, m)
	}
}

// ForMethods resolves a method list in order.
func ForMethods(methods []study.Method) ([]ports.Imputer, error) {
	out := make([]ports.Imputer, 0, len(methods))
	for _, m := range methods {
		imp, err := ForMethod(m)
		if err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	return out, nil
}
