package study

import (
	"fmt"
	"strings"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
)

// Method identifies a missing-data strategy under comparison.
type Method string

const (
	// MethodIgnore fits the model directly on incomplete data (FIML).
	MethodIgnore Method = "ignore"
	// MethodMissForest imputes with iterative random forests.
	MethodMissForest Method = "missforest"
	// MethodKNN imputes with k-nearest-neighbour donors.
	MethodKNN Method = "knn"
	// MethodFAMD imputes with iterative regularized low-rank reconstruction.
	MethodFAMD Method = "famd"
	// MethodCART imputes with per-column decision trees and leaf donors.
	MethodCART Method = "cart"
)

// AllMethods returns every method in canonical comparison order.
func AllMethods() []Method {
	return []Method{MethodIgnore, MethodMissForest, MethodKNN, MethodFAMD, MethodCART}
}

// ParseMethod parses a method name (case-insensitive).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "none", "fiml":
		return MethodIgnore, nil
	case "missforest", "forest":
		return MethodMissForest, nil
	case "knn":
		return MethodKNN, nil
	case "famd":
		return MethodFAMD, nil
	case "cart":
		return MethodCART, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrMethodNotFound, s)
	}
}

// String returns the canonical method name.
func (m Method) String() string {
	return string(m)
}

// Rank returns the method's position in canonical order, or -1 if unknown.
func (m Method) Rank() int {
	for i, known := range AllMethods() {
		if m == known {
			return i
		}
	}
	return -1
}
