package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	StudyID   ID
	CellID    ID
	DatasetID ID
)

// String conversions for domain IDs
func (id StudyID) String() string   { return ID(id).String() }
func (id CellID) String() string    { return ID(id).String() }
func (id DatasetID) String() string { return ID(id).String() }

// ParseStudyID parses a string into StudyID
func ParseStudyID(s string) (StudyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("study ID cannot be empty")
	}
	return StudyID(s), nil
}

// ParseCellID parses a string into CellID
func ParseCellID(s string) (CellID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("cell ID cannot be empty")
	}
	return CellID(s), nil
}

// ParseDatasetID parses a string into DatasetID
func ParseDatasetID(s string) (DatasetID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	return DatasetID(s), nil
}

// Artifact represents any output of the system
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts
type ArtifactKind string

const (
	// ArtifactStudyManifest captures audit metadata for a full study run
	// (grid, replication count, seed, fingerprint).
	ArtifactStudyManifest ArtifactKind = "study_manifest"
	// ArtifactResultTable is the flat replication-level result set.
	ArtifactResultTable ArtifactKind = "result_table"
	// ArtifactMethodSummary is the aggregated per-condition method ranking.
	ArtifactMethodSummary ArtifactKind = "method_summary"
	// ArtifactDataset is a generated or imputed panel written to disk.
	ArtifactDataset ArtifactKind = "dataset"
)
