package study

import (
	"fmt"
	"strings"

	"github.com/Jincheol-Lim/SEMtrees/domain/core"
)

// Manifest is the audit record of one study run. It must exist before any
// result rows so a finished table can always be traced back to the exact
// design and seed that produced it.
type Manifest struct {
	StudyID      core.StudyID          `json:"study_id"`
	Seed         int64                 `json:"seed"`
	Replications int                   `json:"replications"`
	Conditions   int                   `json:"conditions"`
	Methods      []Method              `json:"methods"`
	Covariate    string                `json:"covariate"`
	Fingerprint  core.StudyFingerprint `json:"fingerprint"`
	CodeVersion  string                `json:"code_version"`
	CreatedAt    core.Timestamp        `json:"created_at"`
}

// NewManifest creates a manifest for a validated configuration.
func NewManifest(cfg Config, codeVersion string) *Manifest {
	return &Manifest{
		StudyID:      core.StudyID(core.NewID()),
		Seed:         cfg.Seed,
		Replications: cfg.Replications,
		Conditions:   cfg.Grid.Size(),
		Methods:      append([]Method(nil), cfg.Methods...),
		Covariate:    cfg.Covariate.String(),
		Fingerprint:  computeFingerprint(cfg, codeVersion),
		CodeVersion:  codeVersion,
		CreatedAt:    core.Now(),
	}
}

// computeFingerprint folds the determinism-relevant configuration into a
// single hash. Workers are excluded: parallelism must not change results.
func computeFingerprint(cfg Config, codeVersion string) core.StudyFingerprint {
	methods := make([]string, len(cfg.Methods))
	for i, m := range cfg.Methods {
		methods[i] = m.String()
	}
	conds := cfg.Conditions()
	keys := make([]string, len(conds))
	for i, c := range conds {
		keys[i] = c.Key()
	}
	return core.ComputeStudyFingerprint(map[string]interface{}{
		"seed":         cfg.Seed,
		"replications": cfg.Replications,
		"grid":         strings.Join(keys, ";"),
		"methods":      strings.Join(methods, ","),
		"covariate":    cfg.Covariate.String(),
		"population":   fmt.Sprintf("%+v", cfg.Population),
		"alpha":        fmt.Sprintf("%.4f", cfg.Alpha),
		"null_draws":   cfg.NullDraws,
		"code":         codeVersion,
	})
}

// ToCoreArtifact converts to a core artifact for storage.
func (m *Manifest) ToCoreArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactStudyManifest,
		Payload:   m,
		CreatedAt: m.CreatedAt,
	}
}

// Validate checks if the manifest is complete.
func (m *Manifest) Validate() error {
	if core.ID(m.StudyID).IsEmpty() {
		return core.NewValidationError("study_manifest", "study_id cannot be empty")
	}
	if m.Replications < 1 {
		return core.NewValidationError("study_manifest", "replications must be positive")
	}
	if m.Conditions < 1 {
		return core.NewValidationError("study_manifest", "conditions must be positive")
	}
	if len(m.Methods) == 0 {
		return core.NewValidationError("study_manifest", "methods cannot be empty")
	}
	if m.Fingerprint == "" {
		return core.NewValidationError("study_manifest", "fingerprint cannot be empty")
	}
	return nil
}
