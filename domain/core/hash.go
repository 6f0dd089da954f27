package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	StudyFingerprint Hash
	DatasetHash      Hash
	CodeVersion      Hash
)

// Constructors
func NewStudyFingerprint(data []byte) StudyFingerprint { return StudyFingerprint(NewHash(data)) }
func NewDatasetHash(data []byte) DatasetHash           { return DatasetHash(NewHash(data)) }
func NewCodeVersion(data []byte) CodeVersion           { return CodeVersion(NewHash(data)) }

// String conversions
func (h StudyFingerprint) String() string { return Hash(h).String() }
func (h DatasetHash) String() string      { return Hash(h).String() }
func (h CodeVersion) String() string      { return Hash(h).String() }

// DeriveSeed maps an ordered list of canonical "key=value" parts to a
// 64-bit stream seed. Parts are joined with '|' and hashed, so any change
// to the pipeline coordinates yields an unrelated stream while identical
// coordinates always reproduce the same one.
func DeriveSeed(parts ...string) uint64 {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return binary.BigEndian.Uint64(sum[:8])
}

// ComputeStudyFingerprint hashes the canonical description of a study
// configuration. Map entries are folded in sorted key order so the
// fingerprint is independent of iteration order.
func ComputeStudyFingerprint(fields map[string]interface{}) StudyFingerprint {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", fields[key]))
	}

	return NewStudyFingerprint([]byte(data.String()))
}

// ComputeDatasetHash fingerprints a rendered dataset for audit trails.
func ComputeDatasetHash(columns []string, cells []float64) DatasetHash {
	var data strings.Builder
	for _, c := range columns {
		data.WriteString(c)
		data.WriteString(",")
	}
	for _, v := range cells {
		data.WriteString(fmt.Sprintf("%x|", v))
	}
	return NewDatasetHash([]byte(data.String()))
}
