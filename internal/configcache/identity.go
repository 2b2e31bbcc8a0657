package configcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Inputs are the run parameters that participate in the configuration
// identity. Anything run-specific (timestamps, pids, uuids) is deliberately
// excluded so independent drivers over the same project converge on the
// same hash.
type Inputs struct {
	SourceDir    string          `json:"source_dir"`
	FeatureFlags map[string]bool `json:"feature_flags"`
	PackageName  string          `json:"package_name"`
	Environment  string          `json:"environment"`
	Suffix       string          `json:"suffix,omitempty"`
}

// Identity is the stable content hash identifying a transformation run's
// inputs.
type Identity struct {
	Hash        string
	SourceDir   string
	PackageName string
	Environment string
}

// ComputeIdentity derives the identity hash from normalized, sorted
// inputs. The same inputs always produce the same hash.
func ComputeIdentity(inputs Inputs) Identity {
	sourceDir := inputs.SourceDir
	if abs, err := filepath.Abs(sourceDir); err == nil {
		sourceDir = abs
	}
	sourceDir = filepath.ToSlash(filepath.Clean(sourceDir))

	flagNames := make([]string, 0, len(inputs.FeatureFlags))
	for name := range inputs.FeatureFlags {
		flagNames = append(flagNames, name)
	}
	sort.Strings(flagNames)

	var b strings.Builder
	fmt.Fprintf(&b, "source=%s\n", sourceDir)
	fmt.Fprintf(&b, "package=%s\n", inputs.PackageName)
	fmt.Fprintf(&b, "environment=%s\n", inputs.Environment)
	for _, name := range flagNames {
		fmt.Fprintf(&b, "flag.%s=%t\n", name, inputs.FeatureFlags[name])
	}
	if inputs.Suffix != "" {
		fmt.Fprintf(&b, "suffix=%s\n", inputs.Suffix)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return Identity{
		Hash:        hex.EncodeToString(sum[:])[:16],
		SourceDir:   sourceDir,
		PackageName: inputs.PackageName,
		Environment: inputs.Environment,
	}
}
