package models

// TransformationResult captures the outcome for one source file that
// contained at least one eligible component function.
type TransformationResult struct {
	FilePath                  string
	RewrittenSource           string
	ResolvedDependencyCount   int
	UnresolvedDependencyCount int
}

// SkippedFile records a file the pipeline could not process, with the
// reason it was skipped. Skips are advisory, never fatal.
type SkippedFile struct {
	FilePath string `json:"file_path"`
	Reason   string `json:"reason"`
}

// Summary aggregates a full pipeline run for logging and introspection.
type Summary struct {
	Count                  int           `json:"count"`
	TransformedFiles       []string      `json:"transformed_files"`
	SkippedFiles           []SkippedFile `json:"skipped_files,omitempty"`
	ResolvedDependencies   int           `json:"resolved_dependencies"`
	UnresolvedDependencies int           `json:"unresolved_dependencies"`
	ReusedFromCache        bool          `json:"reused_from_cache"`
	ConfigHash             string        `json:"config_hash"`
}

// ValidationResult is the advisory project-wide report produced by the
// interface resolver. It never blocks transformation.
type ValidationResult struct {
	IsValid                  bool
	MissingImplementations   []string
	AmbiguousImplementations []AmbiguousImplementation
	CircularDependencies     [][]string
}

// AmbiguousImplementation records an abstract signature with multiple
// competing registrations. The winner is the deterministic tie-break
// choice; the losers are listed for reporting.
type AmbiguousImplementation struct {
	AbstractTypeSignature string
	Winner                string
	Competitors           []string
}
