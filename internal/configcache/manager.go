package configcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/renderwire/renderwire/internal/models"
)

// cacheDirName is the subdirectory under the output directory holding
// persisted artifact sets, one per configuration hash.
const cacheDirName = ".renderwire/cache"

// Manifest records what was generated under a hash. The timestamp is
// bookkeeping for retention ordering only and never feeds the identity.
type Manifest struct {
	Hash          string            `json:"hash"`
	Inputs        Inputs            `json:"inputs"`
	Artifacts     map[string]string `json:"artifacts"` // original path -> stored file name
	ArtifactCount int               `json:"artifact_count"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// ArtifactSet is a reusable set of generated sources keyed by their
// original file paths.
type ArtifactSet struct {
	Hash  string
	Files map[string]string // original path -> content
}

// Manager persists and reuses generated artifact sets keyed by
// configuration hash. Concurrent independent drivers are safe because
// identical inputs generate byte-identical artifacts, so last-writer-wins
// needs no locking.
type Manager struct {
	baseDir string
}

// NewManager creates a manager rooted under the given output directory.
func NewManager(outputDir string) *Manager {
	return &Manager{baseDir: filepath.Join(outputDir, filepath.FromSlash(cacheDirName))}
}

// FindReusable loads the artifact set persisted under hash, if it exists
// and passes the structural completeness check. Any corruption (missing
// manifest, unreadable JSON, missing or empty artifact files) is treated
// as a cache miss, never as an error.
func (m *Manager) FindReusable(hash string) (*ArtifactSet, bool) {
	manifest, ok := m.readManifest(hash)
	if !ok {
		return nil, false
	}

	set := &ArtifactSet{Hash: hash, Files: make(map[string]string, len(manifest.Artifacts))}
	for originalPath, storedName := range manifest.Artifacts {
		content, err := os.ReadFile(filepath.Join(m.hashDir(hash), storedName))
		if err != nil || len(content) == 0 {
			return nil, false
		}
		set.Files[originalPath] = string(content)
	}
	if len(set.Files) != manifest.ArtifactCount {
		return nil, false
	}
	return set, true
}

// Persist writes an artifact set plus its manifest under hash, replacing
// any previous content for that hash.
func (m *Manager) Persist(hash string, artifacts map[string]string, inputs Inputs) error {
	dir := m.hashDir(hash)
	if err := os.RemoveAll(dir); err != nil {
		return m.fsError("failed to clear previous artifacts", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return m.fsError("failed to create artifact directory", dir, err)
	}

	manifest := Manifest{
		Hash:          hash,
		Inputs:        inputs,
		Artifacts:     make(map[string]string, len(artifacts)),
		ArtifactCount: len(artifacts),
		GeneratedAt:   time.Now().UTC(),
	}

	for originalPath, content := range artifacts {
		storedName := mangleArtifactName(originalPath)
		manifest.Artifacts[originalPath] = storedName
		if err := os.WriteFile(filepath.Join(dir, storedName), []byte(content), 0644); err != nil {
			return m.fsError("failed to write artifact", originalPath, err)
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(m.manifestPath(hash), data, 0644); err != nil {
		return m.fsError("failed to write manifest", m.manifestPath(hash), err)
	}
	return nil
}

// Clean retains only the keepCount most recently generated artifact sets.
// The active hash is never deleted, regardless of its age.
func (m *Manager) Clean(keepCount int, activeHash string) error {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return m.fsError("failed to list cache directory", m.baseDir, err)
	}

	type aged struct {
		hash        string
		generatedAt time.Time
	}
	var sets []aged
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, ok := m.readManifest(entry.Name())
		if !ok {
			// Corrupt leftovers are removed outright.
			_ = os.RemoveAll(filepath.Join(m.baseDir, entry.Name()))
			continue
		}
		sets = append(sets, aged{hash: manifest.Hash, generatedAt: manifest.GeneratedAt})
	}

	sort.Slice(sets, func(i, j int) bool {
		return sets[i].generatedAt.After(sets[j].generatedAt)
	})

	for i, set := range sets {
		if i < keepCount || set.hash == activeHash {
			continue
		}
		if err := os.RemoveAll(m.hashDir(set.hash)); err != nil {
			return m.fsError("failed to remove stale artifacts", set.hash, err)
		}
	}
	return nil
}

// BaseDir returns the cache root, used for logging.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

func (m *Manager) hashDir(hash string) string {
	return filepath.Join(m.baseDir, hash)
}

func (m *Manager) manifestPath(hash string) string {
	return filepath.Join(m.hashDir(hash), "manifest.json")
}

func (m *Manager) readManifest(hash string) (*Manifest, bool) {
	data, err := os.ReadFile(m.manifestPath(hash))
	if err != nil {
		return nil, false
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, false
	}
	if manifest.Hash != hash {
		return nil, false
	}
	return &manifest, true
}

func (m *Manager) fsError(message, path string, cause error) error {
	return &models.RewriteError{
		Type:    models.ErrorTypeFileSystem,
		File:    path,
		Message: message,
		Cause:   cause,
	}
}

// mangleArtifactName flattens an original file path into a single stored
// file name.
func mangleArtifactName(originalPath string) string {
	name := filepath.ToSlash(originalPath)
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, "/", "__")
	name = strings.ReplaceAll(name, ":", "_")
	return name
}
