package configcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseInputs() Inputs {
	return Inputs{
		SourceDir: "/project/src",
		FeatureFlags: map[string]bool{
			"functional_di":        true,
			"interface_resolution": true,
			"debug_files":          false,
		},
		PackageName: "github.com/example/app",
		Environment: "development",
	}
}

func TestComputeIdentityDeterministic(t *testing.T) {
	first := ComputeIdentity(baseInputs())
	second := ComputeIdentity(baseInputs())
	assert.Equal(t, first.Hash, second.Hash)
	assert.Len(t, first.Hash, 16)
}

func TestComputeIdentityFlagOrderIrrelevant(t *testing.T) {
	a := baseInputs()
	b := Inputs{
		SourceDir: a.SourceDir,
		FeatureFlags: map[string]bool{
			"debug_files":          false,
			"interface_resolution": true,
			"functional_di":        true,
		},
		PackageName: a.PackageName,
		Environment: a.Environment,
	}
	assert.Equal(t, ComputeIdentity(a).Hash, ComputeIdentity(b).Hash)
}

func TestComputeIdentitySensitivity(t *testing.T) {
	base := ComputeIdentity(baseInputs())

	changedEnv := baseInputs()
	changedEnv.Environment = "production"
	assert.NotEqual(t, base.Hash, ComputeIdentity(changedEnv).Hash)

	changedFlag := baseInputs()
	changedFlag.FeatureFlags["debug_files"] = true
	assert.NotEqual(t, base.Hash, ComputeIdentity(changedFlag).Hash)

	changedPackage := baseInputs()
	changedPackage.PackageName = "github.com/example/other"
	assert.NotEqual(t, base.Hash, ComputeIdentity(changedPackage).Hash)

	changedDir := baseInputs()
	changedDir.SourceDir = "/project/other"
	assert.NotEqual(t, base.Hash, ComputeIdentity(changedDir).Hash)

	suffixed := baseInputs()
	suffixed.Suffix = "experiment"
	assert.NotEqual(t, base.Hash, ComputeIdentity(suffixed).Hash)
}

func TestComputeIdentityNormalizesPath(t *testing.T) {
	a := baseInputs()
	a.SourceDir = "/project/src"
	b := baseInputs()
	b.SourceDir = "/project/./src/"
	assert.Equal(t, ComputeIdentity(a).Hash, ComputeIdentity(b).Hash)
}
