package benchmarks

import (
	"testing"

	"github.com/soniclabs/beamkit/cmd"
	"github.com/soniclabs/beamkit/internal/catalog"
	"github.com/soniclabs/beamkit/internal/restrict"
)

// --- Catalog benchmarks ---

func BenchmarkCatalogBuild(b *testing.B) {
	root := cmd.NewRootCommand()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		catalog.FromCommand(root)
	}
}

func BenchmarkCatalogResolve(b *testing.B) {
	cat := catalog.FromCommand(cmd.NewRootCommand())
	tokens := []string{"channels", "publish", "updates", "hello"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, ok := cat.Resolve(tokens); !ok {
			b.Fatal("resolve failed")
		}
	}
}

// --- Restriction benchmarks ---

func BenchmarkPolicyIsRestricted(b *testing.B) {
	policy, err := restrict.Load()
	if err != nil {
		b.Fatal(err)
	}
	mode := restrict.Mode{Hosted: true, Anonymous: true}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		policy.IsRestricted("channels:publish", mode)
	}
}

func BenchmarkPolicyFilter(b *testing.B) {
	policy, err := restrict.Load()
	if err != nil {
		b.Fatal(err)
	}
	cat := catalog.FromCommand(cmd.NewRootCommand())
	names := cat.TopLevel()
	mode := restrict.Mode{Hosted: true}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		policy.Filter(names, "", mode)
	}
}
