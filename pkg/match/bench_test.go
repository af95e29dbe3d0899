package match

import (
	"context"
	"fmt"
	"testing"

	"github.com/bastiangx/termserve/pkg/relation"
)

// synthetic builds n distinct triples with shared classes and attributes.
func synthetic(n int) *relation.Relation {
	triples := make([]relation.Triple, 0, n)
	for i := 0; i < n; i++ {
		triples = append(triples, relation.NewTriple(
			fmt.Sprintf("Class%d", i%50),
			fmt.Sprintf("attr%d", i%20),
			fmt.Sprintf("Val-%d", i),
		))
	}
	return relation.New(triples)
}

func benchmarkComplete(b *testing.B, kind, raw string) {
	m, err := NewMatcher(kind, synthetic(20000))
	if err != nil {
		b.Fatal(err)
	}
	engine := NewEngine(m)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Complete(ctx, raw)
	}
}

func BenchmarkScanFree(b *testing.B)     { benchmarkComplete(b, KindScan, "Val-12") }
func BenchmarkTrieFree(b *testing.B)     { benchmarkComplete(b, KindTrie, "Val-12") }
func BenchmarkScanTwoFixed(b *testing.B) { benchmarkComplete(b, KindScan, "#Class7@attr7=Val-1") }
func BenchmarkTrieTwoFixed(b *testing.B) { benchmarkComplete(b, KindTrie, "#Class7@attr7=Val-1") }

func BenchmarkNewTrie(b *testing.B) {
	rel := synthetic(20000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewTrie(rel)
	}
}
