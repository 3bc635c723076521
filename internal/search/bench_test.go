package search

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Aman-CERP/memex/internal/index"
	"github.com/Aman-CERP/memex/internal/store"
)

var benchTopics = []string{
	"deployment", "ingestion", "billing", "onboarding", "latency", "postgres",
	"kubernetes", "roadmap", "hiring", "pricing", "incident", "migration",
}

var benchVerbs = []string{"reviewed", "debugged", "planned", "shipped", "discussed", "measured"}

// generateDailyNotes writes days of synthetic notes under dir, seeded for reproducibility.
func generateDailyNotes(b *testing.B, dir string, days int) {
	b.Helper()
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		b.Fatal(err)
	}
	for d := 0; d < days; d++ {
		var sb strings.Builder
		for s := 0; s < 4; s++ {
			topic := benchTopics[rng.Intn(len(benchTopics))]
			other := benchTopics[rng.Intn(len(benchTopics))]
			verb := benchVerbs[rng.Intn(len(benchVerbs))]
			fmt.Fprintf(&sb, "## %s %s\nWe %s the %s work and its impact on %s for the next sprint review.\n",
				strings.ToUpper(topic[:1])+topic[1:], verb, verb, topic, other)
		}
		name := start.AddDate(0, 0, d).Format("2006-01-02") + ".md"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(sb.String()), 0o644); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	root := b.TempDir()
	sources := index.Sources{
		DailyDir: filepath.Join(root, "memory"),
		ToolsDir: filepath.Join(root, "tools"),
		Location: time.UTC,
	}
	generateDailyNotes(b, sources.DailyDir, 365)

	collectors, err := sources.Collectors()
	if err != nil {
		b.Fatal(err)
	}
	artifact := filepath.Join(root, "tools", "index.gob")
	builder, err := index.NewBuilder(index.BuilderConfig{
		ArtifactPath: artifact,
		Vectorizer:   store.DefaultVectorizerConfig(),
	}, index.BuilderDependencies{Collectors: collectors})
	if err != nil {
		b.Fatal(err)
	}
	e, err := NewEngine(EngineConfig{ArtifactPath: artifact}, builder)
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	if _, err := e.Search(ctx, "warmup", Options{}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := benchTopics[i%len(benchTopics)] + " " + benchVerbs[i%len(benchVerbs)]
		if _, err := e.Search(ctx, q, Options{Limit: 10}); err != nil {
			b.Fatal(err)
		}
	}
}
