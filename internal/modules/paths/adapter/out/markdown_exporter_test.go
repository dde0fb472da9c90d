package out

import (
	"context"
	"os"
	"strings"
	"testing"

	"pathlight/internal/modules/paths/domain"
)

func exportSample(t *testing.T, exporter *MarkdownExporter, path domain.LearningPath) string {
	t.Helper()
	filePath, err := exporter.Export(context.Background(), path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	return filePath
}

func samplePathForExport() domain.LearningPath {
	return domain.LearningPath{
		ID:    "abcd1234-0000",
		Topic: "Distributed Systems",
		Milestones: []domain.Milestone{
			{Title: "Consensus", Estimate: domain.Estimate{Value: 3, Unit: domain.EstimateWeeks}},
			{Title: "Replication"},
		},
		Completed: map[int]bool{0: true},
	}
}

func TestExportWritesFrontmatterAndMilestones(t *testing.T) {
	t.Parallel()

	exporter := NewMarkdownExporter(t.TempDir())
	filePath := exportSample(t, exporter, samplePathForExport())

	raw, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	content := string(raw)
	if !strings.HasPrefix(content, "---\n") {
		t.Fatal("export missing frontmatter header")
	}
	if !strings.Contains(content, "topic: Distributed Systems") {
		t.Fatalf("frontmatter missing topic:\n%s", content)
	}
	if !strings.Contains(content, "- [x] Consensus (3 weeks)") {
		t.Fatalf("milestone list missing completed entry:\n%s", content)
	}
	if !strings.Contains(content, "- [ ] Replication") {
		t.Fatalf("milestone list missing open entry:\n%s", content)
	}
	if !strings.HasSuffix(filePath, "distributed-systems-abcd1234.md") {
		t.Fatalf("file path = %q, want the topic slug with an id suffix", filePath)
	}
}

func TestReExportPreservesNotesOutsideManagedBlock(t *testing.T) {
	t.Parallel()

	exporter := NewMarkdownExporter(t.TempDir())
	path := samplePathForExport()
	filePath := exportSample(t, exporter, path)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	edited := strings.Replace(string(raw), "# Distributed Systems\n", "# Distributed Systems\n\nMy own study notes.\n", 1)
	if err := os.WriteFile(filePath, []byte(edited), 0o644); err != nil {
		t.Fatalf("write edited export: %v", err)
	}

	path.Completed[1] = true
	again := exportSample(t, exporter, path)
	if again != filePath {
		t.Fatalf("re-export path = %q, want %q", again, filePath)
	}

	raw, err = os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read re-export: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "My own study notes.") {
		t.Fatalf("user notes lost on re-export:\n%s", content)
	}
	if !strings.Contains(content, "- [x] Replication") {
		t.Fatalf("managed block not refreshed:\n%s", content)
	}
	if strings.Count(content, "## Milestones") != 1 {
		t.Fatalf("managed block duplicated:\n%s", content)
	}
}
