package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"pathlight/internal/modules/paths/domain"
	pathsout "pathlight/internal/modules/paths/port/out"
	"pathlight/internal/platform/markdown"
)

const (
	milestonesStartMarker = "<!-- pathlight:milestones:start -->"
	milestonesEndMarker   = "<!-- pathlight:milestones:end -->"
)

// MarkdownExporter writes a path to a markdown document with YAML
// frontmatter. The milestone section sits between managed-block markers so
// a re-export refreshes it while notes the user added around it survive.
type MarkdownExporter struct {
	dir string
}

var _ pathsout.Exporter = (*MarkdownExporter)(nil)

func NewMarkdownExporter(dir string) *MarkdownExporter {
	return &MarkdownExporter{dir: dir}
}

func (e *MarkdownExporter) Export(ctx context.Context, path domain.LearningPath) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	filePath := filepath.Join(e.dir, fileName(path))

	body := ""
	if existing, err := os.ReadFile(filePath); err == nil {
		_, existingBody, splitErr := markdown.SplitFrontmatter(string(existing))
		if splitErr == nil {
			body = existingBody
		}
	}
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("# %s\n", path.Topic)
		if path.Description != "" {
			body += "\n" + path.Description + "\n"
		}
	}
	body = markdown.ReplaceManagedBlock(body, milestonesStartMarker, milestonesEndMarker, renderMilestones(path))

	meta := map[string]any{
		"topic":      path.Topic,
		"milestones": len(path.Milestones),
		"progress":   fmt.Sprintf("%.0f%%", path.Progress()*100),
	}
	if path.ID != "" {
		meta["path_id"] = path.ID
	}
	if !path.CreatedAt.IsZero() {
		meta["created"] = path.CreatedAt.UTC().Format(time.RFC3339)
	}

	doc, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filePath, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return filePath, nil
}

func renderMilestones(path domain.LearningPath) string {
	var b strings.Builder
	b.WriteString("## Milestones\n")
	for i, m := range path.Milestones {
		mark := " "
		if path.MilestoneDone(i) {
			mark = "x"
		}
		fmt.Fprintf(&b, "\n- [%s] %s", mark, m.Title)
		if !m.Estimate.IsZero() {
			fmt.Fprintf(&b, " (%s)", m.Estimate)
		}
		if m.Description != "" {
			fmt.Fprintf(&b, "\n  %s", m.Description)
		}
		for _, r := range m.Resources {
			if r.URL != "" {
				fmt.Fprintf(&b, "\n  - [%s](%s)", r.Title, r.URL)
			} else {
				fmt.Fprintf(&b, "\n  - %s", r.Title)
			}
		}
	}
	return b.String()
}

// fileName derives a stable slug from the topic so repeated exports of the
// same path land on the same file.
func fileName(path domain.LearningPath) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(path.Topic) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "learning-path"
	}
	if path.ID != "" && len(path.ID) >= 8 {
		slug += "-" + path.ID[:8]
	}
	return slug + ".md"
}
