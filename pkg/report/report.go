// Package report builds the markdown export of an entity and its evidence.
package report

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/dossier/pkg/core"
	"github.com/aretw0/dossier/pkg/evidence"
	"github.com/aretw0/dossier/pkg/markdown"
)

// Folder is the vault folder reports are suggested under.
const Folder = "Reports"

type frontMatter struct {
	Type       core.EntityType `yaml:"type"`
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	URL        string          `yaml:"url,omitempty"`
	Confidence core.Confidence `yaml:"confidence,omitempty"`
	Tags       []string        `yaml:"tags,omitempty,flow"`
	Generated  string          `yaml:"generated"`
}

// FileName is the suggested export file name for an entity.
func FileName(entity core.Entity) string {
	return fmt.Sprintf("%s-%s.md", entity.Type, entity.ID)
}

// Build renders the entity report. Records are listed in the given order.
func Build(entity core.Entity, records []evidence.Record, now time.Time) (markdown.ExportResult, error) {
	if err := entity.Validate(); err != nil {
		return markdown.ExportResult{}, err
	}

	var b bytes.Buffer

	fm := frontMatter{
		Type:       entity.Type,
		ID:         entity.ID,
		Name:       entity.DisplayName(),
		URL:        entity.URL,
		Confidence: entity.Confidence,
		Tags:       entity.Tags,
		Generated:  now.UTC().Format(time.RFC3339),
	}
	b.WriteString("---\n")
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return markdown.ExportResult{}, fmt.Errorf("failed to encode front-matter: %w", err)
	}
	enc.Close()
	b.WriteString("---\n")

	fmt.Fprintf(&b, "# %s\n\n", entity.DisplayName())

	b.WriteString("| Field | Value |\n|---|---|\n")
	row(&b, "type", string(entity.Type))
	row(&b, "id", entity.ID)
	if entity.URL != "" {
		row(&b, "url", entity.URL)
	}
	if entity.Confidence != "" {
		row(&b, "confidence", string(entity.Confidence))
	}
	if len(entity.Tags) > 0 {
		row(&b, "tags", strings.Join(entity.Tags, ", "))
	}

	b.WriteString("\n## Evidence\n\n")
	if len(records) == 0 {
		b.WriteString("*No evidence attached.*\n")
	} else {
		b.WriteString("| File | Type | Size | Captured |\n|---|---|---|---|\n")
		for _, rec := range records {
			row(&b, "[["+rec.FilePath+"]]", rec.FileType, rec.Size(), rec.CapturedAt)
		}
	}

	if entity.Confidence != "" {
		fmt.Fprintf(&b, "\n> Confidence: %s\n", entity.Confidence)
	}

	name := FileName(entity)
	return markdown.ExportResult{
		Markdown: b.String(),
		FileName: name,
		FilePath: path.Join(Folder, entity.Type.Folder(), name),
	}, nil
}

func row(b *bytes.Buffer, cells ...string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
