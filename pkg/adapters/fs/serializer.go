package fs

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/dossier/pkg/core"
)

// yamlFrontMatter decodes "---" blocks with yaml.v3 so parsed metadata uses
// string keys throughout.
var yamlFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// parse reads a markdown document with optional YAML front-matter.
func parse(r io.Reader) (*core.Document, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(r, &meta, yamlFrontMatter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	if meta == nil {
		meta = make(core.Metadata)
	}

	content := strings.TrimPrefix(string(body), "\r\n")
	content = strings.TrimPrefix(content, "\n")

	return &core.Document{
		Content:  content,
		Metadata: meta,
	}, nil
}

// serialize renders a document as YAML front-matter followed by its body.
func serialize(doc core.Document) ([]byte, error) {
	var buf bytes.Buffer
	if len(doc.Metadata) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(doc.Metadata)); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}
