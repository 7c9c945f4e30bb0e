package markdown

import (
	"regexp"
	"strings"
)

// HeaderLabels marks a table row as a header row when any of its cells
// contains one of them.
var HeaderLabels = []string{
	"Field", "Value", "Property", "File", "Type",
	"Size", "Confidence", "Source", "Status", "Date",
}

// rule is one substitution step. Exactly one of replace or fn is used.
type rule struct {
	name    string
	pattern *regexp.Regexp
	replace string
	fn      func(match string) string
}

func (r rule) apply(s string) string {
	if r.fn != nil {
		return r.pattern.ReplaceAllStringFunc(s, r.fn)
	}
	return r.pattern.ReplaceAllString(s, r.replace)
}

var (
	frontMatterPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---(?:\n|\z)`)
	h3Pattern          = regexp.MustCompile(`(?m)^### (.+)$`)
	h2Pattern          = regexp.MustCompile(`(?m)^## (.+)$`)
	h1Pattern          = regexp.MustCompile(`(?m)^# (.+)$`)
	strongPattern      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	codePattern        = regexp.MustCompile("`([^`\n]+)`")
	wikiLinkPattern    = regexp.MustCompile(`\[\[(.+?)\]\]`)
	separatorPattern   = regexp.MustCompile(`(?m)^\|[ :|]*-[ \-:|]*\|?[ \t]*(?:\n|$)`)
	rowPattern         = regexp.MustCompile(`(?m)^\|(.*)\|[ \t]*$`)
	nestedItemPattern  = regexp.MustCompile(`(?m)^  [-*] (.+)$`)
	itemPattern        = regexp.MustCompile(`(?m)^[-*] (.+)$`)
	quotePattern       = regexp.MustCompile(`(?m)^> ?(.*)$`)
	rulePattern        = regexp.MustCompile(`(?m)^---[ \t]*$`)
	emPattern          = regexp.MustCompile(`\*([^*\n]+?)\*`)
	paragraphPattern   = regexp.MustCompile(`\n\n`)
	newlinePattern     = regexp.MustCompile(`\n`)
	tableRunPattern    = regexp.MustCompile(`(?:<tr>.*?</tr>(?:<br>)?)+`)
)

// rules is evaluated top to bottom; each step sees the output of the
// previous one.
var rules = []rule{
	{name: "frontmatter", pattern: frontMatterPattern, replace: `<div class="frontmatter">${1}</div>` + "\n"},
	{name: "h3", pattern: h3Pattern, replace: `<h3>${1}</h3>`},
	{name: "h2", pattern: h2Pattern, replace: `<h2>${1}</h2>`},
	{name: "h1", pattern: h1Pattern, replace: `<h1>${1}</h1>`},
	{name: "strong", pattern: strongPattern, replace: `<strong>${1}</strong>`},
	{name: "code", pattern: codePattern, replace: `<code>${1}</code>`},
	{name: "wikilink", pattern: wikiLinkPattern, replace: `<span class="wikilink">${1}</span>`},
	{name: "table-separator", pattern: separatorPattern, replace: ""},
	{name: "table-row", pattern: rowPattern, fn: renderRow},
	{name: "nested-item", pattern: nestedItemPattern, replace: `<li class="nested">${1}</li>`},
	{name: "item", pattern: itemPattern, replace: `<li>${1}</li>`},
	{name: "quote", pattern: quotePattern, replace: `<blockquote>${1}</blockquote>`},
	{name: "hr", pattern: rulePattern, replace: `<hr>`},
	{name: "em", pattern: emPattern, replace: `<em>${1}</em>`},
	{name: "paragraph", pattern: paragraphPattern, replace: `</p><p>`},
	{name: "newline", pattern: newlinePattern, replace: `<br>`},
}

func renderRow(line string) string {
	inner := strings.TrimSpace(line)
	inner = strings.TrimPrefix(inner, "|")
	inner = strings.TrimSuffix(inner, "|")
	cells := splitCells(inner)

	tag := "td"
	if isHeaderRow(cells) {
		tag = "th"
	}

	var b strings.Builder
	b.WriteString("<tr>")
	for _, cell := range cells {
		b.WriteString("<" + tag + ">")
		b.WriteString(strings.TrimSpace(cell))
		b.WriteString("</" + tag + ">")
	}
	b.WriteString("</tr>")
	return b.String()
}

// splitCells splits a row on unescaped pipes; `\|` stays in the cell as "|".
func splitCells(inner string) []string {
	var (
		cells []string
		cur   strings.Builder
	)
	for i := 0; i < len(inner); i++ {
		switch {
		case inner[i] == '\\' && i+1 < len(inner) && inner[i+1] == '|':
			cur.WriteByte('|')
			i++
		case inner[i] == '|':
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(inner[i])
		}
	}
	return append(cells, cur.String())
}

func isHeaderRow(cells []string) bool {
	for _, cell := range cells {
		for _, label := range HeaderLabels {
			if strings.Contains(cell, label) {
				return true
			}
		}
	}
	return false
}

func wrapTable(run string) string {
	return `<table class="md-table">` + strings.ReplaceAll(run, "<br>", "") + `</table>`
}
