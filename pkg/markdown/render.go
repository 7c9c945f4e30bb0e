// Package markdown turns vault markdown into display HTML and hands the raw
// text to the clipboard or to a file.
//
// Rendering is a fixed sequence of regular-expression substitutions over
// the whole string, not a parser. Nothing is escaped: the output must only
// be shown for markdown the user authored or the application generated.
package markdown

// Render converts md to an HTML fragment. It never fails; malformed input
// yields malformed HTML. Rendering its own output again does not give the
// same result.
func Render(md string) string {
	out := md
	for _, r := range rules {
		out = r.apply(out)
	}
	out = "<p>" + out + "</p>"
	return tableRunPattern.ReplaceAllStringFunc(out, wrapTable)
}
