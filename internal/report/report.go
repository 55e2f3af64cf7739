// internal/report/report.go
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/solatis/namekeeper/internal/naming"
)

/*
 * Violation rendering.
 *
 * Turns naming.Violation into the human-readable messages used by the lint
 * command and the policy service, and writes located diagnostics as text or
 * JSON.
 *
 * Message templates, by stage:
 *   leading/trailing underscore, forbidden:
 *     {Type} name `{name}` must not have a {position} underscore.
 *   leading/trailing underscore, required:
 *     {Type} name `{name}` must have {one|two} {position} underscore(s).
 *   prefix/suffix:
 *     {Type} name `{name}` must have one of the following {position}es: {affixes}
 *   custom:
 *     {Type} name `{name}` must {match|not match} the RegExp: {regex}
 *   format:
 *     {Type} name `{name}` must match one of the following formats: {formats}
 *     {Type} name `{name}` trimmed as `{processed}` must match ... (when trimmed)
 *
 * {Type} is the category name split on case humps and capitalized,
 * e.g. classProperty -> "Class Property".
 */

// DisplayName renders a category as words: "objectLiteralMethod" -> "Object Literal Method".
func DisplayName(c naming.Category) string {
	name := c.String()
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Message renders the violation as a single sentence.
func Message(v *naming.Violation) string {
	typ := DisplayName(v.Category)

	switch v.Stage {
	case naming.StageLeadingUnderscore, naming.StageTrailingUnderscore:
		if v.Missing {
			count := "one"
			if v.Count == 2 {
				count = "two"
			}
			return fmt.Sprintf("%s name `%s` must have %s %s underscore(s).", typ, v.OriginalName, count, v.Position)
		}
		return fmt.Sprintf("%s name `%s` must not have a %s underscore.", typ, v.OriginalName, v.Position)

	case naming.StagePrefix, naming.StageSuffix:
		position := "prefix"
		if v.Stage == naming.StageSuffix {
			position = "suffix"
		}
		return fmt.Sprintf("%s name `%s` must have one of the following %ses: %s",
			typ, v.OriginalName, position, strings.Join(v.Affixes, ", "))

	case naming.StageCustom:
		verb := "match"
		if !v.RegexMatch {
			verb = "not match"
		}
		return fmt.Sprintf("%s name `%s` must %s the RegExp: %s", typ, v.OriginalName, verb, v.Regex)

	case naming.StageFormat:
		formats := make([]string, len(v.Formats))
		for i, f := range v.Formats {
			formats[i] = f.String()
		}
		if v.Trimmed {
			return fmt.Sprintf("%s name `%s` trimmed as `%s` must match one of the following formats: %s",
				typ, v.OriginalName, v.ProcessedName, strings.Join(formats, ", "))
		}
		return fmt.Sprintf("%s name `%s` must match one of the following formats: %s",
			typ, v.OriginalName, strings.Join(formats, ", "))
	}

	return fmt.Sprintf("%s name `%s` violates naming rule %d", typ, v.OriginalName, v.Rule)
}

// MessageID is the stable identifier for the kind of violation.
func MessageID(v *naming.Violation) string {
	switch v.Stage {
	case naming.StageLeadingUnderscore, naming.StageTrailingUnderscore:
		if v.Missing {
			return "missingUnderscore"
		}
		return "unexpectedUnderscore"
	case naming.StagePrefix, naming.StageSuffix:
		return "missingAffix"
	case naming.StageCustom:
		return "satisfyCustom"
	case naming.StageFormat:
		if v.Trimmed {
			return "doesNotMatchFormatTrimmed"
		}
		return "doesNotMatchFormat"
	}
	return "unknown"
}

// Diagnostic is a located, rendered violation.
type Diagnostic struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Category  string `json:"category"`
	Name      string `json:"name"`
	Stage     string `json:"stage"`
	MessageID string `json:"messageId"`
	Rule      int    `json:"rule"`
	Message   string `json:"message"`
}

// NewDiagnostic renders v at the given location. Line and column are 1-based.
func NewDiagnostic(path string, line, column int, v *naming.Violation) Diagnostic {
	return Diagnostic{
		Path:      path,
		Line:      line,
		Column:    column,
		Category:  v.Category.String(),
		Name:      v.OriginalName,
		Stage:     v.Stage.String(),
		MessageID: MessageID(v),
		Rule:      v.Rule,
		Message:   Message(v),
	}
}

// Sort orders diagnostics by path, line then column.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// WriteText writes one "path:line:col: message (messageId)" line per diagnostic.
func WriteText(w io.Writer, diags []Diagnostic) error {
	for _, d := range diags {
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s (%s)\n", d.Path, d.Line, d.Column, d.Message, d.MessageID); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes diagnostics as an indented JSON array; an empty set is "[]".
func WriteJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
