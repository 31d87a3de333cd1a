package knowledge

import (
	"regexp"
	"strings"
)

// ParsedField is one (name, value) pair a parser pulled out of raw text.
type ParsedField struct {
	Name  string
	Value string
}

// FieldParser extracts structured fields from a document's raw text.
// Parsing quality is the collaborator's concern; the facade only plumbs
// its output into the observation log.
type FieldParser interface {
	Parse(text string) []ParsedField
}

// labeledFields are the user-profile field labels the reference parser
// understands, mapped to canonical field names.
var labeledFields = map[string]string{
	"first name":  "first_name",
	"first_name":  "first_name",
	"middle name": "middle_name",
	"middle_name": "middle_name",
	"last name":   "last_name",
	"last_name":   "last_name",
	"email":       "email",
	"phone":       "phone",
	"address":     "address",
	"city":        "city",
	"state":       "state",
	"zip":         "zip",
	"zip code":    "zip",
	"ssn":         "ssn",
}

var (
	labeledLineRe = regexp.MustCompile(`(?im)^\s*([a-z_ ]+?)\s*[:=]\s*(\S.*?)\s*$`)
	emailRe       = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	ssnRe         = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phoneRe       = regexp.MustCompile(`\b(?:\+?1[-. ]?)?\(?\d{3}\)?[-. ]\d{3}[-. ]\d{4}\b`)
)

// RegexParser is the reference FieldParser: labeled "name: value" lines for
// the user-profile schema, plus bare-pattern matches for email, phone, and
// ssn. First match per field wins; labeled lines take precedence over bare
// patterns.
type RegexParser struct{}

// NewRegexParser creates the reference parser.
func NewRegexParser() *RegexParser { return &RegexParser{} }

// Parse implements FieldParser.
func (p *RegexParser) Parse(text string) []ParsedField {
	seen := make(map[string]bool)
	var parsed []ParsedField

	add := func(name, value string) {
		value = strings.TrimSpace(value)
		if value == "" || seen[name] {
			return
		}
		seen[name] = true
		parsed = append(parsed, ParsedField{Name: name, Value: value})
	}

	for _, m := range labeledLineRe.FindAllStringSubmatch(text, -1) {
		label := strings.ToLower(strings.TrimSpace(m[1]))
		if name, ok := labeledFields[label]; ok {
			add(name, m[2])
		}
	}

	if m := emailRe.FindString(text); m != "" {
		add("email", m)
	}
	if m := ssnRe.FindString(text); m != "" {
		add("ssn", m)
	}
	if m := phoneRe.FindString(text); m != "" {
		add("phone", m)
	}

	return parsed
}
