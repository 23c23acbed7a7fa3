package lexicon

// DefaultRules is a small stylesheet-like lexicon. Whitespace is kept, so
// patterns can match [Whitespace] explicitly.
var DefaultRules = []Rule{
	{Type: "Comment", Pattern: `/\*(?s:.*?)\*/`, Skip: true},
	{Type: "Whitespace", Pattern: `\s+`},
	{Type: "AtRule", Pattern: `@(?<name>[\w-]+)`, Value: "name"},
	{Type: "Variable", Pattern: `\$(?<name>[\w-]+)`, Value: "name"},
	{Type: "String", Pattern: `"(?<text>(?:[^"\\]|\\.)*)"`, Value: "text"},
	{Type: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Type: "Colon", Keyword: ":"},
	{Type: "Separator", Keyword: ";"},
	{Type: "Comma", Keyword: ","},
	{Type: "GroupOpen", Keyword: "{"},
	{Type: "GroupClose", Keyword: "}"},
	{Type: "ParenthesesOpen", Keyword: "("},
	{Type: "ParenthesesClose", Keyword: ")"},
	{Type: "Literal", Pattern: `[\w.#%!*+/>~=-]+`},
}

// Default returns the lexicon built from DefaultRules.
func Default() *Lexicon {
	l, err := New(DefaultRules)
	if err != nil {
		panic("lexicon: invalid default rules: " + err.Error())
	}
	return l
}
