package types

// Keyword is one literal pattern to search for, with an optional alias.
// When Alias is empty the pattern itself is reported (and substituted).
type Keyword struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Alias   string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// Name returns the reported name for this keyword.
func (k Keyword) Name() string {
	if k.Alias != "" {
		return k.Alias
	}
	return k.Pattern
}

// Match is one reported match. Start and End are a half-open range measured
// in Unicode characters, never bytes.
type Match struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Mode selects a query mode.
type Mode string

const (
	// ModeAll reports every terminal node visited, overlapping matches
	// included.
	ModeAll Mode = "all"

	// ModeLine resets at line boundaries and reports only the last match
	// per non-empty line. The reported name is the line text itself.
	ModeLine Mode = "line"
)

// Finding is a match located in a file during a tree scan.
type Finding struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}
