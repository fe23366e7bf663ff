package textnorm

import "strings"

// honorifics are stripped before splitting a full name into candidates.
// Matched case-insensitively against whole tokens, with or without the dot.
var honorifics = []string{
	"prof.", "prof", "prof.ssa", "profssa",
	"dott.", "dott", "dott.ssa", "dottssa", "dr.", "dr",
	"ing.", "ing", "arch.", "arch", "avv.", "avv",
	"sig.", "sig", "sig.ra", "sigra", "mr.", "mr", "mrs.", "mrs", "ms.", "ms",
}

// NameSplitter turns a full name into given-name and family-name candidates.
// The split is heuristic; implementations may be swapped without touching the
// duplicate-detection or merge logic.
type NameSplitter interface {
	Split(fullName string) (given []string, family []string)
}

// HeuristicSplitter is the default splitter: strip honorifics, tokenize on
// whitespace, and assume the last token is the family name. One token yields
// no given-name candidates. Names with particles or multiple surnames will be
// split wrong; callers treat an unverifiable split as "not the same person".
type HeuristicSplitter struct{}

func (HeuristicSplitter) Split(fullName string) ([]string, []string) {
	tokens := splitNameTokens(fullName)
	switch len(tokens) {
	case 0:
		return nil, nil
	case 1:
		return nil, tokens
	case 2:
		return tokens[:1], tokens[1:]
	default:
		return tokens[:len(tokens)-1], tokens[len(tokens)-1:]
	}
}

func splitNameTokens(fullName string) []string {
	var tokens []string
	for _, tok := range strings.Fields(fullName) {
		if isHonorific(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isHonorific(tok string) bool {
	lower := strings.ToLower(tok)
	for _, h := range honorifics {
		if lower == h {
			return true
		}
	}
	return false
}

// Matcher decides whether two teacher-name strings denote the same person,
// tolerating swapped given/family order and minor misspellings.
type Matcher struct {
	Splitter NameSplitter
	// MinSimilarity is the similarity floor used when retrying the
	// cross-match with fuzzy equality instead of exact equality.
	MinSimilarity float64
}

// NewMatcher returns a Matcher with the default heuristic splitter and the
// 0.8 fuzzy-retry floor.
func NewMatcher() Matcher {
	return Matcher{Splitter: HeuristicSplitter{}, MinSimilarity: 0.8}
}

// SamePerson reports whether name1 and name2 plausibly denote the same
// person: either the normalized strings are identical, or the two names
// cross-match with given and family roles swapped (exactly, then with fuzzy
// equality above MinSimilarity). When either name yields no given or no
// family candidate the inversion cannot be verified and the answer is false.
func (m Matcher) SamePerson(name1, name2 string) bool {
	n1 := Normalize(name1)
	n2 := Normalize(name2)
	if n1 == n2 && n1 != "" {
		return true
	}

	given1, family1 := m.Splitter.Split(n1)
	given2, family2 := m.Splitter.Split(n2)
	if len(given1) == 0 || len(family1) == 0 || len(given2) == 0 || len(family2) == 0 {
		return false
	}

	if crossMatch(given1, family1, given2, family2, equalFold) {
		return true
	}
	fuzzy := func(a, b string) bool {
		return Similarity(strings.ToLower(a), strings.ToLower(b)) > m.MinSimilarity
	}
	return crossMatch(given1, family1, given2, family2, fuzzy)
}

// crossMatch checks the swapped-role condition: some given candidate of name1
// matches a family candidate of name2 while a family candidate of name1
// matches a given candidate of name2.
func crossMatch(given1, family1, given2, family2 []string, eq func(a, b string) bool) bool {
	givenHit := false
	for _, g := range given1 {
		for _, f := range family2 {
			if eq(g, f) {
				givenHit = true
				break
			}
		}
		if givenHit {
			break
		}
	}
	if !givenHit {
		return false
	}
	for _, f := range family1 {
		for _, g := range given2 {
			if eq(f, g) {
				return true
			}
		}
	}
	return false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
