package validate

import "strings"

// AliasTable describes how aggregate column names may vary between the
// author's expected output and the learner's query.
//
// Tokens are bare aggregate names: an expected column equal to a token
// matches an actual column equal to it or ending in "_<token>", so "count"
// finds "product_count".
//
// Groups are interchangeable name prefixes: with {"avg", "average"} an
// expected "avg_price" finds "average_price" and the other way round.
type AliasTable struct {
	Tokens []string   `mapstructure:"aggregate_tokens"`
	Groups [][]string `mapstructure:"alias_groups"`
}

// DefaultAliases covers the aggregate aliases SQL authors commonly write.
var DefaultAliases = AliasTable{
	Tokens: []string{"count", "sum", "avg", "average", "max", "min"},
	Groups: [][]string{{"avg", "average"}},
}

func (t AliasTable) empty() bool { return len(t.Tokens) == 0 && len(t.Groups) == 0 }

// Resolve maps an expected column name to an actual column name. Rules are
// tried in order and the first actual column that satisfies a rule wins:
// case-insensitive equality, aggregate token suffix, prefix-group substitution.
func (t AliasTable) Resolve(expected string, actual []string) (string, bool) {
	want := strings.ToLower(expected)

	for _, a := range actual {
		if strings.ToLower(a) == want {
			return a, true
		}
	}

	if t.isToken(want) {
		suffix := "_" + want
		for _, a := range actual {
			la := strings.ToLower(a)
			if la == want || strings.HasSuffix(la, suffix) {
				return a, true
			}
		}
	}

	for _, alt := range t.substitutes(want) {
		for _, a := range actual {
			if strings.ToLower(a) == alt {
				return a, true
			}
		}
	}

	return "", false
}

func (t AliasTable) isToken(name string) bool {
	for _, tok := range t.Tokens {
		if strings.ToLower(tok) == name {
			return true
		}
	}
	return false
}

// substitutes lists the names reachable by swapping a group prefix.
func (t AliasTable) substitutes(name string) []string {
	var out []string
	for _, group := range t.Groups {
		for _, p := range group {
			prefix := strings.ToLower(p) + "_"
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			rest := name[len(prefix):]
			for _, q := range group {
				q = strings.ToLower(q)
				if q+"_" == prefix {
					continue
				}
				out = append(out, q+"_"+rest)
			}
		}
	}
	return out
}
