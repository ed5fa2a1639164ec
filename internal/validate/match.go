package validate

// MatchMode selects how actual rows are paired with expected rows.
type MatchMode int

const (
	// MatchGreedy claims the first unclaimed compatible expected row for each
	// actual row. Near-duplicate rows can produce a false negative when a
	// different pairing would have succeeded.
	MatchGreedy MatchMode = iota
	// MatchOptimal finds a maximum bipartite matching with augmenting paths.
	MatchOptimal
)

func (m MatchMode) String() string {
	if m == MatchOptimal {
		return "optimal"
	}
	return "greedy"
}

// ParseMatchMode accepts "greedy" (or empty) and "optimal".
func ParseMatchMode(s string) (MatchMode, bool) {
	switch s {
	case "", "greedy":
		return MatchGreedy, true
	case "optimal":
		return MatchOptimal, true
	}
	return MatchGreedy, false
}

// MatchRows reports whether actual and expected pair up one-to-one,
// ignoring row order, using the default options.
func MatchRows(actual, expected ResultSet) bool {
	return std.MatchRows(actual, expected)
}

func (v *Validator) MatchRows(actual, expected ResultSet) bool {
	ok, _ := v.matchRows(actual, expected)
	return ok
}

// matchRows returns the index of the first actual row left without a partner
// when matching fails, or -1 when the failure is not tied to one row.
func (v *Validator) matchRows(actual, expected ResultSet) (bool, int) {
	if len(actual) != len(expected) {
		return false, -1
	}

	act := make([]CanonicalRecord, len(actual))
	for i, r := range actual {
		act[i] = normalizeRecord(r, v.precision)
	}
	exp := make([]CanonicalRecord, len(expected))
	for i, r := range expected {
		exp[i] = normalizeRecord(r, v.precision)
	}

	if v.mode == MatchOptimal {
		return v.matchOptimal(act, exp)
	}
	return v.matchGreedy(act, exp)
}

func (v *Validator) matchGreedy(act, exp []CanonicalRecord) (bool, int) {
	claimed := make([]bool, len(exp))
	matched := 0

	for i, a := range act {
		found := false
		for j, e := range exp {
			if claimed[j] || !v.rowsCompatible(a, e) {
				continue
			}
			claimed[j] = true
			matched++
			found = true
			break
		}
		if !found {
			return false, i
		}
	}

	if matched != len(exp) {
		return false, -1
	}
	return true, -1
}

func (v *Validator) matchOptimal(act, exp []CanonicalRecord) (bool, int) {
	adj := make([][]int, len(act))
	for i, a := range act {
		for j, e := range exp {
			if v.rowsCompatible(a, e) {
				adj[i] = append(adj[i], j)
			}
		}
	}

	owner := make([]int, len(exp))
	for j := range owner {
		owner[j] = -1
	}

	var augment func(i int, seen []bool) bool
	augment = func(i int, seen []bool) bool {
		for _, j := range adj[i] {
			if seen[j] {
				continue
			}
			seen[j] = true
			if owner[j] == -1 || augment(owner[j], seen) {
				owner[j] = i
				return true
			}
		}
		return false
	}

	for i := range act {
		if !augment(i, make([]bool, len(exp))) {
			return false, i
		}
	}
	return true, -1
}

// rowsCompatible checks every expected column against the actual row.
// Extra actual columns are allowed; an unresolvable expected column is a mismatch.
func (v *Validator) rowsCompatible(a, e CanonicalRecord) bool {
	cols := a.Keys()
	for _, k := range e.Keys() {
		col, ok := v.aliases.Resolve(k, cols)
		if !ok {
			return false
		}
		av, _ := a.Lookup(col)
		ev, _ := e.Lookup(k)
		if !valuesEqual(av, ev, v.tolerance) {
			return false
		}
	}
	return true
}
