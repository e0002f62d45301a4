package normalizer

// Rule replaces one coded value with a semantic label in a single column.
type Rule struct {
	Column string
	Old    string
	New    string
}

// Apply rewrites raw rows in place according to the rules. Replacement is a
// full-value equality match against the loaded value; unmatched values pass
// through unchanged. When several rules target the same value in the same
// column, the last rule in the list wins.
func Apply(rules []Rule, rows []map[string]string) {
	if len(rules) == 0 {
		return
	}

	// Compile to one lookup per column so rules never chain: a value is
	// substituted at most once, by the last rule matching it.
	byColumn := map[string]map[string]string{}
	for _, r := range rules {
		if byColumn[r.Column] == nil {
			byColumn[r.Column] = map[string]string{}
		}
		byColumn[r.Column][r.Old] = r.New
	}

	for _, row := range rows {
		for column, subst := range byColumn {
			if repl, ok := subst[row[column]]; ok {
				row[column] = repl
			}
		}
	}
}
