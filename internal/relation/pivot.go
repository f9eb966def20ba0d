package relation

import (
	"strings"

	"github.com/faucetdb/modelgen/internal/naming"
)

// PrefixTable returns the first table, in the given order, whose singular
// name starts the singular name of pivot. The pivot itself is skipped.
func PrefixTable(pivot string, tables []string) (string, bool) {
	return firstMatch(pivot, tables, strings.HasPrefix)
}

// SuffixTable returns the first table, in the given order, whose singular
// name ends the singular name of pivot. The pivot itself is skipped.
func SuffixTable(pivot string, tables []string) (string, bool) {
	return firstMatch(pivot, tables, strings.HasSuffix)
}

// MatchPivot reports whether pivot is named as a join table of two other
// tables: singular(prefix) + "_" + singular(suffix) == singular(pivot). The
// prefix and suffix candidates are found independently, first match wins.
func MatchPivot(pivot string, tables []string) (prefix, suffix string, ok bool) {
	prefix, okPrefix := PrefixTable(pivot, tables)
	suffix, okSuffix := SuffixTable(pivot, tables)
	if !okPrefix || !okSuffix {
		return "", "", false
	}
	if naming.Singular(prefix)+"_"+naming.Singular(suffix) != naming.Singular(pivot) {
		return "", "", false
	}
	return prefix, suffix, true
}

func firstMatch(pivot string, tables []string, match func(s, part string) bool) (string, bool) {
	singular := naming.Singular(pivot)
	for _, t := range tables {
		if t == pivot {
			continue
		}
		s := naming.Singular(t)
		if s != "" && match(singular, s) {
			return t, true
		}
	}
	return "", false
}
