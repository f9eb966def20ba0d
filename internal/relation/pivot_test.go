package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixAndSuffixTable(t *testing.T) {
	tables := []string{"users", "roles", "role_user"}

	prefix, ok := PrefixTable("role_user", tables)
	assert.True(t, ok)
	assert.Equal(t, "roles", prefix)

	suffix, ok := SuffixTable("role_user", tables)
	assert.True(t, ok)
	assert.Equal(t, "users", suffix)

	_, ok = PrefixTable("users", []string{"users"})
	assert.False(t, ok, "a table never matches itself")
}

func TestMatchPivot(t *testing.T) {
	tests := []struct {
		name   string
		pivot  string
		tables []string
		prefix string
		suffix string
		ok     bool
	}{
		{"singular join", "role_user", []string{"users", "roles", "role_user"}, "roles", "users", true},
		{"plural join", "user_roles", []string{"users", "roles", "user_roles"}, "users", "roles", true},
		{"multi word", "blog_post_tags", []string{"blog_posts", "tags", "blog_post_tags"}, "blog_posts", "tags", true},
		{"same table twice", "user_user", []string{"users", "user_user"}, "users", "users", true},
		{"no suffix", "role_permissions", []string{"roles", "role_permissions"}, "", "", false},
		{"not a join", "books", []string{"authors", "books"}, "", "", false},
		{"extra infix", "user_to_role", []string{"users", "roles", "user_to_role"}, "", "", false},
		// First match in catalog order wins even when a later table fits better.
		{"first match tie-break", "role_user", []string{"ro", "roles", "users", "role_user"}, "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prefix, suffix, ok := MatchPivot(tc.pivot, tc.tables)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.prefix, prefix)
			assert.Equal(t, tc.suffix, suffix)
		})
	}
}
