package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into an ILIKE pattern that matches it literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// containsFold literal, case-insensitive substring test used by the memory store.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
