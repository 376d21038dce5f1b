package models

import "strings"

// NormalizeRole lowercases a role and folds common spellings
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	r = strings.NewReplacer(" ", "_", "-", "_").Replace(r)
	switch r {
	case "data_analysis", "analyst", "data":
		return "data_analyst"
	case "full_stack":
		return "fullstack"
	}
	return r
}
