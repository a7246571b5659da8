package utils

import "database/sql"

func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
