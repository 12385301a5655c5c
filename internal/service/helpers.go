package service

import (
	"strconv"
	"strings"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseID converts the string user_id claim back to the database ID
func ParseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func joinPhone(countryCode, phone string) string {
	if phone == "" {
		return ""
	}
	if countryCode == "" {
		return phone
	}
	return countryCode + phone
}
