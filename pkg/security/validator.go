package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// MaxSearchQueryLength defines the maximum allowed length for search queries
const MaxSearchQueryLength = 100

// dangerousPatterns contains regex patterns that could indicate injection attempts
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter|exec|execute)`),
	regexp.MustCompile(`(?i)(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)(--|#|/\*|\*/)`),
	regexp.MustCompile(`(?i)(waitfor|delay|benchmark|sleep)`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|onload=|onerror=)`),
}

// ValidateSearchQuery validates a search query before it reaches a LIKE filter
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	if len(query) > MaxSearchQueryLength {
		return "", errors.New("search query too long")
	}

	query = strings.TrimSpace(query)

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", errors.New("search query contains invalid characters")
		}
	}

	return query, nil
}

// isValidSearchChar checks if a character is safe for search queries
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+'
}

// SanitizeSearchString escapes LIKE wildcards in a query string
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)
	return query
}
