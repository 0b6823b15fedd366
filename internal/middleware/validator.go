package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

const (
	MaxQueryLength = 4000
	maxParamLength = 200
)

var paramName = regexp.MustCompile(`^[a-z_]{1,32}$`)

// SanitizeString removes null bytes and control characters, keeping tabs and newlines
func SanitizeString(input string) string {
	input = strings.ToValidUTF8(input, "")
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			if r == 0x7f {
				continue
			}
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateQuery sanitizes a free-text question and enforces its length
func ValidateQuery(query string) (string, error) {
	q := SanitizeString(query)
	if q == "" {
		return "", fmt.Errorf("query cannot be empty")
	}
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return "", fmt.Errorf("query too long (max %d characters)", MaxQueryLength)
	}
	return q, nil
}

// ValidateTemplateParams sanitizes template parameters
func ValidateTemplateParams(params map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if !paramName.MatchString(k) {
			return nil, fmt.Errorf("invalid template parameter name %q", k)
		}
		v = SanitizeString(v)
		if utf8.RuneCountInString(v) > maxParamLength {
			return nil, fmt.Errorf("template parameter %s too long (max %d characters)", k, maxParamLength)
		}
		out[k] = v
	}
	return out, nil
}

// ValidateTag sanitizes an optional pass-through tag value
func ValidateTag(name, value string) (string, error) {
	v := SanitizeString(value)
	if strings.ContainsAny(v, "\n\t") {
		return "", fmt.Errorf("%s must be a single line", name)
	}
	if utf8.RuneCountInString(v) > maxParamLength {
		return "", fmt.Errorf("%s too long (max %d characters)", name, maxParamLength)
	}
	return v, nil
}

// ValidateRecordID checks that an id is a UUID
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid analysis id format")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates the page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
