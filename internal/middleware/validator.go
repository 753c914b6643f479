package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation for request parameters

var (
	tenantPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	uuidPattern   = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
)

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if !tenantPattern.MatchString(tenant) {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateScanID validates scan ID format (UUID)
func ValidateScanID(scanID string) error {
	if scanID == "" {
		return fmt.Errorf("scan ID cannot be empty")
	}
	if !uuidPattern.MatchString(strings.ToLower(scanID)) {
		return fmt.Errorf("invalid scan ID format")
	}
	return nil
}

// ValidateArtifactKey rejects object keys with traversal or shell metacharacters
func ValidateArtifactKey(key string) error {
	if key == "" {
		return fmt.Errorf("artifact key cannot be empty")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("path traversal detected in artifact key")
	}
	for _, d := range []string{"$(", "`", "&", "|", ";", "\n", "\r"} {
		if strings.Contains(key, d) {
			return fmt.Errorf("invalid characters in artifact key")
		}
	}
	return nil
}

// ValidateLimit clamps a pagination limit into its allowed range
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
