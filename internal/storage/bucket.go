package storage

import (
	"fmt"
	"strings"
)

// maxBucketNameLen is the S3 bucket name limit.
const maxBucketNameLen = 63

// BucketName derives the tenant container name from a clinic ID:
// "clinic-" plus the lowercased ID with '_' and ' ' replaced by '-'.
// The derivation is pure and deterministic; distinct clinic IDs that differ
// after normalization never collide. The result is validated against S3
// naming rules before any I/O so a malformed tenant identifier fails here
// with ErrInvalidTenantName instead of deep inside an upload.
//
// This determinism is the isolation boundary between tenants: every access
// recomputes the name from the clinic ID instead of trusting a stored value.
func BucketName(clinicID string) (string, error) {
	if strings.TrimSpace(clinicID) == "" {
		return "", fmt.Errorf("%w: empty clinic id", ErrInvalidTenantName)
	}

	safe := strings.ToLower(clinicID)
	safe = strings.ReplaceAll(safe, "_", "-")
	safe = strings.ReplaceAll(safe, " ", "-")
	name := "clinic-" + safe

	if err := validateBucketName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTenantName, err)
	}
	return name, nil
}

// validateBucketName enforces the S3 rules that survive the "clinic-" prefix:
// total length, character set, and no trailing hyphen. The prefix already
// guarantees the minimum length, a leading letter, and a non-IP shape.
func validateBucketName(name string) error {
	if len(name) > maxBucketNameLen {
		return fmt.Errorf("container name %q exceeds %d characters", name, maxBucketNameLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return fmt.Errorf("container name %q contains illegal character %q", name, string(c))
	}
	if name[len(name)-1] == '-' {
		return fmt.Errorf("container name %q must end with a letter or digit", name)
	}
	return nil
}
