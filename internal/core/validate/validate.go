// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
)

// maxMessageLen matches the platform's message column limit.
const maxMessageLen = 512

// MessageText validates message text is non-empty after trimming
// whitespace and within the platform's length limit.
func MessageText(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("message text is required")
	}
	if len(trimmed) > maxMessageLen {
		return fmt.Errorf("message text exceeds %d characters", maxMessageLen)
	}
	return nil
}

// PlatformID validates a school platform ID: capital letters and
// digits, as printed on the enrollment letter.
func PlatformID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("platform ID is required")
	}
	if len(id) < 3 || len(id) > 12 {
		return fmt.Errorf("platform ID must be 3-12 characters")
	}
	for _, r := range id {
		if !isUpper(r) && !isDigit(r) {
			return fmt.Errorf("platform ID may only contain capital letters and digits")
		}
	}
	return nil
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
