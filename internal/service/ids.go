package service

import (
	"strings"

	"github.com/google/uuid"
)

// newID returns prefix + "_" + 12 hex characters
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
