package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateOrderNumber produces the human-facing order reference used for
// guest tracking lookups.
func GenerateOrderNumber() string {
	compact := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "VM-" + compact[:12]
}
