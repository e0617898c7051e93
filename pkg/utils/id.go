package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewDocumentID returns an identifier of the form DOC-1A2B3C4D.
func NewDocumentID() string {
	return "DOC-" + strings.ToUpper(hexPrefix(8))
}

// NewLogID returns an identifier of the form LOG-1a2b3c.
func NewLogID() string {
	return "LOG-" + hexPrefix(6)
}

func AlertID(n int) string {
	return fmt.Sprintf("ALERT-%d", n)
}

func hexPrefix(n int) string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:n]
}
