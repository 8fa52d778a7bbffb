package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID generates a unique entity id from the current millisecond timestamp
// and a random suffix. Ids sort roughly by creation time.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
