package models

import "github.com/google/uuid"

// NewUUID generates a new random identifier, used for trace IDs and
// activity-feed entries.
func NewUUID() string {
	return uuid.New().String()
}
