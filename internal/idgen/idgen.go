// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the record kinds this service generates IDs for.
const (
	EventPrefix        = "evt-"
	NotificationPrefix = "ntf-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// NewEventID returns a new unique event ID.
func NewEventID() (string, error) {
	return GenerateWithPrefix(EventPrefix)
}

// NewNotificationID returns a new unique notification ID.
func NewNotificationID() (string, error) {
	return GenerateWithPrefix(NotificationPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
