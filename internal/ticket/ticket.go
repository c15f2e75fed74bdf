// Package ticket generates ticket numbers and the payload embedded in a
// ticket's scannable code. Everything here is a pure function of its inputs;
// regeneration of a lost artifact only ever needs durable fields.
package ticket

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NumberPrefix is the fixed prefix of every ticket number.
const NumberPrefix = "REG_"

// payloadTag is the leading field of every code payload.
const payloadTag = "TICKET"

// delimiter separates payload fields. Ticket numbers, emails and event IDs
// never contain it.
const delimiter = "|"

// New returns a fresh ticket number: the fixed prefix plus eight uppercase
// hex characters of uuid entropy. Uniqueness is probabilistic, not
// cryptographic; the registrations table additionally enforces it.
func New() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return NumberPrefix + strings.ToUpper(suffix)
}

// Payload builds the string embedded in the scannable artifact. Field order
// is fixed; the same triple always yields the same payload.
func Payload(ticketNumber, userEmail, eventID string) string {
	return strings.Join([]string{payloadTag, ticketNumber, userEmail, eventID}, delimiter)
}

// ParsePayload decodes a code payload back into its three fields.
func ParsePayload(payload string) (ticketNumber, userEmail, eventID string, err error) {
	parts := strings.Split(payload, delimiter)
	if len(parts) != 4 || parts[0] != payloadTag {
		return "", "", "", fmt.Errorf("malformed ticket payload %q", payload)
	}
	return parts[1], parts[2], parts[3], nil
}

// ArtifactKey returns the artifact-store key for a ticket number.
func ArtifactKey(ticketNumber string) string {
	return ticketNumber + ".png"
}
