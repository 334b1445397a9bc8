package store

import "fmt"

// TripleKey returns the coordination-store key for a triple's slot.
func TripleKey(session string, tripleID int64) string {
	return fmt.Sprintf("triple/%s/%d", session, tripleID)
}

// RequestKey returns the coordination-store key for a party's replay marker.
func RequestKey(session string, tripleID int64, party int) string {
	return fmt.Sprintf("request/%s/%d/%d", session, tripleID, party)
}

// TriplePrefix and RequestPrefix are used by the stats endpoint to count
// live slots without needing to know any specific session or triple id.
const (
	TriplePrefix  = "triple/"
	RequestPrefix = "request/"
)
