// Package storage is the persisted local-state layer: a small key-value
// abstraction over JSON-serialized records, the server-side analog of the
// browser's local storage. Keys are scoped per visitor so two browsers never
// see each other's identity or submission counters.
package storage

// Fixed key suffixes for the persisted records.
const (
	KeyIdentity            = "userInfo"
	KeyWritingSubmissions  = "writingSubmissions"
	KeySpeakingSubmissions = "speakingSubmissions"
)

// Store persists JSON-serialized values under string keys.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)

	// Set stores or replaces the value for a key.
	Set(key, value string) error

	// Clear removes a key. Clearing a missing key is not an error.
	Clear(key string) error
}

// VisitorKey scopes a fixed key suffix to one visitor.
func VisitorKey(visitorID, suffix string) string {
	return visitorID + ":" + suffix
}
