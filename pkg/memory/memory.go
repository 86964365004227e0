// Package memory is the conversation memory for a single reviewed subject.
//
// Every exchange is stored as a Turn in a vector driver, keyed by the text
// its embedding was computed from. One Turn, keyed by SubjectKey, holds the
// code under discussion. Replacing the subject with different code resets
// the whole conversation; replacing it with the same code keeps it.
package memory

import "strconv"

const (
	// SubjectKey is the reserved key of the canonical subject Turn.
	SubjectKey = "original_code"

	// DefaultTopK is how many relevant turns a dialogue prompt carries.
	DefaultTopK = 2
)

// TurnID identifies a Turn. IDs only grow for the lifetime of a store.
type TurnID uint64

func (id TurnID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Turn is a persisted unit of memory. Turns are never edited in place.
type Turn struct {
	ID      TurnID
	Key     string
	Payload string
}

// Relevant is one entry of a relevance query, most similar first.
type Relevant struct {
	Key     string
	Payload string
	Score   float32
}
