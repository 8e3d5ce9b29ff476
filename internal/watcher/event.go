// Package watcher turns a workspace scope into a stream of debounced change
// events. Registration is filtered through the session's ignore rules; raw
// notifications are coalesced within a fixed debounce window and delivered
// through a bounded mailbox to the single consumer (the supervisor loop).
package watcher

// Kind classifies a change event.
type Kind int

// Event kinds, in rough order of how often editors produce them.
const (
	Modified Kind = iota
	Created
	Removed
	Renamed
)

// String returns the lowercase kind name for logs.
func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is one debounced filesystem change. OldPath is set only for renames,
// when the backend knows the previous name.
type Event struct {
	Path    string
	Kind    Kind
	OldPath string
}
