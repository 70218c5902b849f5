package gitsync

import "time"

// ChangeType classifies a single file-level modification.
type ChangeType int

const (
	ChangeAdded ChangeType = iota
	ChangeEdited
	ChangeDeleted
	ChangeMoved
)

func (t ChangeType) String() string {
	switch t {
	case ChangeAdded:
		return "added"
	case ChangeEdited:
		return "edited"
	case ChangeDeleted:
		return "deleted"
	case ChangeMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// User identifies a commit author.
type User struct {
	Name  string
	Email string
}

// Change is a single file-level modification, either pending in the
// working copy or part of a historical ChangeSet.
// MovedToPath is set iff Type is ChangeMoved.
type Change struct {
	Path        string
	MovedToPath string
	Type        ChangeType
	IsFolder    bool
	Timestamp   time.Time
}

// ChangeSet is a grouped, user/day-coalesced unit of historical change.
// Changes keep discovery order, which is not necessarily chronological
// within the set.
type ChangeSet struct {
	// Revision is a 40-hex commit id, or "" for pending sets.
	Revision string
	User     User
	// Timestamp is the set's representative moment, in the observer's
	// local time.
	Timestamp time.Time
	// FirstTimestamp is set only when the set is a merged group
	// spanning multiple moments; it holds the earliest of them.
	FirstTimestamp time.Time
	RemoteURL      string
	Changes        []Change
}

// SyncProgress is a point-in-time view of a running transfer.
type SyncProgress struct {
	// Percentage of overall completion, 0-100.
	Percentage float64
	// Speed in bytes per second.
	Speed float64
}
