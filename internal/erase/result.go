package erase

// Outcome is the synchronous result of one deletion attempt
type Outcome int

const (
	// OutcomeDeleted means the entry existed and was removed
	OutcomeDeleted Outcome = iota
	// OutcomeMissing means the entry did not exist, so nothing was attempted
	OutcomeMissing
	// OutcomeFailed means a deletion was attempted and failed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeleted:
		return "deleted"
	case OutcomeMissing:
		return "missing"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes the outcome of a safe delete for one path.
// Size and IsDir come from the pre-delete stat and are zero/false when
// the target was missing.
type Result struct {
	Path    string
	Outcome Outcome
	Size    int64
	IsDir   bool
	Err     error // set only when Outcome is OutcomeFailed
}

// OK reports whether the entry was actually removed
func (r Result) OK() bool { return r.Outcome == OutcomeDeleted }
