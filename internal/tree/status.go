package tree

import "strings"

// Status represents the lifecycle of a publish task. The machine is linear
// and non-revisitable; failed is an absorbing state reachable from any phase.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusValidated Status = "validated"
	StatusPublished Status = "published"
	StatusFinalized Status = "finalized"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusValidated,
	StatusPublished,
	StatusFinalized,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var statusRank = func() map[Status]int {
	rank := make(map[Status]int, len(allStatuses))
	for i, status := range allStatuses {
		rank[status] = i
	}
	return rank
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanAdvance reports whether a task may move from its current status to next.
// Failed absorbs: once a task fails, no further transitions apply.
func CanAdvance(from, to Status) bool {
	if from == StatusFailed || from == StatusFinalized {
		return false
	}
	if to == StatusFailed {
		return true
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}
