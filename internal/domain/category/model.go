package category

import "time"

// Category is a skill tier. Ordering is defined by Hierarchy, lowest first;
// comparisons go through Rank so adding a tier stays a one-line change.
type Category string

const (
	Fun Category = "FUN"
	D   Category = "D"
	C   Category = "C"
	B   Category = "B"
	A   Category = "A"
)

var Hierarchy = []Category{Fun, D, C, B, A}

func (c Category) Rank() int {
	for idx, candidate := range Hierarchy {
		if candidate == c {
			return idx
		}
	}
	return -1
}

func (c Category) Valid() bool {
	return c.Rank() >= 0
}

func (c Category) Above(other Category) bool {
	return c.Rank() > other.Rank()
}

func (c Category) Below(other Category) bool {
	return c.Valid() && other.Valid() && c.Rank() < other.Rank()
}

func Parse(raw string) (Category, bool) {
	for _, candidate := range Hierarchy {
		if string(candidate) == raw {
			return candidate, true
		}
	}
	return "", false
}

type ExitReason string

const (
	ExitPromoted      ExitReason = "promoted"
	ExitDemoted       ExitReason = "demoted"
	ExitAdminOverride ExitReason = "admin-override"
)

// HistoryEntry records one athlete's tenure in a category. Exactly one entry
// per athlete is open (ExitedAt nil) at any time; closed entries are immutable
// and are what demotion approval restores standing from.
type HistoryEntry struct {
	ID         string
	AthleteID  string
	Category   Category
	Points     int
	EnteredAt  time.Time
	ExitedAt   *time.Time
	ExitReason ExitReason
}

func (e HistoryEntry) Open() bool {
	return e.ExitedAt == nil
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ChangeRequest is a demotion request. At most one pending request exists per
// athlete; ToCategory is always strictly below FromCategory.
type ChangeRequest struct {
	ID            string
	AthleteID     string
	FromCategory  Category
	ToCategory    Category
	Reason        string
	Status        RequestStatus
	RequestedAt   time.Time
	RespondedAt   *time.Time
	AdminID       string
	AdminResponse string
}
