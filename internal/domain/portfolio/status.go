package portfolio

// Status is the portfolio lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
	StatusForSale   Status = "for_sale"
	StatusClosing   Status = "closing"
	StatusSold      Status = "sold"
	StatusArchived  Status = "archived"
)

// transitions is the single source of truth for the lifecycle. Directed, no
// back-edges beyond what is listed; archived is terminal.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusActive, StatusArchived},
	StatusPending:   {StatusActive, StatusDraft},
	StatusActive:    {StatusSuspended, StatusInactive, StatusClosing, StatusForSale},
	StatusSuspended: {StatusActive, StatusClosing},
	StatusInactive:  {StatusActive, StatusClosing, StatusForSale},
	StatusForSale:   {StatusSold, StatusActive, StatusInactive},
	StatusClosing:   {StatusArchived, StatusSold},
	StatusSold:      {StatusArchived},
	StatusArchived:  {},
}

// OrDefault maps an unspecified status to draft.
func (s Status) OrDefault() Status {
	if s == "" {
		return StatusDraft
	}
	return s
}

// CanTransitionTo consults exactly the transition table above.
func CanTransitionTo(current, target Status) bool {
	for _, next := range transitions[current.OrDefault()] {
		if next == target {
			return true
		}
	}
	return false
}

// CanEdit is derived per status, not independently settable.
func (s Status) CanEdit() bool {
	switch s.OrDefault() {
	case StatusDraft, StatusPending, StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}
