package index

// AccessMode is the result of routing a workspace-wide query against
// the coordinator's current lifecycle phase.
type AccessMode int

const (
	// AccessFull means the index is Ready: query it directly.
	AccessFull AccessMode = iota
	// AccessPartial means the index exists but is Building, Degraded,
	// or Recovering: callers should fall back to scanning open
	// documents, and may surface Reason to progress messages.
	AccessPartial
	// AccessNone means no coordinator/index exists at all.
	AccessNone
)

func (m AccessMode) String() string {
	switch m {
	case AccessFull:
		return "Full"
	case AccessPartial:
		return "Partial"
	default:
		return "None"
	}
}

// RouteIndexAccess inspects c's current state and returns the access
// mode a handler should use. A nil Coordinator always routes to None,
// so callers can route safely before the coordinator is constructed.
func RouteIndexAccess(c *Coordinator) (AccessMode, DegradationReason) {
	if c == nil {
		return AccessNone, ReasonNone
	}
	st := c.State()
	switch st.Phase {
	case PhaseReady:
		return AccessFull, ReasonNone
	case PhaseBuilding, PhaseDegraded, PhaseRecovering:
		return AccessPartial, st.Reason
	default:
		return AccessNone, ReasonNone
	}
}
