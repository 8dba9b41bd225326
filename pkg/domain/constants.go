package domain

// Port names. A port is a named attachment point on a node restricting the
// role of the links leaving it.
const (
	PortIn       = "in"
	PortError    = "error"
	PortSkip     = "skip"
	PortComplete = "complete"
	PortTrue     = "true"
	PortFalse    = "false"
)

// Attribute keys read from a node's attribute bag.
const (
	AttrConcrete      = "concrete"
	AttrTurbo         = "turbo"
	AttrCascade       = "cascade"
	AttrEntrySubState = "entrySubState"
	AttrText          = "text"
	AttrLocation      = "loc"
)

// StatePorts lists the outgoing ports a State (or Start) node may use.
var StatePorts = []string{PortError, PortSkip, PortComplete}

// DecisionPorts lists the outgoing ports a Conditional node may use.
var DecisionPorts = []string{PortTrue, PortFalse}

// IsStatePort reports whether port is a valid outgoing port for a state.
func IsStatePort(port string) bool {
	return port == PortError || port == PortSkip || port == PortComplete
}

// IsDecisionPort reports whether port is a valid outgoing port for a decision.
func IsDecisionPort(port string) bool {
	return port == PortTrue || port == PortFalse
}
