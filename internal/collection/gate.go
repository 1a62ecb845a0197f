package collection

// ActionKind names a destructive action.
type ActionKind int

const (
	ActionDelete ActionKind = iota
	ActionBlock
	ActionUnblock
)

func (k ActionKind) String() string {
	switch k {
	case ActionBlock:
		return "block"
	case ActionUnblock:
		return "unblock"
	default:
		return "delete"
	}
}

// PendingAction is a destructive action awaiting confirmation.
type PendingAction struct {
	Kind     ActionKind
	TargetID string
}

// Gate holds at most one pending destructive action.
//
//	Idle --Request--> Pending --Confirm--> Idle (action returned once)
//	                  Pending --Cancel---> Idle
//
// A second Request while pending replaces the target.
type Gate struct {
	pending PendingAction
	armed   bool
}

// Request stages an action for targetID.
func (g *Gate) Request(kind ActionKind, targetID string) {
	g.pending = PendingAction{Kind: kind, TargetID: targetID}
	g.armed = true
}

// Pending returns the staged action, if any.
func (g *Gate) Pending() (PendingAction, bool) {
	return g.pending, g.armed
}

// Confirm clears the gate and returns the staged action. ok is false when
// nothing was pending.
func (g *Gate) Confirm() (PendingAction, bool) {
	if !g.armed {
		return PendingAction{}, false
	}
	a := g.pending
	g.Cancel()
	return a, true
}

// ConfirmWith runs fn for the staged action and clears the gate. fn is not
// called when nothing is pending.
func (g *Gate) ConfirmWith(fn func(PendingAction)) bool {
	a, ok := g.Confirm()
	if ok {
		fn(a)
	}
	return ok
}

// Cancel clears the gate without running anything.
func (g *Gate) Cancel() {
	g.pending = PendingAction{}
	g.armed = false
}
