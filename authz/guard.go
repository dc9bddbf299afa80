package authz

// Capability is what an operation needs from an AccessDecision.
type Capability int

const (
	CapView Capability = iota
	CapEdit
	CapDelete
)

// Require converts a decision into an error when it does not cover the
// capability. No access at all maps to NotFound, never Forbidden: a 403
// would confirm the task exists to someone outside the tenant.
func Require(d AccessDecision, c Capability) error {
	if !d.Granted {
		return NotFound("task not found")
	}
	switch c {
	case CapView:
		return nil
	case CapEdit:
		if d.CanEdit {
			return nil
		}
		return Forbidden("you do not have permission to modify this task")
	case CapDelete:
		if d.CanDelete {
			return nil
		}
		return Forbidden("you do not have permission to delete this task")
	}
	return Forbidden("unknown capability")
}

// RequireOwner admits only the task owner. Sharing management is
// owner-exclusive.
func RequireOwner(d AccessDecision) error {
	if !d.Granted {
		return NotFound("task not found")
	}
	if d.AccessType != AccessOwner {
		return Forbidden("only the task owner can manage sharing")
	}
	return nil
}
