package model

// State is a position in the release state machine
type State string

const (
	StateStart              State = "start"
	StateValidated          State = "validated"
	StateRepoReady          State = "repo_ready"
	StateMergedMain         State = "merged_main"
	StateVersionsUpdated    State = "versions_updated"
	StateTagged             State = "tagged"
	StateMergedDev          State = "merged_dev"
	StateDone               State = "done"
	StateFailed             State = "failed"
	StateRolledBack         State = "rolled_back"
	StateRollbackIncomplete State = "rollback_incomplete"
)

// IsTerminal checks if no further transition is expected from the state
func (s State) IsTerminal() bool {
	switch s {
	case StateDone, StateRolledBack, StateRollbackIncomplete:
		return true
	default:
		return false
	}
}
