package domain

import (
	"time"
)

// Common action labels attached to store mutations.
const (
	ActionUpdate     = "Update"
	ActionUpdateRoot = "Update Root"
	ActionSetLoading = "Set Loading"
	ActionSetError   = "Set Error"
	ActionReset      = "Reset"
	ActionRestore    = "Restore"
	ActionPatch      = "Apply Patch"
	ActionSet        = "Set Entities"
	ActionAdd        = "Add Entity"
	ActionUpdateOne  = "Update Entity"
	ActionRemove     = "Remove Entity"
	ActionSetActive  = "Set Active"
	ActionSetDirty   = "Set Dirty"
)

// UpdateEvent describes one committed state transition.
type UpdateEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Store       string    `json:"store"`
	Action      string    `json:"action"`
	ChangedKeys []string  `json:"changed_keys,omitempty"`
}

// StoreHooks defines callbacks for store observability.
// They run synchronously on the goroutine that committed the mutation, after
// the new state is visible through GetSnapshot.
type StoreHooks struct {
	OnUpdate  func(*UpdateEvent)
	OnDestroy func(store string)
}

// MergeHooks combines several hook sets; callbacks run in argument order.
func MergeHooks(hooks ...StoreHooks) StoreHooks {
	var merged StoreHooks
	for _, h := range hooks {
		h := h
		if h.OnUpdate != nil {
			prev := merged.OnUpdate
			merged.OnUpdate = func(e *UpdateEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnUpdate(e)
			}
		}
		if h.OnDestroy != nil {
			prev := merged.OnDestroy
			merged.OnDestroy = func(name string) {
				if prev != nil {
					prev(name)
				}
				h.OnDestroy(name)
			}
		}
	}
	return merged
}
