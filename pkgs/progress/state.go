package progress

import (
	"fmt"

	"github.com/raxhvl/genesix/pkgs/catalog"
)

// State is a player's local progress record. It is a pure value:
// mutation helpers return an updated copy, and the tracker persists the
// whole record after every change. The on-chain contract remains the
// source of truth for awarded points; this record only drives the UI.
type State struct {
	CurrentDay     int               `json:"currentDay"`
	CompletedTasks []catalog.TaskRef `json:"completedTasks"`
	SkippedTasks   []catalog.TaskRef `json:"skippedTasks"`
	Points         uint64            `json:"points"`
	IsNewUser      bool              `json:"isNewUser"`
}

// DefaultState is the record for a player we have never seen.
func DefaultState() State {
	return State{
		CurrentDay:     1,
		CompletedTasks: []catalog.TaskRef{},
		SkippedTasks:   []catalog.TaskRef{},
		Points:         0,
		IsNewUser:      true,
	}
}

// IsCompleted reports whether the task has been completed.
func (s State) IsCompleted(ref catalog.TaskRef) bool {
	return containsRef(s.CompletedTasks, ref)
}

// IsSkipped reports whether the task has been skipped.
func (s State) IsSkipped(ref catalog.TaskRef) bool {
	return containsRef(s.SkippedTasks, ref)
}

// IsResolved reports whether the task is completed or skipped.
func (s State) IsResolved(ref catalog.TaskRef) bool {
	return s.IsCompleted(ref) || s.IsSkipped(ref)
}

// WithCompleted returns a copy with the task marked completed and its
// points added. Caller must have checked membership first.
func (s State) WithCompleted(ref catalog.TaskRef, points uint64) State {
	next := s.clone()
	next.CompletedTasks = append(next.CompletedTasks, ref)
	next.Points += points
	next.IsNewUser = false
	return next
}

// WithSkipped returns a copy with the task marked skipped.
func (s State) WithSkipped(ref catalog.TaskRef) State {
	next := s.clone()
	next.SkippedTasks = append(next.SkippedTasks, ref)
	next.IsNewUser = false
	return next
}

// WithDay returns a copy with the unlocked day set.
func (s State) WithDay(day int) State {
	next := s.clone()
	next.CurrentDay = day
	return next
}

func (s State) clone() State {
	next := s
	next.CompletedTasks = append([]catalog.TaskRef{}, s.CompletedTasks...)
	next.SkippedTasks = append([]catalog.TaskRef{}, s.SkippedTasks...)
	return next
}

// Check verifies the record's invariants against the catalog: no task
// is both completed and skipped, and the stored points equal the sum of
// points of completed tasks. Run on every load so a drifted record is
// caught before it is displayed.
func (s State) Check(cat *catalog.Catalog) error {
	if s.CurrentDay < 1 {
		return fmt.Errorf("current day %d below 1", s.CurrentDay)
	}

	skipped := make(map[catalog.TaskRef]bool, len(s.SkippedTasks))
	for _, ref := range s.SkippedTasks {
		skipped[ref] = true
	}
	for _, ref := range s.CompletedTasks {
		if skipped[ref] {
			return fmt.Errorf("task %s is both completed and skipped", ref)
		}
	}

	var expected uint64
	for _, ref := range s.CompletedTasks {
		ch, ok := cat.ChallengeByID(ref.ChallengeID)
		if !ok {
			return fmt.Errorf("completed task %s references unknown challenge", ref)
		}
		task, ok := ch.Task(ref.TaskID)
		if !ok {
			return fmt.Errorf("completed task %s references unknown task", ref)
		}
		expected += task.Points
	}
	if expected != s.Points {
		return fmt.Errorf("stored points %d do not match recomputed %d", s.Points, expected)
	}

	return nil
}

func containsRef(refs []catalog.TaskRef, ref catalog.TaskRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
