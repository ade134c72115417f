package progress

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/pkgs/catalog"
)

// Validator checks a proof value for one task. Validators may do I/O;
// the tracker holds its lock across the call so a task can never be
// double-counted by concurrent completions.
type Validator func(ctx context.Context, proof string) (bool, error)

// Tracker owns a player's progress state. All dependencies are passed
// in explicitly; there is no ambient shared context.
type Tracker struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	store      Store
	playerAddr string
	state      State
	validators map[catalog.TaskRef]Validator
}

// NewTracker loads the player's record from the store, falling back to
// the default state when the record is missing or corrupt. A record
// that fails its invariant check is discarded the same way rather than
// poisoning the session.
func NewTracker(ctx context.Context, cat *catalog.Catalog, store Store, playerAddr string) (*Tracker, error) {
	st, found, err := store.Load(ctx, playerAddr)
	if err != nil {
		return nil, err
	}
	if !found {
		st = DefaultState()
	} else if err := st.Check(cat); err != nil {
		log.WithError(err).WithField("player", playerAddr).Warn("Progress record failed invariant check, resetting")
		st = DefaultState()
	}

	return &Tracker{
		catalog:    cat,
		store:      store,
		playerAddr: playerAddr,
		state:      st,
		validators: make(map[catalog.TaskRef]Validator),
	}, nil
}

// RegisterValidator installs a proof validator for one task, replacing
// the default shape check.
func (t *Tracker) RegisterValidator(ref catalog.TaskRef, v Validator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.validators[ref] = v
}

// CompleteTask validates the proof and marks the task completed. An
// already-completed task is a no-op returning false. Validation failure
// leaves state untouched and returns false.
func (t *Tracker) CompleteTask(ctx context.Context, ref catalog.TaskRef, proof string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, err := t.lookupTask(ref)
	if err != nil {
		return false, err
	}

	if t.state.IsCompleted(ref) {
		return false, nil
	}

	validator := t.validators[ref]
	if validator == nil {
		validator = defaultValidator(task.ProofType)
	}

	ok, err := validator(ctx, proof)
	if err != nil {
		return false, fmt.Errorf("proof validation for task %s: %w", ref, err)
	}
	if !ok {
		return false, nil
	}

	next := t.state.WithCompleted(ref, task.Points)
	if err := t.store.Save(ctx, t.playerAddr, next); err != nil {
		return false, err
	}
	t.state = next

	log.WithFields(log.Fields{
		"player": t.playerAddr,
		"task":   ref.String(),
		"points": task.Points,
	}).Debug("Task completed")

	return true, nil
}

// SkipTask marks the task skipped unless it is already resolved.
// Skipping is irreversible.
func (t *Tracker) SkipTask(ctx context.Context, ref catalog.TaskRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.lookupTask(ref); err != nil {
		return err
	}

	if t.state.IsResolved(ref) {
		return nil
	}

	next := t.state.WithSkipped(ref)
	if err := t.store.Save(ctx, t.playerAddr, next); err != nil {
		return err
	}
	t.state = next

	return nil
}

// AllResolved reports whether every task of the challenge is completed
// or skipped.
func (t *Tracker) AllResolved(ch *catalog.Challenge) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allResolvedLocked(ch)
}

func (t *Tracker) allResolvedLocked(ch *catalog.Challenge) bool {
	for _, task := range ch.Tasks {
		if !t.state.IsResolved(ch.Ref(task.ID)) {
			return false
		}
	}
	return true
}

// AdvanceDay unlocks the next day once every task of the current day is
// resolved. The day never moves backwards.
func (t *Tracker) AdvanceDay(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.catalog.ChallengeByID(t.state.CurrentDay)
	if !ok {
		return t.state.CurrentDay, fmt.Errorf("no challenge for day %d", t.state.CurrentDay)
	}

	if !t.allResolvedLocked(ch) {
		return t.state.CurrentDay, fmt.Errorf("day %d still has unresolved tasks", t.state.CurrentDay)
	}

	if t.state.CurrentDay >= t.catalog.Days() {
		return t.state.CurrentDay, nil
	}

	next := t.state.WithDay(t.state.CurrentDay + 1)
	if err := t.store.Save(ctx, t.playerAddr, next); err != nil {
		return t.state.CurrentDay, err
	}
	t.state = next

	return t.state.CurrentDay, nil
}

// SetNewUser flips the first-visit flag and persists.
func (t *Tracker) SetNewUser(ctx context.Context, isNew bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.state.clone()
	next.IsNewUser = isNew
	if err := t.store.Save(ctx, t.playerAddr, next); err != nil {
		return err
	}
	t.state = next

	return nil
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Points returns the accumulated point total.
func (t *Tracker) Points() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Points
}

func (t *Tracker) lookupTask(ref catalog.TaskRef) (*catalog.Task, error) {
	ch, ok := t.catalog.ChallengeByID(ref.ChallengeID)
	if !ok {
		return nil, fmt.Errorf("unknown challenge %d", ref.ChallengeID)
	}
	task, ok := ch.Task(ref.TaskID)
	if !ok {
		return nil, fmt.Errorf("unknown task %s", ref)
	}
	return task, nil
}

// defaultValidator checks proof shape only: a link must parse as an
// http(s) URL, text and image proofs must be non-empty.
func defaultValidator(pt catalog.ProofType) Validator {
	return func(_ context.Context, proof string) (bool, error) {
		proof = strings.TrimSpace(proof)
		if proof == "" {
			return false, nil
		}

		switch pt {
		case catalog.ProofLink:
			u, err := url.Parse(proof)
			if err != nil {
				return false, nil
			}
			return u.Scheme == "http" || u.Scheme == "https", nil
		case catalog.ProofText, catalog.ProofImage:
			return true, nil
		default:
			return false, fmt.Errorf("unknown proof type %q", pt)
		}
	}
}
