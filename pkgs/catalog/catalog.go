package catalog

import (
	"encoding/json"
	"fmt"

	_ "embed"

	"github.com/go-playground/validator/v10"
)

//go:embed challenges.json
var rawChallenges []byte

// Difficulty grades a task
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ProofType selects the shape of proof a task accepts
type ProofType string

const (
	ProofLink  ProofType = "link"
	ProofText  ProofType = "text"
	ProofImage ProofType = "image"
)

// SubmissionType selects how a challenge is submitted for review
type SubmissionType string

const (
	SubmissionOnchain    SubmissionType = "onchain"
	SubmissionGoogleForm SubmissionType = "google_form"
)

// Task is immutable reference data. Task ids are only unique within a
// challenge's task list; use TaskRef for anything that crosses
// challenge boundaries.
type Task struct {
	ID                  int        `json:"id" validate:"required,min=1"`
	Title               string     `json:"title" validate:"required"`
	Description         string     `json:"description" validate:"required"`
	Difficulty          Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Points              uint64     `json:"points" validate:"required"`
	ProofType           ProofType  `json:"proofType" validate:"required,oneof=link text image"`
	PlayersRequired     int        `json:"playersRequired" validate:"required,min=1"`
	AllowMultipleProofs bool       `json:"allowMultipleProofs,omitempty"`
	InstructionsURL     string     `json:"instructionsUrl,omitempty" validate:"omitempty,url"`
}

// Challenge is one day of the program. Ordered by ID; the ID doubles as
// the day number (1..N).
type Challenge struct {
	ID             int            `json:"id" validate:"required,min=1"`
	Title          string         `json:"title" validate:"required"`
	Description    string         `json:"description" validate:"required"`
	Homepage       string         `json:"homepage" validate:"required,url"`
	SubmissionType SubmissionType `json:"submissionType" validate:"required,oneof=onchain google_form"`
	NFTTitle       string         `json:"nftTitle" validate:"required"`
	NFTDescription string         `json:"nftDescription" validate:"required"`
	Tasks          []Task         `json:"tasks" validate:"required,min=1,dive"`
}

// TaskRef scopes task identity to its challenge. Plain task ids repeat
// across challenges in the shipped data.
type TaskRef struct {
	ChallengeID int `json:"challengeId"`
	TaskID      int `json:"taskId"`
}

func (r TaskRef) String() string {
	return fmt.Sprintf("%d/%d", r.ChallengeID, r.TaskID)
}

// Catalog holds the full ordered challenge list, loaded once at startup.
type Catalog struct {
	challenges []Challenge
	byID       map[int]*Challenge
}

// Load parses and validates the embedded challenge data.
func Load() (*Catalog, error) {
	return Parse(rawChallenges)
}

// Parse builds a catalog from raw JSON. Split out of Load so tests can
// feed alternate data.
func Parse(data []byte) (*Catalog, error) {
	var challenges []Challenge
	if err := json.Unmarshal(data, &challenges); err != nil {
		return nil, fmt.Errorf("failed to parse challenge data: %w", err)
	}

	if len(challenges) == 0 {
		return nil, fmt.Errorf("challenge data is empty")
	}

	validate := validator.New()
	byID := make(map[int]*Challenge, len(challenges))

	for i := range challenges {
		ch := &challenges[i]
		if err := validate.Struct(ch); err != nil {
			return nil, fmt.Errorf("challenge %d failed validation: %w", ch.ID, err)
		}

		if _, dup := byID[ch.ID]; dup {
			return nil, fmt.Errorf("duplicate challenge id %d", ch.ID)
		}
		byID[ch.ID] = ch

		seen := make(map[int]bool, len(ch.Tasks))
		for _, t := range ch.Tasks {
			if seen[t.ID] {
				return nil, fmt.Errorf("challenge %d has duplicate task id %d", ch.ID, t.ID)
			}
			seen[t.ID] = true
		}
	}

	// Ids must form the day sequence 1..N in order.
	for i, ch := range challenges {
		if ch.ID != i+1 {
			return nil, fmt.Errorf("challenge ids must be sequential: got %d at position %d", ch.ID, i)
		}
	}

	return &Catalog{challenges: challenges, byID: byID}, nil
}

// Challenges returns the ordered challenge list.
func (c *Catalog) Challenges() []Challenge {
	return c.challenges
}

// Days returns the number of challenges.
func (c *Catalog) Days() int {
	return len(c.challenges)
}

// ChallengeByID looks up a challenge by its id (== day number).
func (c *Catalog) ChallengeByID(id int) (*Challenge, bool) {
	ch, ok := c.byID[id]
	return ch, ok
}

// TotalTasks counts tasks across all challenges.
func (c *Catalog) TotalTasks() int {
	total := 0
	for _, ch := range c.challenges {
		total += len(ch.Tasks)
	}
	return total
}

// FormBased returns challenges submitted out-of-band via form; these
// are the candidates for the direct award path.
func (c *Catalog) FormBased() []Challenge {
	var out []Challenge
	for _, ch := range c.challenges {
		if ch.SubmissionType == SubmissionGoogleForm {
			out = append(out, ch)
		}
	}
	return out
}

// Task looks up a task inside this challenge.
func (ch *Challenge) Task(taskID int) (*Task, bool) {
	for i := range ch.Tasks {
		if ch.Tasks[i].ID == taskID {
			return &ch.Tasks[i], true
		}
	}
	return nil, false
}

// Ref returns the scoped identity of a task within this challenge.
func (ch *Challenge) Ref(taskID int) TaskRef {
	return TaskRef{ChallengeID: ch.ID, TaskID: taskID}
}

// TotalPoints sums the points of every task in the challenge.
func (ch *Challenge) TotalPoints() uint64 {
	var total uint64
	for _, t := range ch.Tasks {
		total += t.Points
	}
	return total
}
