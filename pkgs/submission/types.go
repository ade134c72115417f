package submission

import (
	"github.com/raxhvl/genesix/pkgs/catalog"
)

// PayloadVersion tags the submission wire format.
type PayloadVersion int

const (
	// PayloadV1 is the only version in circulation.
	PayloadV1 PayloadVersion = 1
)

// Response is one task's proof inside a submission. Exactly one of
// Answer or Images carries the proof, chosen by Type.
type Response struct {
	TaskID int               `json:"taskId"`
	Type   catalog.ProofType `json:"type"`
	Answer string            `json:"answer"`
	Images []string          `json:"images"`
}

// Submission is the record a player uploads for review. Written once
// to object storage; re-submission overwrites at the same derived key.
type Submission struct {
	Version       PayloadVersion `json:"version"`
	ChainID       int64          `json:"chainId"`
	Nickname      string         `json:"nickname"`
	PlayerAddress string         `json:"playerAddress"`
	ChallengeID   int            `json:"challengeId"`
	Responses     []Response     `json:"responses"`
	Timestamp     int64          `json:"timestamp"`
}
