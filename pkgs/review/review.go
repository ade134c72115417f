package review

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/pkgs/audit"
	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/contract"
	"github.com/raxhvl/genesix/pkgs/errs"
	"github.com/raxhvl/genesix/pkgs/metrics"
	"github.com/raxhvl/genesix/pkgs/submission"
)

// DirectAwardID is the sentinel submission id recorded when points are
// granted without a stored submission.
const DirectAwardID = "direct"

// Chain is the contract surface the review engine depends on.
type Chain interface {
	SignerAddress() common.Address
	IsApprover(ctx context.Context, account common.Address) (bool, error)
	Deadline(ctx context.Context) (int64, error)
	ApproveSubmission(ctx context.Context, challengeID int, submissionID string, player common.Address, nickname string, points []uint64) (*contract.TxResult, error)
}

// Fetcher loads persisted submissions.
type Fetcher interface {
	Fetch(ctx context.Context, chainID int64, submissionID string) (*submission.Submission, error)
}

// Session is one reviewer's pass over a single submission. Tasks start
// unapproved; the reviewer marks them individually and finalizes once.
type Session struct {
	mu sync.Mutex

	chain   Chain
	fetcher Fetcher
	catalog *catalog.Catalog
	auditor *audit.Recorder
	chainID int64

	submissionID string
	sub          *submission.Submission
	challenge    *catalog.Challenge
	approved     map[int]bool
}

// NewSession creates an empty review session. auditor may be nil.
func NewSession(chain Chain, fetcher Fetcher, cat *catalog.Catalog, auditor *audit.Recorder, chainID int64) *Session {
	return &Session{
		chain:   chain,
		fetcher: fetcher,
		catalog: cat,
		auditor: auditor,
		chainID: chainID,
	}
}

// Load fetches a submission into the session and resets all task
// approvals. On fetch failure the previously loaded submission and its
// marks are left untouched.
func (s *Session) Load(ctx context.Context, submissionID string) (*submission.Submission, error) {
	sub, err := s.fetcher.Fetch(ctx, s.chainID, submissionID)
	if err != nil {
		return nil, err
	}

	ch, ok := s.catalog.ChallengeByID(sub.ChallengeID)
	if !ok {
		return nil, errs.Newf(errs.CodeValidation, "submission %s references unknown challenge %d", submissionID, sub.ChallengeID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissionID = submissionID
	s.sub = sub
	s.challenge = ch
	s.approved = make(map[int]bool, len(ch.Tasks))

	log.WithFields(log.Fields{
		"submission": submissionID,
		"player":     sub.PlayerAddress,
		"challenge":  sub.ChallengeID,
	}).Info("Submission loaded for review")

	return sub, nil
}

// MarkTask sets one task's approval. Unknown task ids are rejected.
func (s *Session) MarkTask(taskID int, approve bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return errs.New(errs.CodeValidation, "no submission loaded")
	}
	if _, ok := s.challenge.Task(taskID); !ok {
		return errs.Newf(errs.CodeValidation, "challenge %d has no task %d", s.challenge.ID, taskID)
	}

	s.approved[taskID] = approve
	return nil
}

// ApprovalVector returns per-task points aligned positionally with the
// challenge's tasks: full task points when approved, zero otherwise.
func (s *Session) ApprovalVector() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vectorLocked()
}

func (s *Session) vectorLocked() []uint64 {
	if s.challenge == nil {
		return nil
	}

	vector := make([]uint64, len(s.challenge.Tasks))
	for i, task := range s.challenge.Tasks {
		if s.approved[task.ID] {
			vector[i] = task.Points
		}
	}
	return vector
}

// ApprovedPoints sums the points currently marked approved.
func (s *Session) ApprovedPoints() uint64 {
	var total uint64
	for _, p := range s.ApprovalVector() {
		total += p
	}
	return total
}

// TotalPoints is the maximum the loaded submission could earn.
func (s *Session) TotalPoints() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.challenge == nil {
		return 0
	}
	return s.challenge.TotalPoints()
}

// Finalize records the current approval vector on-chain. The signer
// must hold the approver role and the review deadline must not have
// passed. Blocks until the transaction is mined.
func (s *Session) Finalize(ctx context.Context) (*contract.TxResult, error) {
	s.mu.Lock()
	if s.sub == nil {
		s.mu.Unlock()
		return nil, errs.New(errs.CodeValidation, "no submission loaded")
	}
	player := common.HexToAddress(s.sub.PlayerAddress)
	nickname := s.sub.Nickname
	challengeID := s.challenge.ID
	submissionID := s.submissionID
	vector := s.vectorLocked()
	s.mu.Unlock()

	if err := checkApprovalWindow(ctx, s.chain); err != nil {
		return nil, err
	}

	result, err := s.chain.ApproveSubmission(ctx, challengeID, submissionID, player, nickname, vector)
	if err != nil {
		metrics.ApprovalFailures.Inc()
		return result, err
	}
	metrics.ApprovalsFinalized.Inc()

	if s.auditor != nil {
		s.auditor.RecordApproval(ctx, audit.ApprovalRecord{
			SubmissionID:  submissionID,
			PlayerAddress: player.Hex(),
			ChallengeID:   challengeID,
			Points:        vector,
			TxHash:        result.TxHash,
		})
	}

	return result, nil
}

// FinalizeAsync runs Finalize in the background and delivers the
// result on the returned channel. No automatic retry: a failed result
// is reported once and the caller decides whether to finalize again.
func (s *Session) FinalizeAsync(ctx context.Context) <-chan *contract.TxResult {
	resultChan := make(chan *contract.TxResult, 1)

	go func() {
		defer close(resultChan)
		result, err := s.Finalize(ctx)
		if err != nil {
			if result == nil {
				result = &contract.TxResult{Success: false, Error: err}
			}
			resultChan <- result
			return
		}
		resultChan <- result
	}()

	return resultChan
}

// DirectAward credits a player for one task without a stored
// submission, using a singleton point vector and the sentinel
// submission id.
func DirectAward(ctx context.Context, chain Chain, auditor *audit.Recorder, player common.Address, nickname string, ref catalog.TaskRef, points uint64) (*contract.TxResult, error) {
	if err := checkApprovalWindow(ctx, chain); err != nil {
		return nil, err
	}

	result, err := chain.ApproveSubmission(ctx, ref.ChallengeID, DirectAwardID, player, nickname, []uint64{points})
	if err != nil {
		metrics.ApprovalFailures.Inc()
		return result, err
	}
	metrics.ApprovalsFinalized.Inc()

	log.WithFields(log.Fields{
		"player": player.Hex(),
		"task":   ref.String(),
		"points": points,
	}).Info("Direct award recorded")

	if auditor != nil {
		auditor.RecordApproval(ctx, audit.ApprovalRecord{
			SubmissionID:  DirectAwardID,
			PlayerAddress: player.Hex(),
			ChallengeID:   ref.ChallengeID,
			Points:        []uint64{points},
			TxHash:        result.TxHash,
		})
	}

	return result, nil
}

// checkApprovalWindow verifies the signer may approve right now.
func checkApprovalWindow(ctx context.Context, chain Chain) error {
	approver, err := chain.IsApprover(ctx, chain.SignerAddress())
	if err != nil {
		return err
	}
	if !approver {
		return errs.Newf(errs.CodeContractCallFailed, "%s does not hold the approver role", chain.SignerAddress().Hex())
	}

	deadline, err := chain.Deadline(ctx)
	if err != nil {
		return err
	}
	if deadline > 0 && time.Now().Unix() > deadline {
		return errs.Newf(errs.CodeContractCallFailed, "review deadline %d has passed", deadline)
	}

	return nil
}
