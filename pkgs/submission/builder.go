package submission

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/pkgs/audit"
	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/errs"
	"github.com/raxhvl/genesix/pkgs/gateway"
	"github.com/raxhvl/genesix/pkgs/metrics"
	"github.com/raxhvl/genesix/pkgs/proof"
	"github.com/raxhvl/genesix/pkgs/storage"
)

// Builder assembles and uploads submissions.
type Builder struct {
	gateway         *gateway.Client
	requiredChainID int64
	auditor         *audit.Recorder
}

// NewBuilder creates a builder. auditor may be nil.
func NewBuilder(gw *gateway.Client, requiredChainID int64, auditor *audit.Recorder) *Builder {
	return &Builder{
		gateway:         gw,
		requiredChainID: requiredChainID,
		auditor:         auditor,
	}
}

// ID derives the deterministic submission identifier for one
// (player, challenge, chain) tuple: keccak256 over the lowercased
// player address, challenge id and chain id. Repeat submissions land
// on the same key and overwrite the previous attempt.
func ID(playerAddr string, challengeID int, chainID int64) string {
	seed := fmt.Sprintf("%s:%d:%d", strings.ToLower(playerAddr), challengeID, chainID)
	return hex.EncodeToString(crypto.Keccak256([]byte(seed)))
}

// Build validates inputs and assembles a submission record. The
// responses slice must align positionally with the challenge's tasks.
func (b *Builder) Build(playerAddr string, chainID int64, ch *catalog.Challenge, nickname string, responses []Response) (*Submission, error) {
	if chainID != b.requiredChainID {
		return nil, errs.Newf(errs.CodeWrongChain, "connected to chain %d, submissions require chain %d", chainID, b.requiredChainID)
	}

	if strings.TrimSpace(nickname) == "" {
		return nil, errs.New(errs.CodeValidation, "nickname is required")
	}

	if !common.IsHexAddress(playerAddr) {
		return nil, errs.Newf(errs.CodeValidation, "invalid player address %q", playerAddr)
	}

	if len(responses) != len(ch.Tasks) {
		return nil, errs.Newf(errs.CodeIncompleteSubmission,
			"challenge %d has %d tasks but %d responses were provided", ch.ID, len(ch.Tasks), len(responses))
	}

	for i, task := range ch.Tasks {
		resp := responses[i]
		if resp.TaskID != task.ID {
			return nil, errs.Newf(errs.CodeIncompleteSubmission,
				"response %d is for task %d, expected task %d", i, resp.TaskID, task.ID)
		}
		if resp.Type != task.ProofType {
			return nil, errs.Newf(errs.CodeValidation,
				"response for task %d has proof type %q, task requires %q", task.ID, resp.Type, task.ProofType)
		}

		p := proof.Proof{Type: resp.Type, Answer: resp.Answer, Images: resp.Images}
		if err := p.Check(); err != nil {
			return nil, errs.Wrap(errs.CodeValidation, fmt.Sprintf("response for task %d", task.ID), err)
		}
	}

	return &Submission{
		Version:       PayloadV1,
		ChainID:       chainID,
		Nickname:      strings.TrimSpace(nickname),
		PlayerAddress: common.HexToAddress(playerAddr).Hex(),
		ChallengeID:   ch.ID,
		Responses:     responses,
		Timestamp:     time.Now().Unix(),
	}, nil
}

// Upload serializes the submission and PUTs it through the gateway.
// Returns the derived submission id. Nothing is surfaced on failure;
// the caller retries by re-invoking.
func (b *Builder) Upload(ctx context.Context, sub *Submission) (string, error) {
	id := ID(sub.PlayerAddress, sub.ChallengeID, sub.ChainID)

	body, err := json.Marshal(sub)
	if err != nil {
		return "", errs.Wrap(errs.CodeUploadFailed, "failed to serialize submission", err)
	}

	if _, err := b.gateway.Upload(ctx, sub.ChainID, id+".json", storage.FileTypeChallengeSubmission, "application/json", body); err != nil {
		return "", err
	}

	metrics.SubmissionUploads.WithLabelValues(strconv.Itoa(sub.ChallengeID)).Inc()

	log.WithFields(log.Fields{
		"submission": id,
		"player":     sub.PlayerAddress,
		"challenge":  sub.ChallengeID,
	}).Info("Submission uploaded")

	if b.auditor != nil {
		b.auditor.RecordSubmission(ctx, id, sub.PlayerAddress, sub.ChallengeID)
	}

	return id, nil
}

// Fetch loads a persisted submission by id.
func (b *Builder) Fetch(ctx context.Context, chainID int64, submissionID string) (*Submission, error) {
	var sub Submission
	if err := b.gateway.FetchSubmission(ctx, chainID, submissionID, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}
