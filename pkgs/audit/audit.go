package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	keys "github.com/raxhvl/genesix/pkgs/redis"
)

// recordTTL bounds how long per-record audit metadata is retained.
// Timelines are trimmed to the same horizon on each write.
const recordTTL = 30 * 24 * time.Hour

// Recorder writes an audit trail of uploads and approvals to Redis.
// All writes are best-effort: a failed audit write is logged and never
// surfaces to the caller, since the object store and the contract are
// the sources of truth.
type Recorder struct {
	client *redis.Client
	keys   *keys.KeyBuilder
}

// NewRecorder creates a recorder scoped to one chain.
func NewRecorder(client *redis.Client, chainID int64) *Recorder {
	return &Recorder{
		client: client,
		keys:   keys.NewKeyBuilder(chainID),
	}
}

// SubmissionRecord is the audit metadata stored per uploaded submission.
type SubmissionRecord struct {
	SubmissionID  string `json:"submissionId"`
	PlayerAddress string `json:"playerAddress"`
	ChallengeID   int    `json:"challengeId"`
	UploadedAt    int64  `json:"uploadedAt"`
}

// ApprovalRecord is the audit metadata stored per finalized approval.
type ApprovalRecord struct {
	SubmissionID  string   `json:"submissionId"`
	PlayerAddress string   `json:"playerAddress"`
	ChallengeID   int      `json:"challengeId"`
	Points        []uint64 `json:"points"`
	TxHash        string   `json:"txHash"`
	ApprovedAt    int64    `json:"approvedAt"`
}

// RecordSubmission appends an upload to the submissions timeline and
// stores its metadata.
func (r *Recorder) RecordSubmission(ctx context.Context, submissionID, playerAddr string, challengeID int) {
	now := time.Now()
	rec := SubmissionRecord{
		SubmissionID:  submissionID,
		PlayerAddress: playerAddr,
		ChallengeID:   challengeID,
		UploadedAt:    now.Unix(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Error("Failed to serialize submission audit record")
		return
	}

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, r.keys.SubmissionsTimeline(), redis.Z{
		Score:  float64(now.Unix()),
		Member: submissionID,
	})
	pipe.ZRemRangeByScore(ctx, r.keys.SubmissionsTimeline(), "0",
		formatScore(now.Add(-recordTTL).Unix()))
	pipe.Set(ctx, r.keys.SubmissionMeta(submissionID), data, recordTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).WithField("submission", submissionID).Warn("Failed to record submission audit entry")
	}
}

// RecordApproval appends a finalized approval to the approvals timeline
// and stores its record.
func (r *Recorder) RecordApproval(ctx context.Context, rec ApprovalRecord) {
	now := time.Now()
	if rec.ApprovedAt == 0 {
		rec.ApprovedAt = now.Unix()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Error("Failed to serialize approval audit record")
		return
	}

	pipe := r.client.Pipeline()
	pipe.ZAdd(ctx, r.keys.ApprovalsTimeline(), redis.Z{
		Score:  float64(rec.ApprovedAt),
		Member: rec.SubmissionID,
	})
	pipe.ZRemRangeByScore(ctx, r.keys.ApprovalsTimeline(), "0",
		formatScore(now.Add(-recordTTL).Unix()))
	pipe.Set(ctx, r.keys.ApprovalRecord(rec.SubmissionID), data, recordTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).WithField("submission", rec.SubmissionID).Warn("Failed to record approval audit entry")
	}
}

// RecentSubmissions returns up to count submission ids most recently
// uploaded, newest first.
func (r *Recorder) RecentSubmissions(ctx context.Context, count int64) ([]string, error) {
	return r.client.ZRevRange(ctx, r.keys.SubmissionsTimeline(), 0, count-1).Result()
}

// Approval loads the audit record of one finalized approval.
func (r *Recorder) Approval(ctx context.Context, submissionID string) (*ApprovalRecord, bool, error) {
	data, err := r.client.Get(ctx, r.keys.ApprovalRecord(submissionID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rec ApprovalRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, false, err
	}

	return &rec, true, nil
}

func formatScore(unix int64) string {
	return strconv.FormatInt(unix, 10)
}
