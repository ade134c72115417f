package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exposed on /metrics. Registered once at package init.
var (
	SignedURLsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genesix_signed_urls_issued_total",
		Help: "Pre-signed upload URLs issued by the gateway",
	})

	SubmissionUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genesix_submission_uploads_total",
		Help: "Submission records uploaded, by challenge",
	}, []string{"challenge"})

	SubmissionFetchMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genesix_submission_fetch_misses_total",
		Help: "Submission lookups that found no record",
	})

	ProofsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genesix_proofs_skipped_total",
		Help: "Proof files rejected before upload, by reason",
	}, []string{"reason"})

	ApprovalsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genesix_approvals_finalized_total",
		Help: "Submission approvals mined on-chain",
	})

	ApprovalFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genesix_approval_failures_total",
		Help: "Approval transactions that failed or reverted",
	})

	UploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "genesix_upload_duration_seconds",
		Help:    "Wall time of object uploads through the gateway",
		Buckets: prometheus.DefBuckets,
	})
)
