package redis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// KeyBuilder provides methods to generate namespaced Redis keys.
// All keys are scoped by chain id so state from different deployments
// never collides.
type KeyBuilder struct {
	ChainID int64
}

// checksumAddress converts an Ethereum address to checksummed format (EIP-55).
// If the input is not a valid Ethereum address, it returns the input unchanged.
// This ensures all Redis keys use consistent checksummed addresses.
func checksumAddress(addr string) string {
	if addr == "" {
		return addr
	}

	if common.IsHexAddress(addr) {
		return common.HexToAddress(addr).Hex()
	}

	return addr
}

// NewKeyBuilder creates a new KeyBuilder instance for a chain.
func NewKeyBuilder(chainID int64) *KeyBuilder {
	return &KeyBuilder{ChainID: chainID}
}

func (kb *KeyBuilder) prefix() string {
	return fmt.Sprintf("genesix:%d", kb.ChainID)
}

// Progress Keys

// PlayerProgress returns the key holding a player's progress record.
func (kb *KeyBuilder) PlayerProgress(playerAddr string) string {
	return fmt.Sprintf("%s:progress:%s", kb.prefix(), checksumAddress(playerAddr))
}

// Submission Keys

// SubmissionsTimeline returns the ZSET key of uploaded submission ids
// ordered by upload timestamp.
func (kb *KeyBuilder) SubmissionsTimeline() string {
	return fmt.Sprintf("%s:submissions:timeline", kb.prefix())
}

// SubmissionMeta returns the key for audit metadata of one uploaded
// submission.
func (kb *KeyBuilder) SubmissionMeta(submissionID string) string {
	return fmt.Sprintf("%s:submissions:meta:%s", kb.prefix(), submissionID)
}

// Approval Keys

// ApprovalsTimeline returns the ZSET key of finalized approvals ordered
// by approval timestamp.
func (kb *KeyBuilder) ApprovalsTimeline() string {
	return fmt.Sprintf("%s:approvals:timeline", kb.prefix())
}

// ApprovalRecord returns the key for the audit record of one approval.
func (kb *KeyBuilder) ApprovalRecord(submissionID string) string {
	return fmt.Sprintf("%s:approvals:record:%s", kb.prefix(), submissionID)
}
