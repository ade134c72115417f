package storage

import (
	"fmt"
)

// FileType selects the object-storage subtree a file lands in.
type FileType string

const (
	FileTypeProofImage          FileType = "PROOF_IMAGE"
	FileTypeChallengeSubmission FileType = "CHALLENGE_SUBMISSION"
)

// ChainDirectory returns the per-chain top-level prefix.
func ChainDirectory(chainID int64) string {
	return fmt.Sprintf("chain-%d", chainID)
}

// ObjectPath builds the bucket key for a file. Layout:
// chain-{chainId}/{proof-images|challenge-submissions}/{filename}
func ObjectPath(chainID int64, filename string, fileType FileType) (string, error) {
	var subdir string
	switch fileType {
	case FileTypeProofImage:
		subdir = "proof-images"
	case FileTypeChallengeSubmission:
		subdir = "challenge-submissions"
	default:
		return "", fmt.Errorf("invalid file type %q", fileType)
	}

	return fmt.Sprintf("%s/%s/%s", ChainDirectory(chainID), subdir, filename), nil
}
