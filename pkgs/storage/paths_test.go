package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	t.Run("ProofImage", func(t *testing.T) {
		key, err := ObjectPath(11155111, "abc.png", FileTypeProofImage)
		require.NoError(t, err)
		assert.Equal(t, "chain-11155111/proof-images/abc.png", key)
	})

	t.Run("ChallengeSubmission", func(t *testing.T) {
		key, err := ObjectPath(1, "deadbeef.json", FileTypeChallengeSubmission)
		require.NoError(t, err)
		assert.Equal(t, "chain-1/challenge-submissions/deadbeef.json", key)
	})

	t.Run("InvalidFileType", func(t *testing.T) {
		_, err := ObjectPath(1, "x", FileType("AVATAR"))
		assert.ErrorContains(t, err, "invalid file type")
	})
}

func TestChainDirectory(t *testing.T) {
	assert.Equal(t, "chain-10", ChainDirectory(10))
}
