package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/errs"
)

func TestProofCheck(t *testing.T) {
	t.Run("Link", func(t *testing.T) {
		assert.NoError(t, Link("https://etherscan.io/tx/0xabc").Check())
		assert.NoError(t, Link("http://example.test").Check())
		assert.Error(t, Link("ftp://example.test").Check())
		assert.Error(t, Link("not a url").Check())
		assert.Error(t, Link("").Check())
	})

	t.Run("Text", func(t *testing.T) {
		assert.NoError(t, Text("I swapped on a DEX").Check())
		assert.Error(t, Text("").Check())
		assert.Error(t, Text("   ").Check())
	})

	t.Run("Images", func(t *testing.T) {
		assert.NoError(t, Images([]string{"https://cdn.test/a.png"}).Check())
		assert.Error(t, Images(nil).Check())
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := Proof{Type: catalog.ProofType("video")}.Check()
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})
}

func TestForTask(t *testing.T) {
	t.Run("Link", func(t *testing.T) {
		task := &catalog.Task{ID: 1, ProofType: catalog.ProofLink}
		p, err := ForTask(task, "https://example.test")
		require.NoError(t, err)
		assert.Equal(t, catalog.ProofLink, p.Type)
		assert.Equal(t, "https://example.test", p.Answer)
	})

	t.Run("Text", func(t *testing.T) {
		task := &catalog.Task{ID: 2, ProofType: catalog.ProofText}
		p, err := ForTask(task, "did it")
		require.NoError(t, err)
		assert.Equal(t, catalog.ProofText, p.Type)
	})

	t.Run("ImageRejected", func(t *testing.T) {
		task := &catalog.Task{ID: 3, ProofType: catalog.ProofImage}
		_, err := ForTask(task, "whatever")
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})
}

func TestProofString(t *testing.T) {
	assert.Equal(t, "image(2)", Images([]string{"a", "b"}).String())
	assert.Equal(t, "text", Text("x").String())
}
