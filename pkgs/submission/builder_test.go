package submission

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/errs"
	"github.com/raxhvl/genesix/pkgs/gateway"
)

const (
	testChainID = int64(11155111)
	testPlayer  = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
)

func testChallenge() *catalog.Challenge {
	return &catalog.Challenge{
		ID: 1,
		Tasks: []catalog.Task{
			{ID: 1, ProofType: catalog.ProofImage, Points: 10},
			{ID: 2, ProofType: catalog.ProofText, Points: 20},
			{ID: 3, ProofType: catalog.ProofLink, Points: 15},
		},
	}
}

func validResponses() []Response {
	return []Response{
		{TaskID: 1, Type: catalog.ProofImage, Images: []string{"https://cdn.test/a.png"}},
		{TaskID: 2, Type: catalog.ProofText, Answer: "swapped on a DEX"},
		{TaskID: 3, Type: catalog.ProofLink, Answer: "https://etherscan.io/tx/0xabc"},
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(nil, testChainID, nil)
	ch := testChallenge()

	t.Run("Valid", func(t *testing.T) {
		sub, err := b.Build(testPlayer, testChainID, ch, "raxhvl", validResponses())
		require.NoError(t, err)

		assert.Equal(t, PayloadV1, sub.Version)
		assert.Equal(t, testChainID, sub.ChainID)
		assert.Equal(t, testPlayer, sub.PlayerAddress)
		assert.Equal(t, 1, sub.ChallengeID)
		assert.Len(t, sub.Responses, 3)
		assert.NotZero(t, sub.Timestamp)
	})

	t.Run("WrongChain", func(t *testing.T) {
		_, err := b.Build(testPlayer, 1, ch, "raxhvl", validResponses())
		assert.True(t, errs.Is(err, errs.CodeWrongChain))
	})

	t.Run("EmptyNickname", func(t *testing.T) {
		_, err := b.Build(testPlayer, testChainID, ch, "   ", validResponses())
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})

	t.Run("BadPlayerAddress", func(t *testing.T) {
		_, err := b.Build("0xnothex", testChainID, ch, "raxhvl", validResponses())
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})

	t.Run("TwoOfThreeResponses", func(t *testing.T) {
		_, err := b.Build(testPlayer, testChainID, ch, "raxhvl", validResponses()[:2])
		assert.True(t, errs.Is(err, errs.CodeIncompleteSubmission))
	})

	t.Run("MisalignedTaskID", func(t *testing.T) {
		responses := validResponses()
		responses[0].TaskID = 9
		_, err := b.Build(testPlayer, testChainID, ch, "raxhvl", responses)
		assert.True(t, errs.Is(err, errs.CodeIncompleteSubmission))
	})

	t.Run("ProofTypeMismatch", func(t *testing.T) {
		responses := validResponses()
		responses[1].Type = catalog.ProofLink
		_, err := b.Build(testPlayer, testChainID, ch, "raxhvl", responses)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})

	t.Run("EmptyProof", func(t *testing.T) {
		responses := validResponses()
		responses[1].Answer = ""
		_, err := b.Build(testPlayer, testChainID, ch, "raxhvl", responses)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})
}

func TestID(t *testing.T) {
	id := ID(testPlayer, 1, testChainID)

	assert.Len(t, id, 64)

	// Case-insensitive on the player address, stable across calls.
	assert.Equal(t, id, ID("0x8ba1f109551bd432803012645ac136ddd64dba72", 1, testChainID))
	assert.Equal(t, id, ID(testPlayer, 1, testChainID))

	// Any tuple component changes the id.
	assert.NotEqual(t, id, ID(testPlayer, 2, testChainID))
	assert.NotEqual(t, id, ID(testPlayer, 1, int64(1)))
	assert.NotEqual(t, id, ID("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", 1, testChainID))
}

func TestUploadAndFetch(t *testing.T) {
	ctx := context.Background()

	var stored []byte
	expectedID := ID(testPlayer, 1, testChainID)

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		var req gateway.SignedURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, expectedID+".json", req.Filename)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gateway.SignedURLResponse{
			SignedURL: server.URL + "/objects/" + req.Filename + "?sig=test",
		})
	})
	mux.HandleFunc("/objects/", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		stored = body
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/submissions/", func(w http.ResponseWriter, r *http.Request) {
		if stored == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(stored)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	b := NewBuilder(gateway.NewClient(server.URL, 5*time.Second), testChainID, nil)

	t.Run("FetchMissing", func(t *testing.T) {
		_, err := b.Fetch(ctx, testChainID, expectedID)
		assert.True(t, errs.Is(err, errs.CodeSubmissionNotFound))
	})

	t.Run("UploadThenFetch", func(t *testing.T) {
		sub, err := b.Build(testPlayer, testChainID, testChallenge(), "raxhvl", validResponses())
		require.NoError(t, err)

		id, err := b.Upload(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, expectedID, id)

		fetched, err := b.Fetch(ctx, testChainID, id)
		require.NoError(t, err)
		assert.Equal(t, sub.PlayerAddress, fetched.PlayerAddress)
		assert.Equal(t, sub.ChallengeID, fetched.ChallengeID)
		assert.Len(t, fetched.Responses, 3)
	})
}
