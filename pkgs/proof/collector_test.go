package proof

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/gateway"
)

// newTestGateway stands up a gateway that issues signed URLs pointing
// back at itself and accepts the PUTs.
func newTestGateway(t *testing.T) (*gateway.Client, *atomic.Int64) {
	t.Helper()

	var puts atomic.Int64

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		var req gateway.SignedURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gateway.SignedURLResponse{
			SignedURL: server.URL + "/objects/" + req.Filename + "?sig=test",
		})
	})
	mux.HandleFunc("/objects/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return gateway.NewClient(server.URL, 5*time.Second), &puts
}

func TestCollectImages(t *testing.T) {
	ctx := context.Background()

	multiTask := &catalog.Task{ID: 4, ProofType: catalog.ProofImage, AllowMultipleProofs: true}
	singleTask := &catalog.Task{ID: 1, ProofType: catalog.ProofImage}

	file := func(name string) File {
		return File{Name: name, ContentType: "image/png", Data: []byte("png bytes")}
	}

	t.Run("FourthFileSkipped", func(t *testing.T) {
		gw, puts := newTestGateway(t)
		c := NewCollector(gw, 3, 1024, []string{"image/png"})

		result, err := c.CollectImages(ctx, 1, multiTask, []File{
			file("a.png"), file("b.png"), file("c.png"), file("d.png"),
		})
		require.NoError(t, err)

		assert.Len(t, result.URLs, 3)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "d.png", result.Skipped[0].Name)
		assert.Contains(t, result.Skipped[0].Reason, "file limit of 3")
		assert.Equal(t, int64(3), puts.Load())
	})

	t.Run("SingleProofTaskBoundToOne", func(t *testing.T) {
		gw, _ := newTestGateway(t)
		c := NewCollector(gw, 3, 1024, []string{"image/png"})

		result, err := c.CollectImages(ctx, 1, singleTask, []File{file("a.png"), file("b.png")})
		require.NoError(t, err)

		assert.Len(t, result.URLs, 1)
		assert.Len(t, result.Skipped, 1)
	})

	t.Run("OversizedSkipped", func(t *testing.T) {
		gw, _ := newTestGateway(t)
		c := NewCollector(gw, 3, 4, []string{"image/png"})

		result, err := c.CollectImages(ctx, 1, multiTask, []File{file("big.png")})
		require.NoError(t, err)

		assert.Empty(t, result.URLs)
		require.Len(t, result.Skipped, 1)
		assert.Contains(t, result.Skipped[0].Reason, "byte limit")
	})

	t.Run("BadContentTypeSkipped", func(t *testing.T) {
		gw, _ := newTestGateway(t)
		c := NewCollector(gw, 3, 1024, []string{"image/png"})

		result, err := c.CollectImages(ctx, 1, multiTask, []File{
			{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
		})
		require.NoError(t, err)

		assert.Empty(t, result.URLs)
		require.Len(t, result.Skipped, 1)
		assert.Contains(t, result.Skipped[0].Reason, "not accepted")
	})

	t.Run("UploadFailurePreservesPriorURLs", func(t *testing.T) {
		var requests atomic.Int64

		mux := http.NewServeMux()
		var server *httptest.Server
		mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
			// Second issuance fails; first succeeds.
			if requests.Add(1) > 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(gateway.SignedURLResponse{
				SignedURL: server.URL + "/objects/ok.png?sig=test",
			})
		})
		mux.HandleFunc("/objects/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		server = httptest.NewServer(mux)
		t.Cleanup(server.Close)

		c := NewCollector(gateway.NewClient(server.URL, 5*time.Second), 3, 1024, []string{"image/png"})

		result, err := c.CollectImages(ctx, 1, multiTask, []File{file("a.png"), file("b.png")})
		require.NoError(t, err)

		assert.Len(t, result.URLs, 1)
		require.Len(t, result.Skipped, 1)
		assert.Contains(t, result.Skipped[0].Reason, "upload failed")
	})

	t.Run("NonImageTaskRejected", func(t *testing.T) {
		gw, _ := newTestGateway(t)
		c := NewCollector(gw, 3, 1024, []string{"image/png"})

		_, err := c.CollectImages(ctx, 1, &catalog.Task{ID: 2, ProofType: catalog.ProofText}, nil)
		assert.Error(t, err)
	})

	t.Run("SignatureStrippedFromURLs", func(t *testing.T) {
		gw, _ := newTestGateway(t)
		c := NewCollector(gw, 3, 1024, []string{"image/png"})

		result, err := c.CollectImages(ctx, 1, multiTask, []File{file("a.png")})
		require.NoError(t, err)

		require.Len(t, result.URLs, 1)
		assert.NotContains(t, result.URLs[0], "sig=")
		assert.True(t, strings.HasSuffix(result.URLs[0], ".png"))
	})
}
