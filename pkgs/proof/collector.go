package proof

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/gateway"
	"github.com/raxhvl/genesix/pkgs/metrics"
	"github.com/raxhvl/genesix/pkgs/storage"
)

// File is one candidate proof image supplied by the player.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// SkippedFile records why a file was not uploaded.
type SkippedFile struct {
	Name   string
	Reason string
}

// Result holds the uploaded proof URLs in submission order plus the
// files that were skipped. URLs collected before a later failure are
// always preserved.
type Result struct {
	URLs    []string
	Skipped []SkippedFile
}

// Collector uploads proof images through the upload gateway, one file
// at a time. It holds no state between batches.
type Collector struct {
	gateway   *gateway.Client
	maxFiles  int
	maxSize   int64
	mimeTypes map[string]bool
}

// NewCollector creates a collector with the configured limits.
func NewCollector(gw *gateway.Client, maxFiles int, maxSize int64, mimeTypes []string) *Collector {
	allowed := make(map[string]bool, len(mimeTypes))
	for _, mt := range mimeTypes {
		allowed[mt] = true
	}

	return &Collector{
		gateway:   gw,
		maxFiles:  maxFiles,
		maxSize:   maxSize,
		mimeTypes: allowed,
	}
}

// limitFor returns the upload bound for a task: one image by default,
// the configured maximum when the task allows multiple proofs.
func (c *Collector) limitFor(task *catalog.Task) int {
	if task.AllowMultipleProofs {
		return c.maxFiles
	}
	return 1
}

// CollectImages validates and uploads a batch of files sequentially.
// Files over the size limit, with an unaccepted content type, beyond
// the task's file limit, or whose upload fails are reported in
// Result.Skipped; collection continues with the remaining files.
func (c *Collector) CollectImages(ctx context.Context, chainID int64, task *catalog.Task, files []File) (Result, error) {
	if task.ProofType != catalog.ProofImage {
		return Result{}, fmt.Errorf("task %d does not take image proof", task.ID)
	}

	limit := c.limitFor(task)
	result := Result{}

	for _, f := range files {
		if len(result.URLs) >= limit {
			metrics.ProofsSkipped.WithLabelValues("limit").Inc()
			result.Skipped = append(result.Skipped, SkippedFile{
				Name:   f.Name,
				Reason: fmt.Sprintf("file limit of %d reached", limit),
			})
			continue
		}

		if reason, label, ok := c.validateFile(f); !ok {
			metrics.ProofsSkipped.WithLabelValues(label).Inc()
			result.Skipped = append(result.Skipped, SkippedFile{Name: f.Name, Reason: reason})
			continue
		}

		objectName := uuid.New().String() + extensionFor(f.ContentType)
		signedURL, err := c.gateway.Upload(ctx, chainID, objectName, storage.FileTypeProofImage, f.ContentType, f.Data)
		if err != nil {
			log.WithError(err).WithField("file", f.Name).Warn("Proof image upload failed")
			metrics.ProofsSkipped.WithLabelValues("upload").Inc()
			result.Skipped = append(result.Skipped, SkippedFile{
				Name:   f.Name,
				Reason: fmt.Sprintf("upload failed: %v", err),
			})
			continue
		}

		result.URLs = append(result.URLs, durableURL(signedURL))
	}

	return result, nil
}

func (c *Collector) validateFile(f File) (reason, label string, ok bool) {
	if int64(len(f.Data)) > c.maxSize {
		return fmt.Sprintf("file exceeds %d byte limit", c.maxSize), "size", false
	}
	if !c.mimeTypes[f.ContentType] {
		return fmt.Sprintf("content type %q not accepted", f.ContentType), "content_type", false
	}
	return "", "", true
}

// durableURL strips the signature query from a pre-signed URL, leaving
// the stable object URL that goes into the submission.
func durableURL(signedURL string) string {
	u, err := url.Parse(signedURL)
	if err != nil {
		return signedURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
