package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/pkgs/errs"
	"github.com/raxhvl/genesix/pkgs/metrics"
	"github.com/raxhvl/genesix/pkgs/storage"
)

// SignedURLRequest is the upload gateway's URL-issuance payload.
type SignedURLRequest struct {
	ChainID     int64            `json:"chainId"`
	Filename    string           `json:"filename"`
	FileType    storage.FileType `json:"fileType"`
	ContentType string           `json:"contentType"`
}

// SignedURLResponse carries the issued pre-signed URL.
type SignedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

// Client talks to the upload gateway and the submission fetch API.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a gateway client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
	}
}

// SignedURL requests a write-capable pre-signed URL for one object.
func (c *Client) SignedURL(ctx context.Context, req SignedURLRequest) (string, error) {
	var out SignedURLResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.baseURL + "/api/upload")
	if err != nil {
		return "", errs.Wrap(errs.CodeUploadFailed, "signed URL request failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", errs.Newf(errs.CodeUploadFailed, "signed URL request returned %d", resp.StatusCode())
	}
	if out.SignedURL == "" {
		return "", errs.New(errs.CodeUploadFailed, "gateway returned empty signed URL")
	}

	return out.SignedURL, nil
}

// Put uploads a body to a pre-signed URL.
func (c *Client) Put(ctx context.Context, signedURL, contentType string, body []byte) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Put(signedURL)
	if err != nil {
		return errs.Wrap(errs.CodeUploadFailed, "upload PUT failed", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return errs.Newf(errs.CodeUploadFailed, "upload PUT returned %d", resp.StatusCode())
	}

	return nil
}

// Upload issues a signed URL for the object and PUTs the body through
// it. Returns the signed URL the object was written to.
func (c *Client) Upload(ctx context.Context, chainID int64, filename string, fileType storage.FileType, contentType string, body []byte) (string, error) {
	timer := prometheus.NewTimer(metrics.UploadDuration)
	defer timer.ObserveDuration()

	signedURL, err := c.SignedURL(ctx, SignedURLRequest{
		ChainID:     chainID,
		Filename:    filename,
		FileType:    fileType,
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	if err := c.Put(ctx, signedURL, contentType, body); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"chain": chainID,
		"file":  filename,
		"type":  fileType,
	}).Debug("Uploaded object through gateway")

	return signedURL, nil
}

// FetchSubmission retrieves a persisted submission record into out.
// 404 and any other non-2xx map to SubmissionNotFound; a transport
// failure is not a missing record and comes back as a plain error.
func (c *Client) FetchSubmission(ctx context.Context, chainID int64, submissionID string, out interface{}) error {
	url := fmt.Sprintf("%s/api/submissions/%d/%s", c.baseURL, chainID, submissionID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(url)
	if err != nil {
		return fmt.Errorf("submission fetch failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return errs.Newf(errs.CodeSubmissionNotFound, "submission %s not found (status %d)", submissionID, resp.StatusCode())
	}

	return nil
}
