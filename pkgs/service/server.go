package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/config"
	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/metrics"
	"github.com/raxhvl/genesix/pkgs/progress"
	"github.com/raxhvl/genesix/pkgs/storage"
)

// Server is the upload gateway and read API. It issues pre-signed URLs
// for object uploads, serves persisted submissions, NFT metadata and
// shared progress snapshots.
type Server struct {
	presigner *storage.Presigner
	catalog   *catalog.Catalog
	settings  *config.Settings
}

// NewServer wires the API against its dependencies.
func NewServer(presigner *storage.Presigner, cat *catalog.Catalog, settings *config.Settings) *Server {
	return &Server{
		presigner: presigner,
		catalog:   cat,
		settings:  settings,
	}
}

// UploadRequest is the pre-signed URL issuance payload.
type UploadRequest struct {
	ChainID     int64            `json:"chainId" binding:"required"`
	Filename    string           `json:"filename" binding:"required"`
	FileType    storage.FileType `json:"fileType" binding:"required"`
	ContentType string           `json:"contentType" binding:"required"`
}

// UploadResponse carries the issued pre-signed URL.
type UploadResponse struct {
	SignedURL string `json:"signedUrl"`
}

// NFTMetadata is the ERC-721 style metadata document served per token.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ExternalURL string         `json:"external_url"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
}

// NFTAttribute is one trait entry in NFT metadata.
type NFTAttribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// @Summary Issue pre-signed upload URL
// @Description Validates the upload request and issues a write-capable pre-signed URL
// @Tags upload
// @Accept json
// @Produce json
// @Success 200 {object} UploadResponse
// @Router /api/upload [post]
func (s *Server) IssueUploadURL(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.FileType == storage.FileTypeProofImage && !s.proofTypeAllowed(req.ContentType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("content type %q not accepted for proof images", req.ContentType),
		})
		return
	}

	signedURL, err := s.presigner.PresignPut(c.Request.Context(), req.ChainID, req.Filename, req.FileType)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chain": req.ChainID,
			"file":  req.Filename,
		}).Error("Failed to presign upload URL")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.SignedURLsIssued.Inc()
	c.JSON(http.StatusOK, UploadResponse{SignedURL: signedURL})
}

// @Summary Fetch submission
// @Description Returns the persisted submission record for one id
// @Tags submissions
// @Produce json
// @Param chainId path int true "Chain id"
// @Param id path string true "Submission id"
// @Success 200 {object} map[string]interface{}
// @Router /api/submissions/{chainId}/{id} [get]
func (s *Server) FetchSubmission(c *gin.Context) {
	chainID, err := strconv.ParseInt(c.Param("chainId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chain id"})
		return
	}
	submissionID := c.Param("id")

	data, found, err := s.presigner.FetchObject(c.Request.Context(), chainID, submissionID+".json", storage.FileTypeChallengeSubmission)
	if err != nil {
		log.WithError(err).WithField("submission", submissionID).Error("Failed to fetch submission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch submission"})
		return
	}
	if !found {
		metrics.SubmissionFetchMisses.Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("submission %s not found", submissionID)})
		return
	}

	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		log.WithError(err).WithField("submission", submissionID).Error("Stored submission is not valid JSON")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored submission is corrupt"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// @Summary NFT metadata
// @Description Returns ERC-721 metadata for a challenge completion token
// @Tags nft
// @Produce json
// @Param challengeId path int true "Challenge id"
// @Param tokenId path int true "Token id"
// @Success 200 {object} NFTMetadata
// @Router /api/token/{challengeId}/{tokenId} [get]
func (s *Server) TokenMetadata(c *gin.Context) {
	challengeID, err := strconv.Atoi(c.Param("challengeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}
	tokenID, err := strconv.ParseUint(c.Param("tokenId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id"})
		return
	}

	ch, ok := s.catalog.ChallengeByID(challengeID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown challenge %d", challengeID)})
		return
	}

	c.JSON(http.StatusOK, NFTMetadata{
		Name:        fmt.Sprintf("%s #%d", ch.NFTTitle, tokenID),
		Description: ch.NFTDescription,
		ExternalURL: ch.Homepage,
		Image:       fmt.Sprintf("%s/%d.png", s.settings.NFTImageBaseURL, ch.ID),
		Attributes: []NFTAttribute{
			{TraitType: "Day", Value: ch.ID},
			{TraitType: "Challenge", Value: ch.Title},
			{TraitType: "Max Points", Value: ch.TotalPoints()},
		},
	})
}

// @Summary Shared progress
// @Description Decodes a share token into its progress snapshot
// @Tags share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} progress.ShareSnapshot
// @Router /api/share/{token} [get]
func (s *Server) SharedProgress(c *gin.Context) {
	snap, err := progress.DecodeShareToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"days":      s.catalog.Days(),
		"timestamp": time.Now(),
	})
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !s.settings.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/upload", s.IssueUploadURL)
		api.GET("/submissions/:chainId/:id", s.FetchSubmission)
		api.GET("/token/:challengeId/:tokenId", s.TokenMetadata)
		api.GET("/nft/:challengeId/:tokenId", s.TokenMetadata)
		api.GET("/share/:token", s.SharedProgress)
	}

	router.GET("/health", s.Health)

	if s.settings.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return router
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.settings.APIHost, s.settings.APIPort)

	log.WithField("addr", addr).Info("🚀 Genesix API starting")
	return s.Router().Run(addr)
}

func (s *Server) proofTypeAllowed(contentType string) bool {
	for _, mt := range s.settings.ProofMIMETypes {
		if mt == contentType {
			return true
		}
	}
	return false
}
