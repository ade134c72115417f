package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Settings holds all configuration for the challenge tracker
type Settings struct {
	// Chain Configuration
	SubmissionChainID int64                    // Chain players must be connected to when submitting
	ChainRPCURL       string                   // JSON-RPC endpoint for contract reads/writes
	ContractAddresses map[int64]common.Address // Points contract per chain

	// Reviewer Identity
	ReviewerPrivateKey string // Hex-encoded key used by the reviewer CLI

	// Redis Configuration
	RedisHost     string
	RedisPort     string
	RedisDB       int
	RedisPassword string

	// Object Storage (pre-signed URL issuance)
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioUseSSL       bool
	SignedURLLifetime time.Duration

	// Upload Gateway (client side)
	GatewayBaseURL string

	// Proof Upload Limits
	MaxProofFiles    int
	MaxProofFileSize int64
	ProofMIMETypes   []string

	// Progress Persistence
	ProgressFilePath string // File-backed store location (local progress record)

	// NFT Metadata
	NFTImageBaseURL string

	// API Configuration
	APIHost string
	APIPort int

	// Monitoring & Debugging
	MetricsEnabled bool
	LogLevel       string
	DebugMode      bool

	// Performance Tuning
	ContractQueryTimeout time.Duration
	HTTPTimeout          time.Duration
}

var (
	// SettingsObj is the global settings instance
	SettingsObj *Settings
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SUBMISSION_CHAIN_ID", 1)
	v.SetDefault("CHAIN_RPC_URL", "http://localhost:8545")
	v.SetDefault("CONTRACT_ADDRESSES", "")
	v.SetDefault("REVIEWER_PRIVATE_KEY", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET_NAME", "genesix")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("SIGNED_URL_LIFETIME_SECONDS", 7*24*60*60)
	v.SetDefault("GATEWAY_BASE_URL", "http://localhost:8080")
	v.SetDefault("MAX_PROOF_FILES", 3)
	v.SetDefault("MAX_PROOF_FILE_SIZE", 3*1024*1024)
	v.SetDefault("PROOF_MIME_TYPES", "image/png,image/jpeg,image/gif,image/webp")
	v.SetDefault("PROGRESS_FILE_PATH", "./genesix-progress.json")
	v.SetDefault("NFT_IMAGE_BASE_URL", "https://genesix.raxhvl.com/nft")
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEBUG_MODE", false)
	v.SetDefault("CONTRACT_QUERY_TIMEOUT", 30)
	v.SetDefault("HTTP_TIMEOUT", 30)

	SettingsObj = &Settings{
		SubmissionChainID:  v.GetInt64("SUBMISSION_CHAIN_ID"),
		ChainRPCURL:        v.GetString("CHAIN_RPC_URL"),
		ReviewerPrivateKey: v.GetString("REVIEWER_PRIVATE_KEY"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		MinioEndpoint:     v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:    v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:    v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:       v.GetString("MINIO_BUCKET_NAME"),
		MinioUseSSL:       v.GetBool("MINIO_USE_SSL"),
		SignedURLLifetime: time.Duration(v.GetInt("SIGNED_URL_LIFETIME_SECONDS")) * time.Second,

		GatewayBaseURL: strings.TrimRight(v.GetString("GATEWAY_BASE_URL"), "/"),

		MaxProofFiles:    v.GetInt("MAX_PROOF_FILES"),
		MaxProofFileSize: v.GetInt64("MAX_PROOF_FILE_SIZE"),
		ProofMIMETypes:   splitAndTrim(v.GetString("PROOF_MIME_TYPES")),

		ProgressFilePath: v.GetString("PROGRESS_FILE_PATH"),

		NFTImageBaseURL: strings.TrimRight(v.GetString("NFT_IMAGE_BASE_URL"), "/"),

		APIHost: v.GetString("API_HOST"),
		APIPort: v.GetInt("API_PORT"),

		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DebugMode:      v.GetBool("DEBUG_MODE"),

		ContractQueryTimeout: time.Duration(v.GetInt("CONTRACT_QUERY_TIMEOUT")) * time.Second,
		HTTPTimeout:          time.Duration(v.GetInt("HTTP_TIMEOUT")) * time.Second,
	}

	if err := loadContractAddresses(v.GetString("CONTRACT_ADDRESSES")); err != nil {
		return fmt.Errorf("failed to load contract addresses: %w", err)
	}

	configureLogging()

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logConfigSummary()

	return nil
}

// loadContractAddresses parses CONTRACT_ADDRESSES entries of the form
// "chainId:address" separated by commas, e.g.
// "1:0xAbc...,11155111:0xDef..."
func loadContractAddresses(raw string) error {
	SettingsObj.ContractAddresses = make(map[int64]common.Address)

	if raw == "" {
		return nil
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(strings.Trim(entry, "\""))
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("malformed contract address entry: %q", entry)
		}

		chainID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chain id in entry %q: %w", entry, err)
		}

		addr := strings.TrimSpace(parts[1])
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid contract address in entry %q", entry)
		}

		SettingsObj.ContractAddresses[chainID] = common.HexToAddress(addr)
	}

	return nil
}

// ContractAddress returns the points contract address for a chain.
func (s *Settings) ContractAddress(chainID int64) (common.Address, bool) {
	addr, ok := s.ContractAddresses[chainID]
	return addr, ok
}

// configureLogging sets up the logger based on configuration
func configureLogging() {
	switch strings.ToLower(SettingsObj.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn", "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if SettingsObj.DebugMode {
		log.SetLevel(log.DebugLevel)
	}

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

// validateConfig validates the loaded configuration
func validateConfig() error {
	if SettingsObj.MaxProofFiles <= 0 {
		return fmt.Errorf("MAX_PROOF_FILES must be positive")
	}

	if SettingsObj.MaxProofFileSize <= 0 {
		return fmt.Errorf("MAX_PROOF_FILE_SIZE must be positive")
	}

	if len(SettingsObj.ContractAddresses) == 0 {
		log.Warn("No contract addresses configured - approval submission will not work")
	}

	if SettingsObj.MinioAccessKey == "" || SettingsObj.MinioSecretKey == "" {
		log.Warn("Object storage credentials missing - signed URL issuance will fail")
	}

	return nil
}

// logConfigSummary logs a summary of the configuration
func logConfigSummary() {
	log.Info("=== Configuration Loaded ===")
	log.Infof("Submission Chain: %d", SettingsObj.SubmissionChainID)
	log.Infof("Contracts: %d chain(s) configured", len(SettingsObj.ContractAddresses))
	log.Infof("Redis: %s:%s (DB %d)", SettingsObj.RedisHost, SettingsObj.RedisPort, SettingsObj.RedisDB)
	log.Infof("Object Storage: %s (bucket %s)", SettingsObj.MinioEndpoint, SettingsObj.MinioBucket)
	log.Infof("Upload Limits: %d file(s), %d bytes each", SettingsObj.MaxProofFiles, SettingsObj.MaxProofFileSize)
	log.Infof("API: %s:%d", SettingsObj.APIHost, SettingsObj.APIPort)
	log.Info("============================")
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
