package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/config"
	"github.com/raxhvl/genesix/pkgs/audit"
	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/contract"
	"github.com/raxhvl/genesix/pkgs/gateway"
	genredis "github.com/raxhvl/genesix/pkgs/redis"
	"github.com/raxhvl/genesix/pkgs/review"
	"github.com/raxhvl/genesix/pkgs/submission"
)

var (
	statusPlayer   = flag.String("status", "", "player address to report on-chain completion for")
	submissionID   = flag.String("submission", "", "submission id to review")
	approveTasks   = flag.String("approve", "", "comma-separated task ids to approve")
	directPlayer   = flag.String("player", "", "player address for a direct award")
	directNick     = flag.String("nickname", "", "player nickname for a direct award")
	directTask     = flag.String("task", "", "challenge/task for a direct award, e.g. 2/6")
	directPoints   = flag.Uint64("points", 0, "points for a direct award")
	addApprover    = flag.String("add-approver", "", "grant the approver role to an address")
	removeApprover = flag.String("remove-approver", "", "revoke the approver role from an address")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment variables")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	settings := config.SettingsObj
	chainID := settings.SubmissionChainID

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load challenge catalog: %v", err)
	}

	contractAddr, ok := settings.ContractAddress(chainID)
	if !ok {
		log.Fatalf("No contract configured for chain %d", chainID)
	}

	chain, err := contract.NewClient(settings.ChainRPCURL, contractAddr, settings.ReviewerPrivateKey, chainID)
	if err != nil {
		log.Fatalf("Failed to connect to chain: %v", err)
	}
	defer chain.Close()

	var auditor *audit.Recorder
	if redisClient, err := genredis.NewRedisClient(); err != nil {
		log.WithError(err).Warn("Redis unavailable, approvals will not be audited")
	} else {
		auditor = audit.NewRecorder(redisClient, chainID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), settings.ContractQueryTimeout)
	defer cancel()

	switch {
	case *addApprover != "":
		runRoleChange(ctx, chain, *addApprover, chain.AddApprover, "Approver added")
	case *removeApprover != "":
		runRoleChange(ctx, chain, *removeApprover, chain.RemoveApprover, "Approver removed")
	case *statusPlayer != "":
		runStatus(ctx, chain, cat)
	case *directPlayer != "":
		runDirectAward(ctx, chain, auditor, cat)
	case *submissionID != "":
		runReview(ctx, chain, auditor, cat, settings, chainID)
	default:
		flag.Usage()
		log.Fatal("Nothing to do: pass -submission, -status, -player, -add-approver or -remove-approver")
	}
}

func runRoleChange(ctx context.Context, chain *contract.Client, addr string, op func(context.Context, common.Address) (*contract.TxResult, error), okMsg string) {
	if !common.IsHexAddress(addr) {
		log.Fatalf("Invalid address %q", addr)
	}

	if err := review.CheckOwner(ctx, chain, chain.SignerAddress()); err != nil {
		log.Fatalf("Role change refused: %v", err)
	}

	result, err := op(ctx, common.HexToAddress(addr))
	if err != nil {
		log.Fatalf("Role change failed: %v", err)
	}

	log.WithField("tx_hash", result.TxHash).Info(okMsg)
}

func runStatus(ctx context.Context, chain *contract.Client, cat *catalog.Catalog) {
	if !common.IsHexAddress(*statusPlayer) {
		log.Fatalf("Invalid player address %q", *statusPlayer)
	}

	statuses, err := review.PlayerStatus(ctx, chain, cat, common.HexToAddress(*statusPlayer))
	if err != nil {
		log.Fatalf("Status query failed: %v", err)
	}

	fmt.Printf("On-chain status for %s\n", *statusPlayer)
	for _, st := range statuses {
		if st.Minted {
			fmt.Printf("  Day %d: token #%d, %d points\n", st.ChallengeID, st.TokenID, st.Points)
		} else {
			fmt.Printf("  Day %d: not approved\n", st.ChallengeID)
		}
	}
}

func runDirectAward(ctx context.Context, chain *contract.Client, auditor *audit.Recorder, cat *catalog.Catalog) {
	if !common.IsHexAddress(*directPlayer) {
		log.Fatalf("Invalid player address %q", *directPlayer)
	}
	if *directPoints == 0 {
		log.Fatal("Direct awards require -points")
	}

	ref, err := parseTaskRef(*directTask)
	if err != nil {
		log.Fatalf("Invalid -task: %v", err)
	}

	ch, ok := cat.ChallengeByID(ref.ChallengeID)
	if !ok {
		log.Fatalf("Unknown challenge %d", ref.ChallengeID)
	}
	if _, ok := ch.Task(ref.TaskID); !ok {
		log.Fatalf("Challenge %d has no task %d", ref.ChallengeID, ref.TaskID)
	}

	result, err := review.DirectAward(ctx, chain, auditor, common.HexToAddress(*directPlayer), *directNick, ref, *directPoints)
	if err != nil {
		log.Fatalf("Direct award failed: %v", err)
	}

	log.WithField("tx_hash", result.TxHash).Info("Direct award finalized")
}

func runReview(ctx context.Context, chain *contract.Client, auditor *audit.Recorder, cat *catalog.Catalog, settings *config.Settings, chainID int64) {
	gw := gateway.NewClient(settings.GatewayBaseURL, settings.HTTPTimeout)
	builder := submission.NewBuilder(gw, chainID, nil)

	session := review.NewSession(chain, builder, cat, auditor, chainID)

	sub, err := session.Load(ctx, *submissionID)
	if err != nil {
		log.Fatalf("Failed to load submission: %v", err)
	}

	fmt.Printf("Submission %s\n", *submissionID)
	fmt.Printf("  Player:    %s (%s)\n", sub.Nickname, sub.PlayerAddress)
	fmt.Printf("  Challenge: %d\n", sub.ChallengeID)
	for _, resp := range sub.Responses {
		fmt.Printf("  Task %d [%s]: %s %v\n", resp.TaskID, resp.Type, resp.Answer, resp.Images)
	}

	for _, raw := range strings.Split(*approveTasks, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		taskID, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Invalid task id %q in -approve", raw)
		}
		if err := session.MarkTask(taskID, true); err != nil {
			log.Fatalf("Failed to mark task %d: %v", taskID, err)
		}
	}

	log.WithFields(log.Fields{
		"approved_points": session.ApprovedPoints(),
		"total_points":    session.TotalPoints(),
		"vector":          session.ApprovalVector(),
	}).Info("Finalizing review")

	result, err := session.Finalize(ctx)
	if err != nil {
		log.Fatalf("Finalize failed: %v", err)
	}

	log.WithFields(log.Fields{
		"tx_hash":  result.TxHash,
		"gas_used": result.GasUsed,
		"block":    result.BlockNumber,
	}).Info("Review finalized")
}

func parseTaskRef(raw string) (catalog.TaskRef, error) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return catalog.TaskRef{}, fmt.Errorf("expected challenge/task, got %q", raw)
	}

	challengeID, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return catalog.TaskRef{}, fmt.Errorf("invalid challenge id: %w", err)
	}
	taskID, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return catalog.TaskRef{}, fmt.Errorf("invalid task id: %w", err)
	}

	return catalog.TaskRef{ChallengeID: challengeID, TaskID: taskID}, nil
}
