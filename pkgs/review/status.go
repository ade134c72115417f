package review

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/raxhvl/genesix/pkgs/catalog"
	"github.com/raxhvl/genesix/pkgs/errs"
)

// Reader is the read-only contract surface for status queries. The
// chain is the source of truth for completion: a minted token means
// the challenge was approved.
type Reader interface {
	Owner(ctx context.Context) (common.Address, error)
	Points(ctx context.Context, tokenID uint64) (uint64, error)
	TokenForChallenge(ctx context.Context, player common.Address, challengeID int) (uint64, error)
}

// ChallengeStatus is one challenge's on-chain view for a player.
type ChallengeStatus struct {
	ChallengeID int
	Minted      bool
	TokenID     uint64
	Points      uint64
}

// PlayerStatus reads the completion token and recorded points for every
// challenge in the catalog, straight from the contract.
func PlayerStatus(ctx context.Context, reader Reader, cat *catalog.Catalog, player common.Address) ([]ChallengeStatus, error) {
	challenges := cat.Challenges()
	statuses := make([]ChallengeStatus, 0, len(challenges))

	for _, ch := range challenges {
		tokenID, err := reader.TokenForChallenge(ctx, player, ch.ID)
		if err != nil {
			return nil, err
		}

		status := ChallengeStatus{ChallengeID: ch.ID, TokenID: tokenID}
		if tokenID != 0 {
			status.Minted = true
			if status.Points, err = reader.Points(ctx, tokenID); err != nil {
				return nil, err
			}
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// CheckOwner verifies account owns the contract. Role changes are
// owner-only on-chain; the check runs before sending the transaction.
func CheckOwner(ctx context.Context, reader Reader, account common.Address) error {
	owner, err := reader.Owner(ctx)
	if err != nil {
		return err
	}
	if owner != account {
		return errs.Newf(errs.CodeContractCallFailed, "%s is not the contract owner", account.Hex())
	}
	return nil
}
