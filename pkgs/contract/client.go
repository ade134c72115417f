package contract

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"

	"github.com/raxhvl/genesix/pkgs/errs"
)

// Client binds to the challenge tracker contract on one chain.
// The signing key is optional: without it the client serves reads only.
type Client struct {
	client       *ethclient.Client
	contractAddr common.Address
	abi          abi.ABI
	privateKey   *ecdsa.PrivateKey
	signerAddr   common.Address
	chainID      *big.Int
}

// TxResult holds the outcome of a state-changing call.
type TxResult struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
	Error       error
}

// NewClient connects to the chain and binds the contract. Pass an empty
// signerPrivateKey for a read-only client.
func NewClient(rpcURL string, contractAddr common.Address, signerPrivateKey string, chainID int64) (*Client, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum client: %w", err)
	}

	trackerABI, err := abi.JSON(strings.NewReader(ChallengeTrackerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge tracker ABI: %w", err)
	}

	c := &Client{
		client:       client,
		contractAddr: contractAddr,
		abi:          trackerABI,
		chainID:      big.NewInt(chainID),
	}

	if signerPrivateKey != "" {
		privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(signerPrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signer private key: %w", err)
		}
		c.privateKey = privateKey
		c.signerAddr = crypto.PubkeyToAddress(privateKey.PublicKey)
	}

	return c, nil
}

// SignerAddress returns the address derived from the signing key, or
// the zero address for a read-only client.
func (c *Client) SignerAddress() common.Address {
	return c.signerAddr
}

// call executes a read against the contract and unpacks the outputs.
func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, fmt.Sprintf("failed to pack %s call", method), err)
	}

	output, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contractAddr,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, fmt.Sprintf("%s call failed", method), err)
	}

	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, fmt.Sprintf("failed to unpack %s result", method), err)
	}

	return values, nil
}

// Owner returns the contract owner.
func (c *Client) Owner(ctx context.Context) (common.Address, error) {
	values, err := c.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return values[0].(common.Address), nil
}

// IsApprover reports whether the account holds the approver role.
func (c *Client) IsApprover(ctx context.Context, account common.Address) (bool, error) {
	values, err := c.call(ctx, "isApprover", account)
	if err != nil {
		return false, err
	}
	return values[0].(bool), nil
}

// Deadline returns the unix timestamp after which approvals close.
func (c *Client) Deadline(ctx context.Context) (int64, error) {
	values, err := c.call(ctx, "deadline")
	if err != nil {
		return 0, err
	}
	return values[0].(*big.Int).Int64(), nil
}

// Points returns the points recorded on one completion token.
func (c *Client) Points(ctx context.Context, tokenID uint64) (uint64, error) {
	values, err := c.call(ctx, "getPoints", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return 0, err
	}
	return values[0].(*big.Int).Uint64(), nil
}

// TokenForChallenge returns the completion token id minted for a player
// on one challenge, zero when none exists.
func (c *Client) TokenForChallenge(ctx context.Context, player common.Address, challengeID int) (uint64, error) {
	values, err := c.call(ctx, "getTokenForChallenge", player, big.NewInt(int64(challengeID)))
	if err != nil {
		return 0, err
	}
	return values[0].(*big.Int).Uint64(), nil
}

// ApproveSubmission records a reviewed submission on-chain, crediting
// the player with the per-task point vector. Blocks until mined.
func (c *Client) ApproveSubmission(ctx context.Context, challengeID int, submissionID string, player common.Address, nickname string, points []uint64) (*TxResult, error) {
	vector := make([]*big.Int, len(points))
	for i, p := range points {
		vector[i] = new(big.Int).SetUint64(p)
	}

	data, err := c.abi.Pack("approveSubmission", big.NewInt(int64(challengeID)), submissionID, player, nickname, vector)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to pack approveSubmission call", err)
	}

	return c.transact(ctx, data, log.Fields{
		"player":     player.Hex(),
		"challenge":  challengeID,
		"submission": submissionID,
	})
}

// AddApprover grants the approver role. Owner only.
func (c *Client) AddApprover(ctx context.Context, account common.Address) (*TxResult, error) {
	data, err := c.abi.Pack("addApprover", account)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to pack addApprover call", err)
	}
	return c.transact(ctx, data, log.Fields{"account": account.Hex()})
}

// RemoveApprover revokes the approver role. Owner only.
func (c *Client) RemoveApprover(ctx context.Context, account common.Address) (*TxResult, error) {
	data, err := c.abi.Pack("removeApprover", account)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to pack removeApprover call", err)
	}
	return c.transact(ctx, data, log.Fields{"account": account.Hex()})
}

// transact signs, sends and waits for one state-changing call.
func (c *Client) transact(ctx context.Context, data []byte, fields log.Fields) (*TxResult, error) {
	if c.privateKey == nil {
		return nil, errs.New(errs.CodeContractCallFailed, "client has no signing key")
	}

	msg := ethereum.CallMsg{
		From: c.signerAddr,
		To:   &c.contractAddr,
		Data: data,
	}
	gasLimit, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to estimate gas", err)
	}
	// Add 20% buffer
	gasLimit = uint64(float64(gasLimit) * 1.2)

	nonce, err := c.client.PendingNonceAt(ctx, c.signerAddr)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to get nonce", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to get gas price", err)
	}

	tx := types.NewTransaction(nonce, c.contractAddr, big.NewInt(0), gasLimit, gasPrice, data)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return nil, errs.Wrap(errs.CodeContractCallFailed, "failed to sign transaction", err)
	}

	log.WithFields(fields).WithFields(log.Fields{
		"tx_hash":   signedTx.Hash().Hex(),
		"gas_limit": gasLimit,
		"gas_price": gasPrice.String(),
		"nonce":     nonce,
	}).Info("📤 Sending contract transaction")

	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return &TxResult{
			Success: false,
			Error:   err,
		}, errs.Wrap(errs.CodeContractCallFailed, "failed to send transaction", err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, signedTx)
	if err != nil {
		return &TxResult{
			TxHash:  signedTx.Hash().Hex(),
			Success: false,
			Error:   err,
		}, errs.Wrap(errs.CodeContractCallFailed, "transaction failed", err)
	}

	result := &TxResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}

	if result.Success {
		log.WithFields(fields).WithFields(log.Fields{
			"tx_hash":      result.TxHash,
			"block_number": result.BlockNumber,
			"gas_used":     result.GasUsed,
		}).Info("✅ Contract transaction mined")
	} else {
		result.Error = fmt.Errorf("transaction reverted")
		log.WithFields(fields).WithField("tx_hash", result.TxHash).Error("❌ Contract transaction reverted")
		return result, errs.Wrap(errs.CodeContractCallFailed, "transaction reverted", result.Error)
	}

	return result, nil
}

// ApproveSubmissionAsync runs ApproveSubmission in the background and
// delivers the result on the returned channel.
func (c *Client) ApproveSubmissionAsync(ctx context.Context, challengeID int, submissionID string, player common.Address, nickname string, points []uint64) <-chan *TxResult {
	resultChan := make(chan *TxResult, 1)

	go func() {
		defer close(resultChan)
		result, err := c.ApproveSubmission(ctx, challengeID, submissionID, player, nickname, points)
		if err != nil {
			if result == nil {
				result = &TxResult{Success: false, Error: err}
			}
			resultChan <- result
			return
		}
		resultChan <- result
	}()

	return resultChan
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
