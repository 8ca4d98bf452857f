package flashblock

import (
	"errors"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap/zapcore"

	"github.com/flashbots/flashblocks-ssz/utils"
)

var (
	errFailedToDecodeTransaction = errors.New("failed to decode transaction")
)

// Transactions is a log-friendly view of the transactions of a flashblock,
// one entry per raw transaction (including those that failed to decode).
type Transactions []Transaction

type Transaction struct {
	Position int

	From  *ethcommon.Address
	To    *ethcommon.Address
	Hash  ethcommon.Hash
	Nonce uint64

	Err error
}

// DecodeTransactions decodes the raw transactions of the diff.
func (d *Diff) DecodeTransactions() Transactions {
	txs := make(Transactions, 0, len(d.Transactions))
	for idx, raw := range d.Transactions {
		tx, err := decodeTransaction(raw)
		tx.Position = idx
		tx.Err = err
		txs = append(txs, tx)
	}
	return txs
}

// Undecodable counts the transactions that failed to decode.
func (txs Transactions) Undecodable() int {
	count := 0
	for _, tx := range txs {
		if tx.Err != nil {
			count++
		}
	}
	return count
}

func decodeTransaction(raw hexutil.Bytes) (res Transaction, err error) {
	defer func() {
		// ethtypes.LatestSignerForChainID panics on invalid chain ID
		if r := recover(); r != nil {
			res = Transaction{}
			err = fmt.Errorf("%w: panic: %v",
				errFailedToDecodeTransaction, r,
			)
		}
	}()

	tx := new(ethtypes.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return Transaction{}, fmt.Errorf("%w: %w",
			errFailedToDecodeTransaction, err,
		)
	}

	res = Transaction{
		To:    tx.To(),
		Hash:  tx.Hash(),
		Nonce: tx.Nonce(),
	}

	var signer ethtypes.Signer = ethtypes.HomesteadSigner{}
	if tx.ChainId() != nil && tx.ChainId().Sign() > 0 {
		signer = ethtypes.LatestSignerForChainID(tx.ChainId())
	}

	// sender stays unknown when the signature does not recover
	if from, err := ethtypes.Sender(signer, tx); err == nil {
		res.From = &from
	}

	return res, nil
}

func (tx Transaction) MarshalLogObject(e zapcore.ObjectEncoder) error {
	e.AddInt("position", tx.Position)
	if tx.Err != nil {
		e.AddString("error", tx.Err.Error())
		return nil
	}

	e.AddString("hash", tx.Hash.String())
	e.AddUint64("nonce", tx.Nonce)
	if tx.From != nil {
		e.AddString("from", tx.From.String())
	}
	if tx.To != nil {
		e.AddString("to", tx.To.String())
	}
	return nil
}

func (txs Transactions) MarshalLogArray(e zapcore.ArrayEncoder) error {
	errs := make([]error, 0)
	for _, tx := range txs {
		if err := e.AppendObject(tx); err != nil {
			errs = append(errs, err)
		}
	}
	return utils.FlattenErrors(errs)
}
