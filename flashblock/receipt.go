package flashblock

import (
	"errors"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/goccy/go-json"
)

// DepositTxType is the type of op-stack deposit transactions.
const DepositTxType = 0x7e

var receiptKinds = map[uint8]string{
	ethtypes.LegacyTxType:     "Legacy",
	ethtypes.AccessListTxType: "Eip2930",
	ethtypes.DynamicFeeTxType: "Eip1559",
	ethtypes.SetCodeTxType:    "Eip7702",
	DepositTxType:             "Deposit",
}

var (
	errReceiptInvalidEnvelope = errors.New("receipt must have exactly one kind")
	errReceiptUnknownKind     = errors.New("unknown receipt kind")
)

// Receipt is the execution receipt of a transaction included in a flashblock.
//
// In JSON it is wrapped into an object keyed by the receipt kind, e.g.
// {"Eip1559": {"status": "0x1", ...}}.
type Receipt struct {
	Type                  uint8
	Status                hexutil.Uint64
	CumulativeGasUsed     hexutil.Uint64
	Logs                  []*Log
	DepositNonce          *hexutil.Uint64
	DepositReceiptVersion *hexutil.Uint64
}

type Log struct {
	Address ethcommon.Address `json:"address"`
	Topics  []ethcommon.Hash  `json:"topics"`
	Data    hexutil.Bytes     `json:"data"`
}

type receiptBody struct {
	Status                hexutil.Uint64  `json:"status"`
	CumulativeGasUsed     hexutil.Uint64  `json:"cumulativeGasUsed"`
	Logs                  []*Log          `json:"logs"`
	DepositNonce          *hexutil.Uint64 `json:"depositNonce,omitempty"`
	DepositReceiptVersion *hexutil.Uint64 `json:"depositReceiptVersion,omitempty"`
}

func (r Receipt) MarshalJSON() ([]byte, error) {
	kind, known := receiptKinds[r.Type]
	if !known {
		return nil, fmt.Errorf("%w: %d",
			errReceiptUnknownKind, r.Type,
		)
	}
	logs := r.Logs
	if logs == nil {
		logs = []*Log{}
	}
	for idx, log := range logs {
		if log == nil {
			return nil, fmt.Errorf("%w: logs[%d]", errNilEntry, idx)
		}
	}
	return json.Marshal(map[string]receiptBody{
		kind: {
			Status:                r.Status,
			CumulativeGasUsed:     r.CumulativeGasUsed,
			Logs:                  logs,
			DepositNonce:          r.DepositNonce,
			DepositReceiptVersion: r.DepositReceiptVersion,
		},
	})
}

func (r *Receipt) UnmarshalJSON(input []byte) error {
	envelope := map[string]json.RawMessage{}
	if err := json.Unmarshal(input, &envelope); err != nil {
		return err
	}
	if len(envelope) != 1 {
		return fmt.Errorf("%w: got %d",
			errReceiptInvalidEnvelope, len(envelope),
		)
	}

	for kind, raw := range envelope {
		typ, known := receiptType(kind)
		if !known {
			return fmt.Errorf("%w: %s",
				errReceiptUnknownKind, kind,
			)
		}

		var body struct {
			Status                *hexutil.Uint64 `json:"status"`
			CumulativeGasUsed     *hexutil.Uint64 `json:"cumulativeGasUsed"`
			Logs                  *[]*Log         `json:"logs"`
			DepositNonce          *hexutil.Uint64 `json:"depositNonce"`
			DepositReceiptVersion *hexutil.Uint64 `json:"depositReceiptVersion"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}

		switch {
		case body.Status == nil:
			return fmt.Errorf("%s: %w: status", kind, errMissingField)
		case body.CumulativeGasUsed == nil:
			return fmt.Errorf("%s: %w: cumulativeGasUsed", kind, errMissingField)
		case body.Logs == nil:
			return fmt.Errorf("%s: %w: logs", kind, errMissingField)
		}
		for idx, log := range *body.Logs {
			if log == nil {
				return fmt.Errorf("%s: %w: logs[%d]", kind, errNullEntry, idx)
			}
		}

		*r = Receipt{
			Type:                  typ,
			Status:                *body.Status,
			CumulativeGasUsed:     *body.CumulativeGasUsed,
			Logs:                  *body.Logs,
			DepositNonce:          body.DepositNonce,
			DepositReceiptVersion: body.DepositReceiptVersion,
		}
	}

	return nil
}

func receiptType(kind string) (uint8, bool) {
	for typ, k := range receiptKinds {
		if k == kind {
			return typ, true
		}
	}
	return 0, false
}
