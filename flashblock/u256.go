package flashblock

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

const sizeU256 = 32

var (
	errU256Overflow = errors.New("quantity does not fit into 256 bits")
)

// U256 is an unsigned 256-bit quantity. It is hex-encoded in JSON and takes
// 32 little-endian bytes in SSZ.
type U256 uint256.Int

func NewU256(v uint64) U256 {
	return U256(*uint256.NewInt(v))
}

func (u *U256) Int() *uint256.Int {
	return (*uint256.Int)(u)
}

func (u U256) String() string {
	return u.Int().Hex()
}

func (u U256) MarshalText() ([]byte, error) {
	return []byte(u.Int().Hex()), nil
}

func (u *U256) UnmarshalText(input []byte) error {
	b, err := hexutil.DecodeBig(string(input))
	if err != nil {
		return err
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return fmt.Errorf("%w: %s",
			errU256Overflow, input,
		)
	}
	*u = U256(*v)
	return nil
}

// marshalU256 appends the little-endian form of u to dst.
func marshalU256(dst []byte, u *U256) []byte {
	be := u.Int().Bytes32()
	for i := sizeU256 - 1; i >= 0; i-- {
		dst = append(dst, be[i])
	}
	return dst
}

func unmarshalU256(buf []byte) U256 {
	var be [sizeU256]byte
	for i := 0; i < sizeU256; i++ {
		be[i] = buf[sizeU256-1-i]
	}
	var z uint256.Int
	z.SetBytes32(be[:])
	return U256(z)
}
