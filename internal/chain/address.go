// internal/chain/address.go
package chain

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLength is the size in bytes of every Address.
const AddressLength = 32

// ErrInvalidAddress is returned when a string or byte slice cannot be decoded into an Address.
var ErrInvalidAddress = errors.New("invalid address")

// Address identifies a wallet, a token mint, a token account or a program.
// Wallet addresses are ed25519 public keys; derived addresses are never valid curve points.
type Address [AddressLength]byte

// ZeroAddress is the unset address.
var ZeroAddress Address

// ParseAddress decodes the base58 text form of an address.
func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return AddressFromBytes(raw)
}

// MustParseAddress is ParseAddress for package-level constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies b into an Address. b must be exactly AddressLength bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddress, len(b), AddressLength)
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// IsOnCurve reports whether the address is a valid ed25519 point, i.e. whether
// some private key could sign for it.
func (a Address) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
