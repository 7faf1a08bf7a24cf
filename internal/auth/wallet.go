// internal/auth/wallet.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/park/internal/chain"
)

// MaxLoginSkew bounds how far a login timestamp may be from the server clock.
const MaxLoginSkew = 5 * time.Minute

var (
	ErrStaleLogin   = errors.New("login timestamp outside the accepted window")
	ErrBadSignature = errors.New("login signature does not match wallet")
)

// LoginMessage is the exact byte string a wallet signs to log in.
func LoginMessage(wallet chain.Address, timestamp int64) []byte {
	return []byte(fmt.Sprintf("park-login:%s:%d", wallet, timestamp))
}

// VerifyLogin checks that signature is the wallet's signature of LoginMessage and that
// the timestamp is recent.
func VerifyLogin(wallet chain.Address, timestamp int64, signature []byte, now time.Time) error {
	skew := now.Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > MaxLoginSkew {
		return ErrStaleLogin
	}
	if !chain.Verify(wallet, LoginMessage(wallet, timestamp), signature) {
		return ErrBadSignature
	}
	return nil
}
