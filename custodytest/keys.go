package custodytest

import (
	"crypto/ecdsa"
	"sort"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/custody"
)

// Key is a secp256k1 key able to sign digests the way committee members
// do.
type Key struct {
	priv *ecdsa.PrivateKey
}

// NewKey returns a key deterministically derived from given name.
func NewKey(name string) *Key {
	priv, err := crypto.ToECDSA(crypto.Keccak256([]byte("custodytest/" + name)))
	if err != nil {
		panic(err)
	}
	return &Key{priv: priv}
}

// Address returns the signer address of this key.
func (k *Key) Address() custody.Address {
	return custody.NewAddress(crypto.PubkeyToAddress(k.priv.PublicKey))
}

// Sign returns a 65 byte r||s||v signature of the personal message prefixed
// digest, with v in {27, 28}.
func (k *Key) Sign(digest []byte) []byte {
	sig, err := crypto.Sign(accounts.TextHash(digest), k.priv)
	if err != nil {
		panic(err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig
}

// SortedKeys returns keys for given names ordered by ascending address.
func SortedKeys(names ...string) []*Key {
	keys := make([]*Key, len(names))
	for i, n := range names {
		keys[i] = NewKey(n)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Address().Compare(keys[j].Address()) < 0
	})
	return keys
}
