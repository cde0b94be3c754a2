package identity

import (
	"bytes"
	"errors"
	"sort"
	"strings"

	"github.com/lunfardo314/easyfl"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

const IdentityLength = 32

// Identity of the party is blake2b hash of its ED25519 public key. It is a comparable value,
// so two copies of the same party are equal
type Identity [IdentityLength]byte

// Set is a set of identities with structural equality
type Set map[Identity]struct{}

func FromPublicKey(pubKey ed25519.PublicKey) Identity {
	return blake2b.Sum256(pubKey)
}

func FromBytes(data []byte) (ret Identity, err error) {
	if len(data) != IdentityLength {
		err = errors.New("identity.FromBytes: wrong data length")
		return
	}
	copy(ret[:], data)
	return
}

func (id Identity) Bytes() []byte {
	return id[:]
}

func (id Identity) String() string {
	return easyfl.Fmt(id[:])
}

// Short is the first 4 bytes of the identity, for logging
func (id Identity) Short() string {
	return easyfl.Fmt(id[:4])
}

func NewSet(ids ...Identity) Set {
	ret := make(Set, len(ids))
	for _, id := range ids {
		ret[id] = struct{}{}
	}
	return ret
}

func (s Set) Add(ids ...Identity) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s Set) Has(id Identity) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Union returns a new set, the receiver is not modified
func (s Set) Union(other Set) Set {
	ret := make(Set, len(s)+len(other))
	for id := range s {
		ret[id] = struct{}{}
	}
	for id := range other {
		ret[id] = struct{}{}
	}
	return ret
}

// Difference returns elements of s which are not in other
func (s Set) Difference(other Set) Set {
	ret := make(Set)
	for id := range s {
		if !other.Has(id) {
			ret[id] = struct{}{}
		}
	}
	return ret
}

// Sorted returns elements in the deterministic order
func (s Set) Sorted() []Identity {
	ret := make([]Identity, 0, len(s))
	for id := range s {
		ret = append(ret, id)
	}
	sort.Slice(ret, func(i, j int) bool {
		return bytes.Compare(ret[i][:], ret[j][:]) < 0
	})
	return ret
}

func (s Set) String() string {
	ids := s.Sorted()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Short()
	}
	return "{" + strings.Join(names, ", ") + "}"
}
