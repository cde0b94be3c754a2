package testutil

import (
	"encoding/binary"

	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/unitrie/common"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

// for determinism
const deterministicSeed = "1234567890987654321"

// Party is a deterministic test party
type Party struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	Identity   identity.Identity
}

func GenerateParty(n uint16) Party {
	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], n)
	seed := blake2b.Sum256(common.Concat([]byte(deterministicSeed), u16[:]))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return Party{
		PrivateKey: priv,
		PublicKey:  pub,
		Identity:   identity.FromPublicKey(pub),
	}
}

// GenerateParties returns n parties with indices starting from 0
func GenerateParties(n int) []Party {
	ret := make([]Party, n)
	for i := range ret {
		ret[i] = GenerateParty(uint16(i))
	}
	return ret
}
