// Package cash is a minimal value transfer record, used as payment when settling obligations
package cash

import (
	"fmt"

	"github.com/lunfardo314/easyiou/lazyslice"
	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/money"
)

const StateTypeName = "cash"

type State struct {
	Amount money.Amount
	Owner  identity.Identity
}

func New(amount money.Amount, owner identity.Identity) *State {
	return &State{Amount: amount, Owner: owner}
}

func (s *State) Participants() []identity.Identity {
	return []identity.Identity{s.Owner}
}

func (s *State) PaymentAmount() money.Amount {
	return s.Amount
}

func (s *State) Payee() identity.Identity {
	return s.Owner
}

func (s *State) Bytes() []byte {
	return lazyslice.MakeArray(StateTypeName, s.Amount, s.Owner).Bytes()
}

func (s *State) String() string {
	return fmt.Sprintf("Cash(%s owned by %s)", s.Amount, s.Owner.Short())
}
