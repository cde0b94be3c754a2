package txview

import (
	"fmt"

	"github.com/lunfardo314/easyiou/ledger/identity"
)

type (
	// State is any record consumed or produced by the transaction
	State interface {
		Participants() []identity.Identity
	}

	// Command is the declared intent of the transaction
	Command byte

	// View is a read-only projection of the transaction for one validation call.
	// Slices returned by accessors must not be modified
	View struct {
		consumed []State
		produced []State
		commands []Command
		signers  identity.Set
	}
)

const (
	CommandIssue = Command(iota + 1)
	CommandTransfer
	CommandSettle
)

func (c Command) String() string {
	switch c {
	case CommandIssue:
		return "Issue"
	case CommandTransfer:
		return "Transfer"
	case CommandSettle:
		return "Settle"
	}
	return fmt.Sprintf("Command(%d)", byte(c))
}

func New(consumed, produced []State, signers identity.Set, commands ...Command) *View {
	if signers == nil {
		signers = identity.NewSet()
	}
	return &View{
		consumed: consumed,
		produced: produced,
		commands: commands,
		signers:  signers,
	}
}

func (v *View) Consumed() []State {
	return v.consumed
}

func (v *View) Produced() []State {
	return v.produced
}

func (v *View) Commands() []Command {
	return v.commands
}

func (v *View) Signers() identity.Set {
	return v.signers
}
