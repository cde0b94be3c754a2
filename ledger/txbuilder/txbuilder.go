// Package txbuilder builds and signs IOU transactions and turns them into views for the contract
package txbuilder

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/easyiou/lazyslice"
	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/txview"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ed25519"
)

const (
	TransactionIDLength = 32
	MaxNumStates        = 256
	MaxNumCommands      = 16
)

type (
	// State is a record which can be put into the transaction
	State interface {
		txview.State
		Bytes() []byte
	}

	TransactionID [TransactionIDLength]byte

	// Command is the declared intent of the transaction together with identities which must sign it
	Command struct {
		Value   txview.Command
		Signers identity.Set
	}

	TransactionBuilder struct {
		ConsumedStates []State
		ProducedStates []State
		Commands       []*Command
		Timestamp      uint32
	}
)

func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		ConsumedStates: make([]State, 0),
		ProducedStates: make([]State, 0),
		Commands:       make([]*Command, 0),
		Timestamp:      uint32(time.Now().Unix()),
	}
}

func (txid TransactionID) String() string {
	return easyfl.Fmt(txid[:])
}

func (ctx *TransactionBuilder) NumInputs() int {
	return len(ctx.ConsumedStates)
}

func (ctx *TransactionBuilder) NumOutputs() int {
	return len(ctx.ProducedStates)
}

func (ctx *TransactionBuilder) ConsumeState(s State) (byte, error) {
	if ctx.NumInputs() >= MaxNumStates {
		return 0, fmt.Errorf("too many consumed states")
	}
	ctx.ConsumedStates = append(ctx.ConsumedStates, s)
	return byte(len(ctx.ConsumedStates) - 1), nil
}

func (ctx *TransactionBuilder) ProduceState(s State) (byte, error) {
	if ctx.NumOutputs() >= MaxNumStates {
		return 0, fmt.Errorf("too many produced states")
	}
	ctx.ProducedStates = append(ctx.ProducedStates, s)
	return byte(len(ctx.ProducedStates) - 1), nil
}

func (ctx *TransactionBuilder) AddCommand(cmd txview.Command, signers ...identity.Identity) error {
	if len(ctx.Commands) >= MaxNumCommands {
		return fmt.Errorf("too many commands")
	}
	ctx.Commands = append(ctx.Commands, &Command{
		Value:   cmd,
		Signers: identity.NewSet(signers...),
	})
	return nil
}

func (ctx *TransactionBuilder) WithTimestamp(ts uint32) *TransactionBuilder {
	ctx.Timestamp = ts
	return ctx
}

// RequiredSigners is union of signers of all commands
func (ctx *TransactionBuilder) RequiredSigners() identity.Set {
	return requiredSigners(ctx.Commands)
}

// Essence is the signed part of the transaction
func (ctx *TransactionBuilder) Essence() []byte {
	inputs := lazyslice.EmptyArray(MaxNumStates)
	for _, s := range ctx.ConsumedStates {
		inputs.Push(s.Bytes())
	}
	outputs := lazyslice.EmptyArray(MaxNumStates)
	for _, s := range ctx.ProducedStates {
		outputs.Push(s.Bytes())
	}
	commands := lazyslice.EmptyArray(MaxNumCommands)
	for _, cmd := range ctx.Commands {
		commands.Push(cmd.Bytes())
	}
	var ts [4]byte
	binary.BigEndian.PutUint32(ts[:], ctx.Timestamp)
	return lazyslice.MakeArray(inputs, outputs, commands, ts[:]).Bytes()
}

func (ctx *TransactionBuilder) ID() TransactionID {
	return blake2b.Sum256(ctx.Essence())
}

// Sign freezes the transaction and signs its ID with the private keys
func (ctx *TransactionBuilder) Sign(privKeys ...ed25519.PrivateKey) *SignedTransaction {
	ret := &SignedTransaction{
		consumed:   append(make([]State, 0, len(ctx.ConsumedStates)), ctx.ConsumedStates...),
		produced:   append(make([]State, 0, len(ctx.ProducedStates)), ctx.ProducedStates...),
		commands:   make([]*Command, len(ctx.Commands)),
		signatures: make([]*Signature, 0, len(privKeys)),
		id:         ctx.ID(),
	}
	for i, cmd := range ctx.Commands {
		ret.commands[i] = &Command{Value: cmd.Value, Signers: cmd.Signers.Union(nil)}
	}
	for _, priv := range privKeys {
		ret.signatures = append(ret.signatures, NewSignature(ret.id, priv))
	}
	return ret
}

func (cmd *Command) Bytes() []byte {
	signers := lazyslice.EmptyArray(MaxNumStates)
	for _, id := range cmd.Signers.Sorted() {
		signers.Push(id.Bytes())
	}
	return lazyslice.MakeArray(byte(cmd.Value), signers).Bytes()
}

func requiredSigners(cmds []*Command) identity.Set {
	ret := identity.NewSet()
	for _, cmd := range cmds {
		ret = ret.Union(cmd.Signers)
	}
	return ret
}
