package txbuilder

import (
	"errors"
	"fmt"

	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/txview"
	"golang.org/x/crypto/ed25519"
)

type (
	// Signature of the transaction ID together with the public key of the signer
	Signature struct {
		PublicKey ed25519.PublicKey
		Signature []byte
	}

	// SignedTransaction is immutable. Adding signatures creates a new one
	SignedTransaction struct {
		consumed   []State
		produced   []State
		commands   []*Command
		signatures []*Signature
		id         TransactionID
	}

	// Verifier decides if the transaction view is admissible
	Verifier interface {
		Verify(tx *txview.View) error
	}
)

var ErrMissingSignatures = errors.New("missing signatures")

func NewSignature(txid TransactionID, privKey ed25519.PrivateKey) *Signature {
	return &Signature{
		PublicKey: privKey.Public().(ed25519.PublicKey),
		Signature: ed25519.Sign(privKey, txid[:]),
	}
}

func (s *Signature) Signer() identity.Identity {
	return identity.FromPublicKey(s.PublicKey)
}

func (s *Signature) Valid(txid TransactionID) bool {
	return len(s.PublicKey) == ed25519.PublicKeySize && ed25519.Verify(s.PublicKey, txid[:], s.Signature)
}

func (tx *SignedTransaction) ID() TransactionID {
	return tx.id
}

// CoSign returns a copy of the transaction with signatures of the private keys added.
// This is how the counterparties add their signatures
func (tx *SignedTransaction) CoSign(privKeys ...ed25519.PrivateKey) *SignedTransaction {
	sigs := make([]*Signature, 0, len(privKeys))
	for _, priv := range privKeys {
		sigs = append(sigs, NewSignature(tx.id, priv))
	}
	return tx.WithSignatures(sigs...)
}

// WithSignatures returns a copy of the transaction with signatures added
func (tx *SignedTransaction) WithSignatures(sigs ...*Signature) *SignedTransaction {
	ret := *tx
	ret.signatures = append(append(make([]*Signature, 0, len(tx.signatures)+len(sigs)), tx.signatures...), sigs...)
	return &ret
}

func (tx *SignedTransaction) Signatures() []*Signature {
	return tx.signatures
}

// RequiredSigners is union of signers declared by all commands
func (tx *SignedTransaction) RequiredSigners() identity.Set {
	return requiredSigners(tx.commands)
}

// Signed returns identities of all valid signatures
func (tx *SignedTransaction) Signed() identity.Set {
	ret := identity.NewSet()
	for _, sig := range tx.signatures {
		if sig.Valid(tx.id) {
			ret.Add(sig.Signer())
		}
	}
	return ret
}

// VerifySignatures checks that all signatures are valid
func (tx *SignedTransaction) VerifySignatures() error {
	for i, sig := range tx.signatures {
		if !sig.Valid(tx.id) {
			return fmt.Errorf("invalid signature #%d of %s in transaction %s", i, sig.Signer().Short(), tx.id)
		}
	}
	return nil
}

// MissingSigners are required signers which did not sign the transaction yet
func (tx *SignedTransaction) MissingSigners() identity.Set {
	return tx.RequiredSigners().Difference(tx.Signed())
}

// View makes the read-only view of the transaction for the contract.
// The signer set of the view is the set of declared required signers
func (tx *SignedTransaction) View() *txview.View {
	consumed := make([]txview.State, len(tx.consumed))
	for i, s := range tx.consumed {
		consumed[i] = s
	}
	produced := make([]txview.State, len(tx.produced))
	for i, s := range tx.produced {
		produced[i] = s
	}
	commands := make([]txview.Command, len(tx.commands))
	for i, cmd := range tx.commands {
		commands[i] = cmd.Value
	}
	return txview.New(consumed, produced, tx.RequiredSigners(), commands...)
}

// Verify checks signatures are valid and complete and that the contract accepts the transaction
func (tx *SignedTransaction) Verify(v Verifier) error {
	if err := tx.VerifySignatures(); err != nil {
		return err
	}
	if missing := tx.MissingSigners(); missing.Len() > 0 {
		return fmt.Errorf("%w in transaction %s: %s", ErrMissingSignatures, tx.id, missing)
	}
	return v.Verify(tx.View())
}
