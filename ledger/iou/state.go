// Package iou defines the obligation record: a debt of the borrower to the lender,
// which can be partially or fully paid over time
package iou

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lunfardo314/easyiou/lazyslice"
	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/money"
)

const StateTypeName = "iou"

type (
	// LinearID is assigned once at issuance and is copied verbatim to every revision of the IOU
	LinearID struct {
		ExternalID string
		ID         uuid.UUID
	}

	State struct {
		Amount   money.Amount
		Paid     money.Amount
		Lender   identity.Identity
		Borrower identity.Identity
		LinearID LinearID
	}

	// Field names a field of the State
	Field string
)

const (
	FieldAmount   = Field("amount")
	FieldPaid     = Field("paid")
	FieldLender   = Field("lender")
	FieldBorrower = Field("borrower")
	FieldLinearID = Field("linearID")
)

func NewLinearID(externalID ...string) LinearID {
	ret := LinearID{ID: uuid.New()}
	if len(externalID) > 0 {
		ret.ExternalID = externalID[0]
	}
	return ret
}

func (id LinearID) String() string {
	if id.ExternalID == "" {
		return id.ID.String()
	}
	return id.ExternalID + "_" + id.ID.String()
}

// New creates a new IOU with nothing paid and a fresh linear ID
func New(amount money.Amount, lender, borrower identity.Identity, externalID ...string) *State {
	return &State{
		Amount:   amount,
		Paid:     money.Zero(amount.Denomination),
		Lender:   lender,
		Borrower: borrower,
		LinearID: NewLinearID(externalID...),
	}
}

// Participants are identities whose signatures transitions of the IOU require
func (s *State) Participants() []identity.Identity {
	return []identity.Identity{s.Lender, s.Borrower}
}

// Pay returns a copy of the IOU with amountToPay added to the paid amount
func (s *State) Pay(amountToPay money.Amount) (*State, error) {
	paid, err := s.Paid.Add(amountToPay)
	if err != nil {
		return nil, err
	}
	ret := *s
	ret.Paid = paid
	return &ret, nil
}

// WithNewLender returns a copy of the IOU with the lender replaced
func (s *State) WithNewLender(newLender identity.Identity) *State {
	ret := *s
	ret.Lender = newLender
	return &ret
}

// Outstanding is amount left to pay
func (s *State) Outstanding() (money.Amount, error) {
	return s.Amount.Sub(s.Paid)
}

// ChangedFields compares states field by field and returns names of fields which differ,
// in the order of declaration
func (s *State) ChangedFields(other *State) []Field {
	ret := make([]Field, 0)
	if !s.Amount.Equal(other.Amount) {
		ret = append(ret, FieldAmount)
	}
	if !s.Paid.Equal(other.Paid) {
		ret = append(ret, FieldPaid)
	}
	if s.Lender != other.Lender {
		ret = append(ret, FieldLender)
	}
	if s.Borrower != other.Borrower {
		ret = append(ret, FieldBorrower)
	}
	if s.LinearID != other.LinearID {
		ret = append(ret, FieldLinearID)
	}
	return ret
}

func (s *State) Bytes() []byte {
	return lazyslice.MakeArray(
		StateTypeName,
		s.Amount,
		s.Paid,
		s.Lender,
		s.Borrower,
		s.LinearID.ExternalID,
		s.LinearID.ID[:],
	).Bytes()
}

func StateFromBytes(data []byte) (*State, error) {
	arr, err := lazyslice.ParseArray(data, 7)
	if err != nil {
		return nil, err
	}
	if arr.NumElements() != 7 || string(arr.At(0)) != StateTypeName {
		return nil, fmt.Errorf("iou.StateFromBytes: not an IOU")
	}
	ret := &State{}
	if ret.Amount, err = money.AmountFromBytes(arr.At(1)); err != nil {
		return nil, err
	}
	if ret.Paid, err = money.AmountFromBytes(arr.At(2)); err != nil {
		return nil, err
	}
	if ret.Lender, err = identity.FromBytes(arr.At(3)); err != nil {
		return nil, err
	}
	if ret.Borrower, err = identity.FromBytes(arr.At(4)); err != nil {
		return nil, err
	}
	ret.LinearID.ExternalID = string(arr.At(5))
	if ret.LinearID.ID, err = uuid.FromBytes(arr.At(6)); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *State) String() string {
	return fmt.Sprintf("IOU(%s): %s owes %s %s and has paid %s so far.",
		s.LinearID, s.Borrower.Short(), s.Lender.Short(), s.Amount, s.Paid)
}
