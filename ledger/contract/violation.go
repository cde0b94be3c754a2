package contract

import (
	"errors"
	"fmt"
)

// Reason is the kind of the rule violation
type Reason byte

const (
	ReasonNone = Reason(iota)

	// structural
	MultipleCommands
	MissingCommand
	UnrecognizedCommand
	InvalidInputCount
	InvalidOutputCount
	UnexpectedStateType
	AmbiguousOrMissingObligationGroup
	NoOutputPayment
	MalformedTransaction

	// value level
	NonPositiveAmount
	SameLenderBorrower
	DenominationMismatch
	Underflow
	AmountOverflow
	OverSettlement
	PaidAmountMismatch
	NoQualifyingPayment

	// authorization
	SignerSetMismatch

	// field mutation
	UnauthorizedFieldChange
	NoLenderChange
	ExpectedNoSuccessorRecord
)

var reasonNames = map[Reason]string{
	ReasonNone:                        "None",
	MultipleCommands:                  "MultipleCommands",
	MissingCommand:                    "MissingCommand",
	UnrecognizedCommand:               "UnrecognizedCommand",
	InvalidInputCount:                 "InvalidInputCount",
	InvalidOutputCount:                "InvalidOutputCount",
	UnexpectedStateType:               "UnexpectedStateType",
	AmbiguousOrMissingObligationGroup: "AmbiguousOrMissingObligationGroup",
	NoOutputPayment:                   "NoOutputPayment",
	MalformedTransaction:              "MalformedTransaction",
	NonPositiveAmount:                 "NonPositiveAmount",
	SameLenderBorrower:                "SameLenderBorrower",
	DenominationMismatch:              "DenominationMismatch",
	Underflow:                         "Underflow",
	AmountOverflow:                    "AmountOverflow",
	OverSettlement:                    "OverSettlement",
	PaidAmountMismatch:                "PaidAmountMismatch",
	NoQualifyingPayment:               "NoQualifyingPayment",
	SignerSetMismatch:                 "SignerSetMismatch",
	UnauthorizedFieldChange:           "UnauthorizedFieldChange",
	NoLenderChange:                    "NoLenderChange",
	ExpectedNoSuccessorRecord:         "ExpectedNoSuccessorRecord",
}

func (r Reason) String() string {
	if ret, ok := reasonNames[r]; ok {
		return ret
	}
	return fmt.Sprintf("Reason(%d)", byte(r))
}

// Violation is the rejection of the transaction: the reason and human readable description
type Violation struct {
	Reason Reason
	Msg    string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Reason, v.Msg)
}

// Is matches any violation with the same reason
func (v *Violation) Is(target error) bool {
	t, ok := target.(*Violation)
	return ok && t.Reason == v.Reason
}

func violationf(reason Reason, format string, args ...interface{}) *Violation {
	return &Violation{
		Reason: reason,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// ReasonOf returns ReasonNone for nil error and MalformedTransaction if err is not a violation
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	var v *Violation
	if errors.As(err, &v) {
		return v.Reason
	}
	return MalformedTransaction
}
