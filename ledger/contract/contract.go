// Package contract decides whether a transaction which issues, transfers or settles IOUs is admissible.
// Verification is a pure function of the transaction view: it does no I/O and keeps no state,
// so it can be called concurrently and always returns the same result for the same view
package contract

import (
	"strings"

	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/iou"
	"github.com/lunfardo314/easyiou/ledger/txview"
	"github.com/lunfardo314/unitrie/common"
)

// Contract is the IOU contract. It implements Verify as a method for callers which
// take verifier as an interface
type Contract struct{}

func (Contract) Verify(tx *txview.View) error {
	return Verify(tx)
}

// Verify returns nil if the transaction is accepted, otherwise *Violation with the reason.
// Malformed views (nil view or nil states) are rejected with MalformedTransaction
func Verify(tx *txview.View) error {
	var ret error
	err := common.CatchPanicOrError(func() error {
		ret = verify(tx)
		return nil
	})
	if err != nil {
		return violationf(MalformedTransaction, "%v", err)
	}
	return ret
}

func verify(tx *txview.View) error {
	common.Assert(tx != nil, "transaction view is nil")
	for i, s := range tx.Consumed() {
		common.Assert(s != nil, "consumed state #%d is nil", i)
	}
	for i, s := range tx.Produced() {
		common.Assert(s != nil, "produced state #%d is nil", i)
	}

	cmds := tx.Commands()
	switch {
	case len(cmds) == 0:
		return violationf(MissingCommand, "required exactly one command, found none")
	case len(cmds) > 1:
		return violationf(MultipleCommands, "required exactly one command, found %d", len(cmds))
	}

	switch cmd := cmds[0]; cmd {
	case txview.CommandIssue:
		return verifyIssue(tx)
	case txview.CommandTransfer:
		return verifyTransfer(tx)
	case txview.CommandSettle:
		return verifySettle(tx)
	default:
		return violationf(UnrecognizedCommand, "unrecognized command %s", cmd)
	}
}

func verifyIssue(tx *txview.View) error {
	if len(tx.Consumed()) != 0 {
		return violationf(InvalidInputCount, "no inputs should be consumed when issuing an IOU")
	}
	if len(tx.Produced()) != 1 {
		return violationf(InvalidOutputCount, "only one output state should be created when issuing an IOU")
	}
	out, err := asIOU(tx.Produced()[0], "issued")
	if err != nil {
		return err
	}
	if out.Amount.Quantity == 0 {
		return violationf(NonPositiveAmount, "a newly issued IOU must have a positive amount")
	}
	if out.Lender == out.Borrower {
		return violationf(SameLenderBorrower, "the lender and borrower cannot be the same identity")
	}
	if !out.Paid.IsZero() || !out.Paid.SameDenomination(out.Amount) {
		return violationf(PaidAmountMismatch, "a newly issued IOU must have nothing paid in %s, got %s",
			out.Amount.Denomination, out.Paid)
	}
	return requireSigners(tx, identity.NewSet(out.Participants()...), "issue")
}

func verifyTransfer(tx *txview.View) error {
	if len(tx.Consumed()) != 1 {
		return violationf(InvalidInputCount, "an IOU transfer transaction should only consume one input state")
	}
	if len(tx.Produced()) != 1 {
		return violationf(InvalidOutputCount, "an IOU transfer transaction should only create one output state")
	}
	in, err := asIOU(tx.Consumed()[0], "consumed")
	if err != nil {
		return err
	}
	out, err := asIOU(tx.Produced()[0], "produced")
	if err != nil {
		return err
	}
	if changed := changedExcept(in, out, iou.FieldLender); len(changed) > 0 {
		return violationf(UnauthorizedFieldChange, "only the lender may change in a transfer, changed: %s", changed)
	}
	if in.Lender == out.Lender {
		return violationf(NoLenderChange, "the lender must change in a transfer")
	}
	required := identity.NewSet(in.Participants()...).Union(identity.NewSet(out.Participants()...))
	return requireSigners(tx, required, "transfer")
}

func verifySettle(tx *txview.View) error {
	groups := GroupStates(tx.Consumed(), tx.Produced())
	if len(groups) != 1 {
		return violationf(AmbiguousOrMissingObligationGroup, "there must be exactly one IOU group, found %d", len(groups))
	}
	group := groups[0]
	if len(group.Inputs) != 1 {
		return violationf(AmbiguousOrMissingObligationGroup, "there must be one input IOU, found %d", len(group.Inputs))
	}
	in := group.Inputs[0]

	if len(Payments(tx.Produced())) == 0 {
		return violationf(NoOutputPayment, "there must be output payment")
	}
	settled, err := SumPayments(tx.Produced(), in.Lender)
	if err != nil {
		return err
	}
	remaining, err := in.Outstanding()
	if err != nil {
		return amountViolation(err, "outstanding amount of the consumed IOU")
	}
	c, err := settled.Cmp(remaining)
	if err != nil {
		return amountViolation(err, "payments do not match the IOU")
	}
	if c > 0 {
		return violationf(OverSettlement, "the amount settled %s cannot be more than the amount outstanding %s",
			settled, remaining)
	}

	if c == 0 {
		if len(group.Outputs) != 0 {
			return violationf(ExpectedNoSuccessorRecord, "there must be no output IOU as it has been fully settled")
		}
	} else {
		if len(group.Outputs) != 1 {
			return violationf(InvalidOutputCount, "there must be one output IOU, found %d", len(group.Outputs))
		}
		out := group.Outputs[0]
		if changed := changedExcept(in, out, iou.FieldPaid); len(changed) > 0 {
			return violationf(UnauthorizedFieldChange, "only the paid amount may change when settling, changed: %s", changed)
		}
		expected, err := in.Paid.Add(settled)
		if err != nil {
			return amountViolation(err, "paid amount of the output IOU")
		}
		if !out.Paid.Equal(expected) {
			return violationf(PaidAmountMismatch, "the paid amount was not updated to the correct value: expected %s, got %s",
				expected, out.Paid)
		}
	}
	return requireSigners(tx, identity.NewSet(in.Participants()...), "settle")
}

func asIOU(s txview.State, what string) (*iou.State, error) {
	ret, ok := s.(*iou.State)
	if !ok {
		return nil, violationf(UnexpectedStateType, "%s state must be an IOU, got %T", what, s)
	}
	return ret, nil
}

// changedExcept compares IOUs field by field and lists differing fields, except the allowed one
func changedExcept(in, out *iou.State, allowed iou.Field) string {
	ret := make([]string, 0)
	for _, f := range in.ChangedFields(out) {
		if f != allowed {
			ret = append(ret, string(f))
		}
	}
	return strings.Join(ret, ", ")
}

func requireSigners(tx *txview.View, required identity.Set, what string) error {
	if !tx.Signers().Equal(required) {
		return violationf(SignerSetMismatch, "%s: required signers %s, declared %s", what, required, tx.Signers())
	}
	return nil
}
