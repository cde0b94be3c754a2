package txbuilder

import (
	"fmt"

	"github.com/lunfardo314/easyiou/ledger/cash"
	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/iou"
	"github.com/lunfardo314/easyiou/ledger/money"
	"github.com/lunfardo314/easyiou/ledger/txview"
)

// MakeIssue builds transaction which issues the IOU. Both lender and borrower must sign
func MakeIssue(out *iou.State) (*TransactionBuilder, error) {
	ret := NewTransactionBuilder()
	if _, err := ret.ProduceState(out); err != nil {
		return nil, err
	}
	if err := ret.AddCommand(txview.CommandIssue, out.Participants()...); err != nil {
		return nil, err
	}
	return ret, nil
}

// MakeTransfer builds transaction which moves the IOU to the new lender.
// The borrower, the old lender and the new lender must sign
func MakeTransfer(in *iou.State, newLender identity.Identity) (*TransactionBuilder, error) {
	out := in.WithNewLender(newLender)
	ret := NewTransactionBuilder()
	if _, err := ret.ConsumeState(in); err != nil {
		return nil, err
	}
	if _, err := ret.ProduceState(out); err != nil {
		return nil, err
	}
	if err := ret.AddCommand(txview.CommandTransfer, in.Borrower, in.Lender, out.Lender); err != nil {
		return nil, err
	}
	return ret, nil
}

// MakeSettle builds transaction which settles the IOU with the payments to the lender.
// If payments cover all outstanding amount, the IOU is discharged and no successor is produced.
// Payments to others are allowed, for example change
func MakeSettle(in *iou.State, payments ...*cash.State) (*TransactionBuilder, error) {
	if len(payments) == 0 {
		return nil, fmt.Errorf("MakeSettle: no payments")
	}
	settled := money.Zero(in.Amount.Denomination)
	for _, p := range payments {
		if p.Owner != in.Lender {
			continue
		}
		var err error
		if settled, err = settled.Add(p.Amount); err != nil {
			return nil, fmt.Errorf("MakeSettle: %w", err)
		}
	}
	remaining, err := in.Outstanding()
	if err != nil {
		return nil, fmt.Errorf("MakeSettle: %w", err)
	}
	c, err := settled.Cmp(remaining)
	if err != nil {
		return nil, fmt.Errorf("MakeSettle: %w", err)
	}
	if c > 0 {
		return nil, fmt.Errorf("MakeSettle: settled %s is more than outstanding %s", settled, remaining)
	}

	ret := NewTransactionBuilder()
	if _, err = ret.ConsumeState(in); err != nil {
		return nil, err
	}
	if c < 0 {
		out, err := in.Pay(settled)
		if err != nil {
			return nil, fmt.Errorf("MakeSettle: %w", err)
		}
		if _, err = ret.ProduceState(out); err != nil {
			return nil, err
		}
	}
	for _, p := range payments {
		if _, err = ret.ProduceState(p); err != nil {
			return nil, err
		}
	}
	if err = ret.AddCommand(txview.CommandSettle, in.Participants()...); err != nil {
		return nil, err
	}
	return ret, nil
}
