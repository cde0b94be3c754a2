package contract

import (
	"errors"

	"github.com/lunfardo314/easyiou/ledger/identity"
	"github.com/lunfardo314/easyiou/ledger/money"
	"github.com/lunfardo314/easyiou/ledger/txview"
)

// Payment is a value transfer record produced by the transaction. Only the amount
// and the payee are read
type Payment interface {
	PaymentAmount() money.Amount
	Payee() identity.Identity
}

// Payments filters payment records among states
func Payments(states []txview.State) []Payment {
	ret := make([]Payment, 0)
	for _, s := range states {
		if p, ok := s.(Payment); ok {
			ret = append(ret, p)
		}
	}
	return ret
}

// SumPayments sums all payments to the payee among produced states. All of them must be
// in the denomination of the first one
func SumPayments(produced []txview.State, payee identity.Identity) (money.Amount, error) {
	var sum money.Amount
	found := false
	for _, p := range Payments(produced) {
		if p.Payee() != payee {
			continue
		}
		if !found {
			sum = money.Zero(p.PaymentAmount().Denomination)
			found = true
		}
		var err error
		if sum, err = sum.Add(p.PaymentAmount()); err != nil {
			return money.Amount{}, amountViolation(err, "summing payments to %s", payee.Short())
		}
	}
	if !found {
		return money.Amount{}, violationf(NoQualifyingPayment, "there must be output payment to %s", payee.Short())
	}
	return sum, nil
}

// amountViolation maps money arithmetic errors to rule violations
func amountViolation(err error, format string, args ...interface{}) *Violation {
	reason := MalformedTransaction
	switch {
	case errors.Is(err, money.ErrDenominationMismatch):
		reason = DenominationMismatch
	case errors.Is(err, money.ErrUnderflow):
		reason = Underflow
	case errors.Is(err, money.ErrOverflow):
		reason = AmountOverflow
	}
	ret := violationf(reason, format, args...)
	ret.Msg += ": " + err.Error()
	return ret
}
