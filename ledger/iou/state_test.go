package iou_test

import (
	"errors"
	"testing"

	"github.com/lunfardo314/easyiou/ledger/iou"
	"github.com/lunfardo314/easyiou/ledger/money"
	"github.com/lunfardo314/easyiou/util/testutil"
	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	p := testutil.GenerateParties(3)
	lender, borrower, newLender := p[0].Identity, p[1].Identity, p[2].Identity

	t.Run("new", func(t *testing.T) {
		s := iou.New(money.NewAmount(100, "USD"), lender, borrower, "loan-1")
		require.True(t, s.Paid.IsZero())
		require.EqualValues(t, "USD", s.Paid.Denomination)
		require.EqualValues(t, "loan-1", s.LinearID.ExternalID)
		require.EqualValues(t, 2, len(s.Participants()))
		require.NotEqual(t, s.LinearID, iou.New(money.NewAmount(100, "USD"), lender, borrower, "loan-1").LinearID)
		t.Logf("%s", s)
	})
	t.Run("pay", func(t *testing.T) {
		s := iou.New(money.NewAmount(100, "USD"), lender, borrower)
		s1, err := s.Pay(money.NewAmount(30, "USD"))
		require.NoError(t, err)
		require.EqualValues(t, 30, s1.Paid.Quantity)
		require.EqualValues(t, 0, s.Paid.Quantity)
		require.EqualValues(t, []iou.Field{iou.FieldPaid}, s.ChangedFields(s1))

		_, err = s.Pay(money.NewAmount(30, "EUR"))
		require.True(t, errors.Is(err, money.ErrDenominationMismatch))
	})
	t.Run("new lender", func(t *testing.T) {
		s := iou.New(money.NewAmount(100, "USD"), lender, borrower)
		s1 := s.WithNewLender(newLender)
		require.EqualValues(t, newLender, s1.Lender)
		require.EqualValues(t, lender, s.Lender)
		require.EqualValues(t, []iou.Field{iou.FieldLender}, s.ChangedFields(s1))
		require.EqualValues(t, 0, len(s.ChangedFields(s1.WithNewLender(lender))))
	})
	t.Run("changed fields", func(t *testing.T) {
		s := iou.New(money.NewAmount(100, "USD"), lender, borrower)
		s1 := *s
		s1.Amount = money.NewAmount(101, "USD")
		s1.Borrower = newLender
		s1.LinearID = iou.NewLinearID()
		require.EqualValues(t, []iou.Field{iou.FieldAmount, iou.FieldBorrower, iou.FieldLinearID}, s.ChangedFields(&s1))
	})
	t.Run("outstanding", func(t *testing.T) {
		s := iou.New(money.NewAmount(100, "USD"), lender, borrower)
		s, err := s.Pay(money.NewAmount(60, "USD"))
		require.NoError(t, err)
		rem, err := s.Outstanding()
		require.NoError(t, err)
		require.EqualValues(t, money.NewAmount(40, "USD"), rem)
	})
	t.Run("bytes", func(t *testing.T) {
		s := iou.New(money.NewAmount(100, "USD"), lender, borrower, "ext")
		s, err := s.Pay(money.NewAmount(1, "USD"))
		require.NoError(t, err)
		back, err := iou.StateFromBytes(s.Bytes())
		require.NoError(t, err)
		require.EqualValues(t, s, back)

		_, err = iou.StateFromBytes([]byte{0, 0})
		require.Error(t, err)
	})
}
