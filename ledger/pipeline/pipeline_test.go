package pipeline

import (
	"sync"
	"testing"

	"github.com/lunfardo314/easyiou/ledger/cash"
	"github.com/lunfardo314/easyiou/ledger/contract"
	"github.com/lunfardo314/easyiou/ledger/iou"
	"github.com/lunfardo314/easyiou/ledger/money"
	"github.com/lunfardo314/easyiou/ledger/txbuilder"
	"github.com/lunfardo314/easyiou/ledger/txview"
	"github.com/lunfardo314/easyiou/util/fifoqueue"
	"github.com/lunfardo314/easyiou/util/testutil"
	"github.com/stretchr/testify/require"
)

type panickingVerifier struct{}

func (panickingVerifier) Verify(_ *txview.View) error {
	panic("verifier is broken")
}

func makeTransactions(t *testing.T, n int) ([]*txbuilder.SignedTransaction, int) {
	parties := testutil.GenerateParties(3)
	alice, bob, charlie := parties[0], parties[1], parties[2]
	ret := make([]*txbuilder.SignedTransaction, 0, n)
	valid := 0
	for i := 0; i < n; i++ {
		obligation := iou.New(money.NewAmount(uint64(100+i), "USD"), alice.Identity, bob.Identity)
		var ctx *txbuilder.TransactionBuilder
		var err error
		switch i % 3 {
		case 0:
			ctx, err = txbuilder.MakeIssue(obligation)
			valid++
		case 1:
			ctx, err = txbuilder.MakeTransfer(obligation, charlie.Identity)
			valid++
		case 2:
			// lender does not change
			ctx, err = txbuilder.MakeTransfer(obligation, alice.Identity)
		}
		require.NoError(t, err)
		ret = append(ret, ctx.Sign(alice.PrivateKey, bob.PrivateKey, charlie.PrivateKey))
	}
	return ret, valid
}

func TestPipelineBasic(t *testing.T) {
	t.Run("start stop", func(t *testing.T) {
		log, logs := testutil.NewObservedLogger()
		pipe := NewPipeline(log, contract.Contract{}, WithWorkers(2))
		pipe.Start()
		pipe.Stop()
		pipe.Stop()
		require.EqualValues(t, 1, logs.FilterMessageSnippet("STARTED with 2 workers").Len())
		require.EqualValues(t, 1, logs.FilterMessageSnippet("STOPPED. Submitted: 0").Len())
		require.EqualValues(t, Stats{}, pipe.Stats())
	})
	t.Run("submit after stop", func(t *testing.T) {
		pipe := NewPipeline(testutil.NewSimpleLogger(false), contract.Contract{})
		pipe.Start()
		pipe.Stop()
		txs, _ := makeTransactions(t, 1)
		err := pipe.Submit(txs[0], nil)
		require.ErrorIs(t, err, fifoqueue.ErrClosed)
		require.EqualValues(t, 0, pipe.Stats().Submitted)
	})
	t.Run("nil transaction", func(t *testing.T) {
		pipe := NewPipeline(testutil.NewSimpleLogger(false), contract.Contract{})
		require.Error(t, pipe.Submit(nil, nil))
	})
}

func TestPipelineVerify(t *testing.T) {
	const numTx = 300
	txs, valid := makeTransactions(t, numTx)

	log, logs := testutil.NewObservedLogger()
	pipe := NewPipeline(log, contract.Contract{}, WithWorkers(5), WithQueueLogging())
	pipe.Start()

	var mutex sync.Mutex
	reasons := make(map[contract.Reason]int)
	for _, tx := range txs {
		err := pipe.Submit(tx, func(err error) {
			mutex.Lock()
			defer mutex.Unlock()
			reasons[contract.ReasonOf(err)]++
		})
		require.NoError(t, err)
	}
	pipe.Stop()

	stats := pipe.Stats()
	require.EqualValues(t, numTx, stats.Submitted)
	require.EqualValues(t, valid, stats.Accepted)
	require.EqualValues(t, numTx-valid, stats.Rejected)
	require.EqualValues(t, 0, stats.Queued)
	require.EqualValues(t, valid, reasons[contract.ReasonNone])
	require.EqualValues(t, numTx-valid, reasons[contract.NoLenderChange])
	require.EqualValues(t, numTx, logs.FilterMessageSnippet("transaction IN").Len())
	require.EqualValues(t, numTx-valid, logs.FilterMessageSnippet("transaction REJECTED").Len())
}

func TestPipelineDrainsWithoutStart(t *testing.T) {
	parties := testutil.GenerateParties(2)
	alice, bob := parties[0], parties[1]
	ctx, err := txbuilder.MakeSettle(
		iou.New(money.NewAmount(100, "USD"), alice.Identity, bob.Identity),
		cash.New(money.NewAmount(100, "USD"), alice.Identity),
	)
	require.NoError(t, err)

	pipe := NewPipeline(testutil.NewSimpleLogger(false), contract.Contract{}, WithWorkers(1))
	var result error
	called := false
	require.NoError(t, pipe.Submit(ctx.Sign(alice.PrivateKey, bob.PrivateKey), func(err error) {
		result = err
		called = true
	}))
	require.EqualValues(t, 1, pipe.Stats().Queued)
	pipe.Stop()
	require.True(t, called)
	require.NoError(t, result)
	require.EqualValues(t, 1, pipe.Stats().Accepted)
}

func TestPipelinePanickingVerifier(t *testing.T) {
	txs, _ := makeTransactions(t, 3)
	pipe := NewPipeline(testutil.NewSimpleLogger(false), panickingVerifier{})
	pipe.Start()
	for _, tx := range txs {
		require.NoError(t, pipe.Submit(tx, nil))
	}
	pipe.Stop()
	require.EqualValues(t, 3, pipe.Stats().Rejected)
}

func TestPipelinePanickingCallback(t *testing.T) {
	txs, _ := makeTransactions(t, 10)
	log, logs := testutil.NewObservedLogger()
	pipe := NewPipeline(log, contract.Contract{}, WithWorkers(2))
	pipe.Start()

	var mutex sync.Mutex
	called := 0
	for i, tx := range txs {
		broken := i%2 == 0
		require.NoError(t, pipe.Submit(tx, func(_ error) {
			if broken {
				panic("callback is broken")
			}
			mutex.Lock()
			defer mutex.Unlock()
			called++
		}))
	}
	pipe.Stop()
	require.EqualValues(t, 5, called)
	require.EqualValues(t, 10, pipe.Stats().Accepted+pipe.Stats().Rejected)
	require.EqualValues(t, 5, logs.FilterMessageSnippet("callback is broken").Len())
}

func TestPipelineStatsConsistent(t *testing.T) {
	const numTx = 200
	txs, _ := makeTransactions(t, numTx)
	pipe := NewPipeline(testutil.NewSimpleLogger(false), contract.Contract{}, WithWorkers(8))
	pipe.Start()

	var mutex sync.Mutex
	inconsistent := 0
	for _, tx := range txs {
		require.NoError(t, pipe.Submit(tx, func(_ error) {
			s := pipe.Stats()
			if s.Accepted+s.Rejected > s.Submitted {
				mutex.Lock()
				inconsistent++
				mutex.Unlock()
			}
		}))
	}
	pipe.Stop()
	require.EqualValues(t, 0, inconsistent)
	require.EqualValues(t, numTx, pipe.Stats().Submitted)
}
