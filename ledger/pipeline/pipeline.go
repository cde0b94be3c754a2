// Package pipeline verifies a stream of signed transactions on a pool of workers
package pipeline

import (
	"fmt"
	"sync"

	"github.com/lunfardo314/easyiou/ledger/txbuilder"
	"github.com/lunfardo314/easyiou/util/fifoqueue"
	"github.com/lunfardo314/unitrie/common"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type (
	Pipeline struct {
		log        *zap.SugaredLogger
		verifier   txbuilder.Verifier
		queue      *fifoqueue.Queue[*job]
		numWorkers int
		logQueue   bool
		startOnce  sync.Once
		stopOnce   sync.Once
		wg         sync.WaitGroup

		submitted atomic.Uint64
		accepted  atomic.Uint64
		rejected  atomic.Uint64
	}

	Option func(pipe *Pipeline)

	Stats struct {
		Submitted uint64
		Accepted  uint64
		Rejected  uint64
		Queued    int
	}

	job struct {
		tx       *txbuilder.SignedTransaction
		callback func(err error)
	}
)

const DefaultNumWorkers = 4

func WithWorkers(n int) Option {
	return func(pipe *Pipeline) {
		if n > 0 {
			pipe.numWorkers = n
		}
	}
}

// WithQueueLogging makes the pipeline log every transaction entering the queue at debug level
func WithQueueLogging() Option {
	return func(pipe *Pipeline) {
		pipe.logQueue = true
	}
}

func NewPipeline(globalLog *zap.SugaredLogger, verifier txbuilder.Verifier, opts ...Option) *Pipeline {
	ret := &Pipeline{
		log:        globalLog.Named("pipeline"),
		verifier:   verifier,
		queue:      fifoqueue.New[*job](),
		numWorkers: DefaultNumWorkers,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (pipe *Pipeline) Start() {
	pipe.startOnce.Do(func() {
		pipe.log.Infof("STARTED with %d workers", pipe.numWorkers)
		for i := 0; i < pipe.numWorkers; i++ {
			pipe.wg.Add(1)
			go pipe.worker(i)
		}
	})
}

func (pipe *Pipeline) worker(n int) {
	defer pipe.wg.Done()

	log := pipe.log.Named(fmt.Sprintf("worker%d", n))
	log.Debugf("STARTED")
	pipe.queue.Consume(func(j *job) {
		err := pipe.verify(j.tx)
		txid := j.tx.ID()
		if err != nil {
			pipe.rejected.Inc()
			log.Debugf("transaction REJECTED: ID = %s, reason: '%v'", txid.String(), err)
		} else {
			pipe.accepted.Inc()
			log.Debugf("transaction ACCEPTED: ID = %s", txid.String())
		}
		if j.callback == nil {
			return
		}
		if errCallback := common.CatchPanicOrError(func() error {
			j.callback(err)
			return nil
		}); errCallback != nil {
			log.Errorf("callback failed for transaction %s: '%v'", txid.String(), errCallback)
		}
	})
	log.Debugf("STOPPED")
}

func (pipe *Pipeline) verify(tx *txbuilder.SignedTransaction) error {
	return common.CatchPanicOrError(func() error {
		return tx.Verify(pipe.verifier)
	})
}

// Submit queues the transaction for verification. The callback, if not nil, is called
// from a worker goroutine with the verification result
func (pipe *Pipeline) Submit(tx *txbuilder.SignedTransaction, callback func(err error)) error {
	if tx == nil {
		return fmt.Errorf("Submit: transaction is nil")
	}
	// Accepted + Rejected <= Submitted at any time
	pipe.submitted.Inc()
	if err := pipe.queue.Write(&job{tx: tx, callback: callback}); err != nil {
		pipe.submitted.Dec()
		return fmt.Errorf("Submit: %w", err)
	}
	if pipe.logQueue {
		txid := tx.ID()
		pipe.log.Debugf("transaction IN: ID = %s", txid.String())
	}
	return nil
}

// Stop stops accepting transactions and waits until all queued ones are verified
func (pipe *Pipeline) Stop() {
	pipe.stopOnce.Do(func() {
		pipe.queue.Close()
		pipe.Start()
		pipe.wg.Wait()
		s := pipe.Stats()
		pipe.log.Infof("STOPPED. Submitted: %d, accepted: %d, rejected: %d", s.Submitted, s.Accepted, s.Rejected)
	})
}

func (pipe *Pipeline) Stats() Stats {
	return Stats{
		Submitted: pipe.submitted.Load(),
		Accepted:  pipe.accepted.Load(),
		Rejected:  pipe.rejected.Load(),
		Queued:    pipe.queue.Len(),
	}
}
