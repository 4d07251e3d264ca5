package deposit

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// TransferRequester receives outbound transfer instructions for the
// external token mover. Requests are fire-and-forget: the ledger entry is
// already committed by the time a request is issued, so implementations
// must not feed a failure back into the ledger.
type TransferRequester interface {
	RequestTransfer(to, token string, amount *big.Int)
}

// NoopTransferRequester discards all transfer requests.
type NoopTransferRequester struct{}

// RequestTransfer implements the TransferRequester interface.
func (NoopTransferRequester) RequestTransfer(string, string, *big.Int) {}

// TransferRequest is a single outbound instruction handed to the external
// transfer system.
type TransferRequest struct {
	ID        string
	To        string
	Token     string
	Amount    *big.Int
	CreatedAt int64
}

// TransferQueue buffers outbound transfer requests for an external
// dispatcher. Enqueueing never blocks the ledger call; when the buffer is
// full the request is dropped and counted, leaving reconciliation to the
// operator.
type TransferQueue struct {
	requests chan TransferRequest
	clock    func() time.Time
}

// NewTransferQueue constructs a queue with the given buffer size.
func NewTransferQueue(size int) *TransferQueue {
	if size <= 0 {
		size = 64
	}
	return &TransferQueue{
		requests: make(chan TransferRequest, size),
		clock:    time.Now,
	}
}

// SetClock overrides the time source (primarily for deterministic testing).
func (q *TransferQueue) SetClock(clock func() time.Time) {
	if q == nil || clock == nil {
		return
	}
	q.clock = clock
}

// RequestTransfer implements the TransferRequester interface.
func (q *TransferQueue) RequestTransfer(to, token string, amount *big.Int) {
	if q == nil {
		return
	}
	amt := big.NewInt(0)
	if amount != nil {
		amt = new(big.Int).Set(amount)
	}
	request := TransferRequest{
		ID:        uuid.NewString(),
		To:        to,
		Token:     token,
		Amount:    amt,
		CreatedAt: q.clock().UTC().Unix(),
	}
	metrics := defaultTransferMetrics()
	select {
	case q.requests <- request:
		metrics.enqueued.Inc()
	default:
		metrics.dropped.Inc()
	}
}

// Requests exposes the stream of pending outbound transfers.
func (q *TransferQueue) Requests() <-chan TransferRequest {
	return q.requests
}
