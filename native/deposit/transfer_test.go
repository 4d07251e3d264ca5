package deposit

import (
	"math/big"
	"testing"
	"time"
)

func TestTransferQueueDeliversRequests(t *testing.T) {
	queue := NewTransferQueue(2)
	queue.SetClock(func() time.Time { return time.Unix(1700000000, 0) })
	queue.RequestTransfer("alice", "tokenx", big.NewInt(75))
	select {
	case request := <-queue.Requests():
		if request.ID == "" {
			t.Fatal("request missing identifier")
		}
		if request.To != "alice" || request.Token != "tokenx" {
			t.Fatalf("unexpected request %+v", request)
		}
		if request.Amount.Cmp(big.NewInt(75)) != 0 {
			t.Fatalf("amount %s, want 75", request.Amount)
		}
		if request.CreatedAt != 1700000000 {
			t.Fatalf("created at %d", request.CreatedAt)
		}
	default:
		t.Fatal("no request enqueued")
	}
}

func TestTransferQueueDropsWhenFull(t *testing.T) {
	queue := NewTransferQueue(1)
	queue.RequestTransfer("alice", "tokenx", big.NewInt(1))
	queue.RequestTransfer("alice", "tokenx", big.NewInt(2))
	if got := len(queue.Requests()); got != 1 {
		t.Fatalf("queue holds %d requests, want 1", got)
	}
	first := <-queue.Requests()
	if first.Amount.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("kept request amount %s, want the first enqueued", first.Amount)
	}
}
