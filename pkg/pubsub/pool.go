package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	errPoolClosed = errors.New("channel pool closed")
	errConnClosed = errors.New("amqp connection closed")
)

// pooled is what the pool needs from a channel.
type pooled interface {
	IsClosed() bool
	Close() error
}

// channelPool keeps a bounded number of channels alive.
// Invariant: len(permits) == total channels (idle + borrowed) <= capacity.
type channelPool[T pooled] struct {
	open       func() (T, error)
	connClosed func() bool
	pool       chan T
	capacity   int

	closed  atomic.Bool
	newChMu sync.Mutex
	permits chan struct{}
}

func newChannelPool(conn *amqp.Connection, capacity int) *channelPool[*amqp.Channel] {
	return newPool(capacity, conn.Channel, conn.IsClosed)
}

func newPool[T pooled](capacity int, open func() (T, error), connClosed func() bool) *channelPool[T] {
	if capacity <= 0 {
		capacity = 16
	}
	return &channelPool[T]{
		open:       open,
		connClosed: connClosed,
		pool:       make(chan T, capacity),
		capacity:   capacity,
		permits:    make(chan struct{}, capacity),
	}
}

// Borrow returns an idle channel, opens a new one while under capacity, or
// waits for a Return.
func (cp *channelPool[T]) Borrow(ctx context.Context, retryDelayMs int) (T, error) {
	var zero T
	if cp.closed.Load() {
		return zero, errPoolClosed
	}
	delay := time.Duration(retryDelayMs) * time.Millisecond
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}

	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()

		case ch, ok := <-cp.pool:
			if !ok {
				return zero, errPoolClosed
			}
			if cp.connClosed() || ch.IsClosed() {
				closeQuietly(ch)
				nch, err := cp.newChannel()
				if err != nil {
					<-cp.permits
					if errors.Is(err, errConnClosed) {
						return zero, err
					}
					time.Sleep(delay)
					continue
				}
				return nch, nil
			}
			return ch, nil

		default:
			if cp.connClosed() {
				return zero, errConnClosed
			}
			select {
			case cp.permits <- struct{}{}:
				nch, err := cp.newChannel()
				if err != nil {
					<-cp.permits
					time.Sleep(delay)
					continue
				}
				return nch, nil

			case <-ctx.Done():
				return zero, ctx.Err()

			case <-time.After(delay):
			}
		}
	}
}

// Return hands a borrowed channel back. Closed channels release their
// permit instead.
func (cp *channelPool[T]) Return(ch T) {
	if cp.closed.Load() || cp.connClosed() || ch.IsClosed() {
		closeQuietly(ch)
		cp.release()
		return
	}
	select {
	case cp.pool <- ch:
	default:
		closeQuietly(ch)
		cp.release()
	}
}

func (cp *channelPool[T]) Close() {
	if cp.closed.Swap(true) {
		return
	}
	close(cp.pool)
	for ch := range cp.pool {
		closeQuietly(ch)
		cp.release()
	}
}

func (cp *channelPool[T]) release() {
	select {
	case <-cp.permits:
	default:
	}
}

func (cp *channelPool[T]) newChannel() (T, error) {
	cp.newChMu.Lock()
	defer cp.newChMu.Unlock()
	if cp.connClosed() {
		var zero T
		return zero, errConnClosed
	}
	return cp.open()
}

func closeQuietly(ch pooled) {
	defer func() { _ = recover() }()
	_ = ch.Close()
}
