package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Change stream operation types we forward to sinks.
const (
	OpInsert  = "insert"
	OpUpdate  = "update"
	OpReplace = "replace"
	OpDelete  = "delete"
)

// Change is one row-level event from the durable store's change feed.
// Doc is nil for deletes; DocID is always set.
type Change[T any] struct {
	Op    string
	Doc   *T
	DocID string
}

type changeDoc[T any] struct {
	OperationType string `bson:"operationType"`
	FullDocument  *T     `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// ChangeFeed tails a collection's change stream and fans events out to
// registered sinks. It is the durable delivery channel: slower than the
// websocket broadcast but it never misses a committed write.
type ChangeFeed[T any] struct {
	collection *mongo.Collection
	logger     *zap.Logger

	mu     sync.RWMutex
	sinks  map[int64]func(Change[T])
	nextID int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewChangeFeed creates a feed for the given collection. Call Start to
// begin tailing.
func NewChangeFeed[T any](collection *mongo.Collection, logger *zap.Logger) *ChangeFeed[T] {
	return &ChangeFeed[T]{
		collection: collection,
		logger:     logger,
		sinks:      make(map[int64]func(Change[T])),
		done:       make(chan struct{}),
	}
}

// Listen registers a sink for every change on the collection. The
// returned function removes the sink and is safe to call more than once.
func (f *ChangeFeed[T]) Listen(fn func(Change[T])) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.sinks[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.sinks, id)
			f.mu.Unlock()
		})
	}
}

// Start opens the change stream and tails it until Stop or ctx
// cancellation. Stream errors reopen the stream after a short wait; a
// dead feed degrades delivery latency, not correctness, because reads
// still hit the store directly.
func (f *ChangeFeed[T]) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)

	go func() {
		defer close(f.done)
		for {
			if err := f.tail(ctx); err != nil {
				if errors.Is(err, context.Canceled) || ctx.Err() != nil {
					return
				}
				f.logger.Warn("change stream interrupted, reopening", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
				}
			}
		}
	}()
}

// Stop tears down the stream and waits for the tail goroutine to exit.
func (f *ChangeFeed[T]) Stop() {
	if f.cancel != nil {
		f.cancel()
		<-f.done
	}
}

func (f *ChangeFeed[T]) tail(ctx context.Context) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := f.collection.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		var doc changeDoc[T]
		if err := stream.Decode(&doc); err != nil {
			f.logger.Warn("failed to decode change event", zap.Error(err))
			continue
		}

		switch doc.OperationType {
		case OpInsert, OpUpdate, OpReplace, OpDelete:
		default:
			continue
		}

		f.dispatch(Change[T]{
			Op:    doc.OperationType,
			Doc:   doc.FullDocument,
			DocID: doc.DocumentKey.ID,
		})
	}

	return stream.Err()
}

func (f *ChangeFeed[T]) dispatch(change Change[T]) {
	f.mu.RLock()
	sinks := make([]func(Change[T]), 0, len(f.sinks))
	for _, fn := range f.sinks {
		sinks = append(sinks, fn)
	}
	f.mu.RUnlock()

	for _, fn := range sinks {
		fn(change)
	}
}
