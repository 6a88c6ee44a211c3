package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
)

var ErrDropped = errors.New("event dropped")

// Sink receives committed events. Delivery is best effort; an error never
// rolls back the operation that produced the event.
type Sink interface {
	Emit(ctx context.Context, e *Event) error
}

type SinkFunc func(ctx context.Context, e *Event) error

func (f SinkFunc) Emit(ctx context.Context, e *Event) error {
	return f(ctx, e)
}

type nop struct{}

func (nop) Emit(context.Context, *Event) error { return nil }

func Nop() Sink { return nop{} }

type logSink struct {
	log *zap.Logger
}

// NewLogSink writes every event at Info.
func NewLogSink(log *zap.Logger) Sink {
	return &logSink{log: log}
}

func (s *logSink) Emit(_ context.Context, e *Event) error {
	fields := []zap.Field{
		zap.Stringer("id", e.ID),
		zap.String("kind", string(e.Kind)),
		zap.Stringer("mint", e.Mint),
	}
	switch {
	case e.Trade != nil:
		fields = append(fields,
			zap.Stringer("trader", e.Trade.Trader),
			zap.String("direction", e.Trade.Direction),
			zap.Uint64("quote", e.Trade.QuoteAmount),
			zap.Uint64("base", e.Trade.BaseAmount),
			zap.Uint64("fee", e.Trade.Fee),
			zap.Bool("complete", e.Trade.Complete),
		)
	case e.CurveCreated != nil:
		fields = append(fields, zap.Stringer("creator", e.CurveCreated.Creator))
	case e.MigrationPrepared != nil:
		fields = append(fields,
			zap.Uint64("tokens", e.MigrationPrepared.TokenAmount),
			zap.Uint64("quote", e.MigrationPrepared.QuoteAmount),
		)
	case e.PoolMigrated != nil:
		fields = append(fields, zap.Stringer("pool", e.PoolMigrated.Pool))
	}
	s.log.Info("event", fields...)
	return nil
}

type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink writes one JSON document per line.
func NewJSONSink(w io.Writer) Sink {
	return &jsonSink{enc: json.NewEncoder(w)}
}

func (s *jsonSink) Emit(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(e)
}

type channelSink struct {
	ch chan<- *Event
}

// NewChannelSink never blocks; a full channel drops the event.
func NewChannelSink(ch chan<- *Event) Sink {
	return &channelSink{ch: ch}
}

func (s *channelSink) Emit(_ context.Context, e *Event) error {
	select {
	case s.ch <- e:
		return nil
	default:
		return ErrDropped
	}
}

type multi []Sink

// Multi fans out to every sink and joins their errors.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Emit(ctx context.Context, e *Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
