package narrate

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/combat"
)

// DefaultBuffer is the event queue depth when none is configured.
const DefaultBuffer = 64

// Service consumes combat events on a buffered queue and delivers prose to
// an output callback. It implements combat.EventSink: Publish never blocks,
// and events beyond the buffer are dropped and counted rather than stalling
// combat resolution.
type Service struct {
	narrator Narrator
	out      func(string)
	logger   *zap.Logger

	events  chan combat.Event
	dropped atomic.Int64

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

// NewService creates a Service delivering narration to out.
//
// Precondition: narrator and out must be non-nil.
func NewService(narrator Narrator, out func(string), logger *zap.Logger, buffer int) *Service {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		narrator: narrator,
		out:      out,
		logger:   logger,
		events:   make(chan combat.Event, buffer),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine. It returns immediately; the worker
// runs until ctx is cancelled or Close is called.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

// Publish implements combat.EventSink. It never blocks: when the buffer is
// full the event is dropped and the drop counter incremented.
func (s *Service) Publish(e combat.Event) {
	select {
	case s.events <- e:
	default:
		n := s.dropped.Add(1)
		s.logger.Warn("narration queue full, event dropped",
			zap.String("type", string(e.Type)),
			zap.Int64("dropped_total", n),
		)
	}
}

// Dropped returns how many events have been discarded to keep combat moving.
func (s *Service) Dropped() int64 { return s.dropped.Load() }

// Close stops the worker after draining already-queued events.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.events) })
	<-s.done
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-s.events:
			if !ok {
				return
			}
			prose, err := s.narrator.Narrate(ctx, e)
			if err != nil {
				s.logger.Warn("narration failed, falling back to template",
					zap.String("type", string(e.Type)),
					zap.Error(err),
				)
				prose, err = TemplateNarrator{}.Narrate(ctx, e)
				if err != nil {
					continue
				}
			}
			s.out(prose)
		}
	}
}
