package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/clock"
	"github.com/Nakonechnik/SeaBattle/internal/model"
)

// DefaultTurnBudget is how long a player has to fire before forfeiting
const DefaultTurnBudget = 120 * time.Second

// ExpireFunc is invoked when a turn timer fires and wins its claim.
// It runs on the timer goroutine; implementations must re-validate game
// state before acting, since the losing side of the race may already
// have resolved the turn.
type ExpireFunc func(roomID model.RoomID)

// Service owns the per-room turn timers. Each Start replaces the room's
// previous timer; a stale expiry from a replaced timer can never fire
// the callback because its generation no longer matches.
//
// Expiry is scheduled on the runtime timer. The injected clock feeds
// only the deadline arithmetic behind TimeLeft, so advancing a mock
// clock moves the reported remainder but never fires the callback;
// tests that need a real expiry use a short budget on a real clock.
type Service struct {
	mu     sync.Mutex
	timers map[model.RoomID]*handle

	budget   time.Duration
	clock    clock.Clock
	onExpire ExpireFunc
	logger   *slog.Logger
}

type handle struct {
	generation uint64
	timer      *time.Timer
	deadline   time.Time
}

// New creates a turn timer service. The expire callback may be nil and
// set later with SetOnExpire, which the factory uses to break the wiring
// cycle between the timer and the game controller.
func New(budget time.Duration, clk clock.Clock, logger *slog.Logger) *Service {
	if budget <= 0 {
		budget = DefaultTurnBudget
	}
	return &Service{
		timers: make(map[model.RoomID]*handle),
		budget: budget,
		clock:  clk,
		logger: logger.With(slog.String("component", "turn_timer")),
	}
}

// SetOnExpire installs the expiry callback. Must be called before Start.
func (s *Service) SetOnExpire(fn ExpireFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

// Budget returns the configured per-turn time budget
func (s *Service) Budget() time.Duration {
	return s.budget
}

// Start arms (or re-arms) the turn timer for a room. Any previously
// armed timer for the room is cancelled.
func (s *Service) Start(roomID model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	generation := uint64(1)
	if prev, ok := s.timers[roomID]; ok {
		prev.timer.Stop()
		generation = prev.generation + 1
	}

	h := &handle{
		generation: generation,
		deadline:   s.clock.Now().Add(s.budget),
	}
	h.timer = time.AfterFunc(s.budget, func() {
		s.expire(roomID, generation)
	})
	s.timers[roomID] = h
}

// Cancel stops and discards the room's timer, if any. A racing expiry
// that has already fired but not yet claimed the room becomes a no-op.
func (s *Service) Cancel(roomID model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.timers[roomID]; ok {
		h.timer.Stop()
		delete(s.timers, roomID)
	}
}

// TimeLeft reports the remaining budget for the room's current turn,
// or zero when no timer is armed.
func (s *Service) TimeLeft(roomID model.RoomID) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.timers[roomID]
	if !ok {
		return 0
	}
	left := h.deadline.Sub(s.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Stop cancels all armed timers, for shutdown
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for roomID, h := range s.timers {
		h.timer.Stop()
		delete(s.timers, roomID)
	}
}

// expire claims the room's timer for the given generation. The claim
// succeeds only if the handle is still the current one, so a turn
// resolved between fire and claim silences the callback.
func (s *Service) expire(roomID model.RoomID, generation uint64) {
	s.mu.Lock()
	h, ok := s.timers[roomID]
	if !ok || h.generation != generation {
		s.mu.Unlock()
		return
	}
	delete(s.timers, roomID)
	fn := s.onExpire
	s.mu.Unlock()

	if fn == nil {
		return
	}

	s.logger.Info("turn timer expired",
		slog.String("room_id", string(roomID)),
	)
	fn(roomID)
}
