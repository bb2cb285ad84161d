package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/clock"
	"github.com/Nakonechnik/SeaBattle/internal/dependencies/mocks"
	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/testutil"
)

type TimerSuite struct {
	suite.Suite

	mu      sync.Mutex
	expired []model.RoomID
}

func TestTimerSuite(t *testing.T) {
	suite.Run(t, new(TimerSuite))
}

func (s *TimerSuite) SetupTest() {
	s.mu.Lock()
	s.expired = nil
	s.mu.Unlock()
}

func (s *TimerSuite) newService(budget time.Duration) *Service {
	svc := New(budget, clock.New(), testutil.NopLogger())
	svc.SetOnExpire(func(roomID model.RoomID) {
		s.mu.Lock()
		s.expired = append(s.expired, roomID)
		s.mu.Unlock()
	})
	return svc
}

func (s *TimerSuite) expiredRooms() []model.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RoomID, len(s.expired))
	copy(out, s.expired)
	return out
}

func (s *TimerSuite) TestExpiresAfterBudget() {
	svc := s.newService(20 * time.Millisecond)
	defer svc.Stop()

	svc.Start("room-1")

	s.Eventually(func() bool {
		rooms := s.expiredRooms()
		return len(rooms) == 1 && rooms[0] == model.RoomID("room-1")
	}, time.Second, 5*time.Millisecond)

	s.Zero(svc.TimeLeft("room-1"))
}

func (s *TimerSuite) TestCancelSuppressesExpiry() {
	svc := s.newService(30 * time.Millisecond)
	defer svc.Stop()

	svc.Start("room-1")
	svc.Cancel("room-1")

	time.Sleep(80 * time.Millisecond)
	s.Empty(s.expiredRooms())
}

func (s *TimerSuite) TestRestartReplacesTimer() {
	svc := s.newService(40 * time.Millisecond)
	defer svc.Stop()

	svc.Start("room-1")
	time.Sleep(20 * time.Millisecond)
	svc.Start("room-1")

	// The original deadline passes without firing; only the replacement fires
	time.Sleep(30 * time.Millisecond)
	s.Empty(s.expiredRooms())

	s.Eventually(func() bool {
		return len(s.expiredRooms()) == 1
	}, time.Second, 5*time.Millisecond)
}

func (s *TimerSuite) TestTimeLeftCountsDown() {
	svc := s.newService(time.Minute)
	defer svc.Stop()

	svc.Start("room-1")

	left := svc.TimeLeft("room-1")
	s.Greater(left, 50*time.Second)
	s.LessOrEqual(left, time.Minute)
}

func (s *TimerSuite) TestTimeLeftFollowsInjectedClock() {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	svc := New(time.Minute, clk, testutil.NopLogger())
	defer svc.Stop()

	svc.Start("room-1")
	s.Equal(time.Minute, svc.TimeLeft("room-1"))

	// The remainder is deadline arithmetic on the injected clock
	clk.Advance(40 * time.Second)
	s.Equal(20*time.Second, svc.TimeLeft("room-1"))

	// Past the deadline it clamps to zero without firing the callback
	clk.Advance(time.Minute)
	s.Zero(svc.TimeLeft("room-1"))
	s.Empty(s.expiredRooms())
}

func (s *TimerSuite) TestTimeLeftUnknownRoom() {
	svc := s.newService(time.Minute)
	s.Zero(svc.TimeLeft("nope"))
}

func (s *TimerSuite) TestIndependentRooms() {
	svc := s.newService(20 * time.Millisecond)
	defer svc.Stop()

	svc.Start("room-1")
	svc.Start("room-2")
	svc.Cancel("room-1")

	s.Eventually(func() bool {
		rooms := s.expiredRooms()
		return len(rooms) == 1 && rooms[0] == model.RoomID("room-2")
	}, time.Second, 5*time.Millisecond)
}

func (s *TimerSuite) TestDefaultBudget() {
	svc := New(0, clock.New(), testutil.NopLogger())
	s.Equal(DefaultTurnBudget, svc.Budget())
}
