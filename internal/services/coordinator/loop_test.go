package coordinator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictactoe-go/internal/testutil"
)

type LoopSuite struct {
	suite.Suite
	loop   *Loop
	cancel context.CancelFunc
}

func TestLoopSuite(t *testing.T) {
	suite.Run(t, new(LoopSuite))
}

func (s *LoopSuite) SetupTest() {
	s.loop = NewLoop(8, testutil.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop.Run(ctx)
}

func (s *LoopSuite) TearDownTest() {
	s.cancel()
}

func (s *LoopSuite) TestRunsEventsInOrder() {
	var order []int
	for i := range 5 {
		s.loop.Post(func() { order = append(order, i) })
	}

	got, err := query(context.Background(), s.loop, func() []int { return order })
	s.Require().NoError(err)
	s.Equal([]int{0, 1, 2, 3, 4}, got)
}

func (s *LoopSuite) TestSurvivesPanic() {
	s.loop.Post(func() { panic("boom") })

	got, err := query(context.Background(), s.loop, func() string { return "still running" })
	s.Require().NoError(err)
	s.Equal("still running", got)
}

func (s *LoopSuite) TestQueryHonoursContext() {
	s.loop.Stop()
	<-s.loop.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := query(ctx, s.loop, func() int { return 1 })
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *LoopSuite) TestPostAfterStopDoesNotBlock() {
	s.loop.Stop()
	var ran atomic.Bool
	s.loop.Post(func() { ran.Store(true) })
	s.False(ran.Load())
}

func (s *LoopSuite) TestQueryGivesUpWhileQueueIsFull() {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	s.loop.Post(func() {
		close(started)
		<-release
	})
	<-started
	for range 8 {
		s.loop.Post(func() {})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := query(ctx, s.loop, func() int { return 1 })
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *LoopSuite) TestInlinePostContextHonoursCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := InlineDispatcher{}.PostContext(ctx, func() { ran = true })
	s.ErrorIs(err, context.Canceled)
	s.False(ran)
}
