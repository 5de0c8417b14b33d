package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/heimdex/heimdex-timeline/internal/timeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTarget struct {
	mu      sync.Mutex
	project timeline.Project
	seeks   []int
	err     error
}

func newFakeTarget(end int) *fakeTarget {
	p := timeline.NewProject(25, 4)
	p.Media = []timeline.MediaItem{{ID: "m", Path: "/m.mp4", Kind: timeline.KindVideo}}
	p.Clips = []timeline.Clip{{ID: "c", MediaID: "m", TrackID: "V1", OutFrame: end, Kind: timeline.KindVideo}}
	return &fakeTarget{project: p}
}

func (f *fakeTarget) Snapshot() timeline.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.project.Clone()
}

func (f *fakeTarget) Seek(_ context.Context, frame int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seeks = append(f.seeks, frame)
	f.project.PlayheadFrame = frame
	return nil
}

func (f *fakeTarget) setPlayhead(frame int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.project.PlayheadFrame = frame
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) add(d time.Duration)    { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock              { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }
func withClock(tr *Transport, c *fakeClock) { tr.now = c.now }

func TestTransport_AdvancesWithElapsedTime(t *testing.T) {
	target := newFakeTarget(100)
	clock := newFakeClock()
	tr := NewTransport(target, 10, nil)
	withClock(tr, clock)

	require.NoError(t, tr.Play(context.Background()))
	require.True(t, tr.IsPlaying())

	clock.add(time.Second)
	tr.advance(context.Background())
	assert.Equal(t, 25, target.Snapshot().PlayheadFrame)

	clock.add(400 * time.Millisecond)
	tr.advance(context.Background())
	assert.Equal(t, 35, target.Snapshot().PlayheadFrame)
}

func TestTransport_Throttled(t *testing.T) {
	target := newFakeTarget(1000)
	clock := newFakeClock()
	tr := NewTransport(target, 2, nil)
	withClock(tr, clock)
	require.NoError(t, tr.Play(context.Background()))

	clock.add(100 * time.Millisecond)
	tr.advance(context.Background())
	clock.add(100 * time.Millisecond)
	tr.advance(context.Background())

	assert.Len(t, target.seeks, 1, "second update within the rate window must be dropped")
}

func TestTransport_StopsAtEnd(t *testing.T) {
	target := newFakeTarget(50)
	clock := newFakeClock()
	tr := NewTransport(target, 100, nil)
	withClock(tr, clock)
	require.NoError(t, tr.Play(context.Background()))

	clock.add(10 * time.Second)
	tr.advance(context.Background())

	assert.Equal(t, 50, target.Snapshot().PlayheadFrame)
	assert.False(t, tr.IsPlaying())
}

func TestTransport_PlayFromEndRestarts(t *testing.T) {
	target := newFakeTarget(50)
	target.setPlayhead(80)
	clock := newFakeClock()
	tr := NewTransport(target, 100, nil)
	withClock(tr, clock)
	require.NoError(t, tr.Play(context.Background()))

	clock.add(200 * time.Millisecond)
	tr.advance(context.Background())
	assert.Equal(t, []int{0, 5}, target.seeks)
}

func TestTransport_FollowsExternalSeek(t *testing.T) {
	target := newFakeTarget(1000)
	clock := newFakeClock()
	tr := NewTransport(target, 100, nil)
	withClock(tr, clock)
	require.NoError(t, tr.Play(context.Background()))

	clock.add(time.Second)
	tr.advance(context.Background())
	require.Equal(t, 25, target.Snapshot().PlayheadFrame)

	target.setPlayhead(500)
	clock.add(time.Second)
	tr.advance(context.Background())
	assert.Equal(t, 500, target.Snapshot().PlayheadFrame)

	clock.add(time.Second)
	tr.advance(context.Background())
	assert.Equal(t, 525, target.Snapshot().PlayheadFrame)
}

func TestTransport_SeekErrorPauses(t *testing.T) {
	target := newFakeTarget(1000)
	target.err = errors.New("disk full")
	clock := newFakeClock()
	tr := NewTransport(target, 100, nil)
	withClock(tr, clock)
	require.NoError(t, tr.Play(context.Background()))

	clock.add(time.Second)
	tr.advance(context.Background())
	assert.False(t, tr.IsPlaying())
}

func TestTransport_Toggle(t *testing.T) {
	tr := NewTransport(newFakeTarget(10), 0, nil)
	playing, err := tr.Toggle(context.Background())
	require.NoError(t, err)
	assert.True(t, playing)

	playing, err = tr.Toggle(context.Background())
	require.NoError(t, err)
	assert.False(t, playing)
	assert.False(t, tr.Status().Playing)
}

func TestTransport_StartStop(t *testing.T) {
	target := newFakeTarget(100000)
	tr := NewTransport(target, 50, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Start(ctx)
		close(done)
	}()

	require.Eventually(t, tr.IsRunning, time.Second, 5*time.Millisecond)
	require.NoError(t, tr.Play(context.Background()))
	require.Eventually(t, func() bool { return target.Snapshot().PlayheadFrame > 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.False(t, tr.IsRunning())
	assert.False(t, tr.IsPlaying())
}
