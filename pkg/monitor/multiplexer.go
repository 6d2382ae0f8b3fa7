package monitor

import (
	"context"
	"sort"
	"sync"
)

// OpenFunc opens a change stream. The stream must close its channel or stop
// delivering once ctx is cancelled.
type OpenFunc func(ctx context.Context) (<-chan Change, error)

// Multiplexer merges one discovery stream with a dynamic set of per-device
// change streams.
//
// Register, Retire, Next, Len, Active and IDs must be called from a single
// goroutine; the stream set is not locked. Close may be called from any
// goroutine once.
type Multiplexer struct {
	primary <-chan DiscoveryEvent
	merged  chan envelope

	// streams holds the current registration per device. Retired
	// registrations keep forwarding until their channel closes but no
	// longer count as the device's stream.
	streams map[EntityID]*registration
	retired map[*registration]struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// registration is one opened change stream.
type registration struct {
	id     EntityID
	cancel context.CancelFunc

	// done is closed by the forwarder as soon as the stream's channel
	// closes, ahead of the SourceClosed marker reaching Next.
	done chan struct{}
}

func (r *registration) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// envelope tags a merged event with the registration that produced it.
type envelope struct {
	ev  MergedEvent
	reg *registration
}

// NewMultiplexer creates a Multiplexer over the given discovery stream.
// Change streams opened through Register live at most as long as ctx.
func NewMultiplexer(ctx context.Context, primary <-chan DiscoveryEvent) *Multiplexer {
	ctx, cancel := context.WithCancel(ctx)
	return &Multiplexer{
		primary: primary,
		merged:  make(chan envelope),
		streams: make(map[EntityID]*registration),
		retired: make(map[*registration]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register opens a change stream for id and adds it to the merged sequence.
// It fails with ErrAlreadyRegistered if id still has an active stream, or
// with the error returned by open; in both cases the set is unchanged.
// A stream of id that has already ended is replaced.
func (m *Multiplexer) Register(id EntityID, open OpenFunc) error {
	if m.Active(id) {
		return ErrAlreadyRegistered
	}

	ctx, cancel := context.WithCancel(m.ctx)
	changes, err := open(ctx)
	if err != nil {
		cancel()
		return err
	}

	m.Retire(id)
	reg := &registration{id: id, cancel: cancel, done: make(chan struct{})}
	m.streams[id] = reg
	m.wg.Add(1)
	go m.forward(ctx, reg, changes)
	return nil
}

// Retire detaches id's current stream so a new one can be registered. The
// retired stream keeps delivering its queued changes. Its SourceClosed
// marker is only surfaced when id has no newer stream by then.
func (m *Multiplexer) Retire(id EntityID) {
	reg, ok := m.streams[id]
	if !ok {
		return
	}
	delete(m.streams, id)
	m.retired[reg] = struct{}{}
}

// forward moves one stream's changes into the merged channel. When the
// stream ends it posts a SourceClosed marker so Next can evict it.
func (m *Multiplexer) forward(ctx context.Context, reg *registration, changes <-chan Change) {
	defer m.wg.Done()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				close(reg.done)
				m.post(ctx, envelope{ev: MergedEvent{Source: SourceClosed, ID: reg.id}, reg: reg})
				return
			}
			if !m.post(ctx, envelope{ev: MergedEvent{Source: SourceChange, ID: reg.id, Change: change}, reg: reg}) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Multiplexer) post(ctx context.Context, env envelope) bool {
	select {
	case m.merged <- env:
		return true
	case <-ctx.Done():
		return false
	}
}

// Next blocks until an event is available from any source.
//
// It returns ErrExhausted once the discovery stream has been closed and no
// change stream remains, or ctx.Err() when ctx is cancelled. A SourceClosed
// event is returned after the stream has been removed from the set.
func (m *Multiplexer) Next(ctx context.Context) (MergedEvent, error) {
	for {
		if m.primary == nil && len(m.streams) == 0 && len(m.retired) == 0 {
			return MergedEvent{}, ErrExhausted
		}

		select {
		case ev, ok := <-m.primary:
			if !ok {
				// A nil channel is never ready, so the select now waits
				// on change streams only.
				m.primary = nil
				continue
			}
			return MergedEvent{Source: SourceDiscovery, ID: ev.ID, Discovery: ev}, nil

		case env := <-m.merged:
			if env.ev.Source == SourceClosed && !m.evict(env.reg) {
				continue
			}
			return env.ev, nil

		case <-ctx.Done():
			return MergedEvent{}, ctx.Err()
		}
	}
}

// evict drops reg from the set and reports whether its end concerns the
// device's current state, which is false once a newer stream replaced it.
func (m *Multiplexer) evict(reg *registration) bool {
	reg.cancel()
	if _, ok := m.retired[reg]; ok {
		delete(m.retired, reg)
		_, replaced := m.streams[reg.id]
		return !replaced
	}
	if m.streams[reg.id] == reg {
		delete(m.streams, reg.id)
	}
	return true
}

// Len returns the number of devices with a registered change stream,
// counting streams that ended but whose marker Next has not returned yet.
func (m *Multiplexer) Len() int {
	return len(m.streams)
}

// Active reports whether id has a change stream that has not ended.
func (m *Multiplexer) Active(id EntityID) bool {
	reg, ok := m.streams[id]
	return ok && !reg.finished()
}

// IDs returns the devices with an active change stream, sorted.
func (m *Multiplexer) IDs() []EntityID {
	ids := make([]EntityID, 0, len(m.streams))
	for id := range m.streams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close cancels every change stream and waits for the forwarding
// goroutines to exit.
func (m *Multiplexer) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
	})
}
