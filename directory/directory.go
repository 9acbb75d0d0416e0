package directory

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrChannelRange reports a channel index outside [0, width)
	ErrChannelRange = errors.New("directory: channel index out of range")
	ErrNilObserver  = errors.New("directory: nil observer")

	// ErrReleased reports a lifetime that was already gone at registration
	ErrReleased = errors.New("directory: object already released")
)

// Observer receives the raw value of its channel
type Observer interface {
	OnBitChanged(enabled bool)
}

// Lifetime is the teardown contract of a bound object
// The directory holds no ownership; the object's owner drives release
type Lifetime interface {
	// Watch arranges for release to run when the object goes away
	// The returned stop func disarms the watch and must be idempotent
	Watch(release func()) (stop func())

	// Alive reports whether the object can still receive notifications
	Alive() bool
}

// BitSource exposes the canonical bit values to the directory
type BitSource interface {
	InRange(index int) bool
	IsBitSet(index int) bool
}

type entry struct {
	observer Observer
	life     Lifetime
	stop     func()
}

// Directory maps channel index to the single object bound to it
// Entries are written only through Register, Unregister and lifetime release
type Directory struct {
	bits    BitSource
	entries map[int]*entry
	logger  *zap.Logger
}

func New(bits BitSource, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		bits:    bits,
		entries: make(map[int]*entry),
		logger:  logger.Named("directory"),
	}
}

// Register binds obs to index, replacing any prior binding
// The current bit is delivered before Register returns
// life may be nil for objects that never go away on their own
// A dead lifetime is refused and leaves any prior binding in place
func (d *Directory) Register(index int, obs Observer, life Lifetime) error {
	switch {
	case obs == nil:
		return ErrNilObserver
	case !d.bits.InRange(index):
		return errors.Wrapf(ErrChannelRange, "channel %d", index)
	case life != nil && !life.Alive():
		return errors.Wrapf(ErrReleased, "channel %d", index)
	}

	if prev, ok := d.entries[index]; ok {
		if prev.observer != obs {
			d.logger.Warn("channel already bound, replacing",
				zap.Int("channel", index),
			)
		}
		d.drop(index, prev)
	}

	e := &entry{observer: obs, life: life}
	d.entries[index] = e
	if life != nil {
		e.stop = life.Watch(func() { d.release(index, e) })
	}

	d.Notify(index, d.bits.IsBitSet(index))
	return nil
}

// Unregister removes the binding if present; repeated calls are no-ops
func (d *Directory) Unregister(index int) {
	if e, ok := d.entries[index]; ok {
		d.drop(index, e)
	}
}

// Get returns the bound observer or nil
func (d *Directory) Get(index int) Observer {
	if e, ok := d.entries[index]; ok {
		return e.observer
	}
	return nil
}

// Notify delivers enabled to the observer bound to index
// Bindings whose object is no longer alive are pruned silently
func (d *Directory) Notify(index int, enabled bool) {
	e, ok := d.entries[index]
	if !ok {
		return
	}
	if e.life != nil && !e.life.Alive() {
		d.logger.Debug("dropping stale binding", zap.Int("channel", index))
		d.drop(index, e)
		return
	}
	e.observer.OnBitChanged(enabled)
}

// Channels returns bound channel indices in ascending order
func (d *Directory) Channels() []int {
	out := make([]int, 0, len(d.entries))
	for i := range d.entries {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (d *Directory) Len() int {
	return len(d.entries)
}

// Clear removes every binding
func (d *Directory) Clear() {
	for _, i := range d.Channels() {
		d.Unregister(i)
	}
}

// release is the lifetime callback; it only removes the entry it was armed for
func (d *Directory) release(index int, e *entry) {
	if cur, ok := d.entries[index]; ok && cur == e {
		d.logger.Debug("bound object released", zap.Int("channel", index))
		d.drop(index, e)
	}
}

func (d *Directory) drop(index int, e *entry) {
	delete(d.entries, index)
	if e.stop != nil {
		e.stop()
	}
}
