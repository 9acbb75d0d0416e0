package maskable

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lixenwraith/bitswitch/bitmask"
	"github.com/lixenwraith/bitswitch/directory"
	"github.com/lixenwraith/bitswitch/scene"
)

// testHost mirrors the controller's mutation path on top of the real registry and directory
type testHost struct {
	bits *bitmask.Registry
	dir  *directory.Directory
}

func newHost(width int) *testHost {
	bits := bitmask.New(width)
	return &testHost{bits: bits, dir: directory.New(bits, nil)}
}

func (h *testHost) Register(index int, obs directory.Observer, life directory.Lifetime) error {
	return h.dir.Register(index, obs, life)
}

func (h *testHost) SetBit(index int, enabled bool) {
	if h.bits.SetBit(index, enabled) {
		h.dir.Notify(index, enabled)
	}
}

func (h *testHost) ToggleBit(index int) {
	if h.bits.ToggleBit(index) {
		h.dir.Notify(index, h.bits.IsBitSet(index))
	}
}

// level builds root -> [left, door, right], door -> [panel, mask]
type level struct {
	root, left, door, right, panel, mask *scene.Node
}

func newLevel(t *testing.T) *level {
	t.Helper()
	l := &level{
		root:  scene.NewNode("root"),
		left:  scene.NewNode("left"),
		door:  scene.NewNode("door"),
		right: scene.NewNode("right"),
		panel: scene.NewNode("panel"),
		mask:  scene.NewNode("mask"),
	}
	for _, n := range []*scene.Node{l.left, l.door, l.right} {
		require.NoError(t, l.root.AddChild(n))
	}
	require.NoError(t, l.door.AddChild(l.panel))
	require.NoError(t, l.door.AddChild(l.mask))
	return l
}

func TestScenarioSetThenToggle(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)

	var got []bool
	b := New(host, l.mask, Config{Channel: 0}, WithActivation(), WithListener(func(v bool) { got = append(got, v) }))

	// bit 0 starts clear, so the owner is detached immediately
	require.Equal(t, StateDetached, b.State())
	require.NoError(t, b.Reactivate())

	host.SetBit(0, true)
	assert.Equal(t, "0001", host.bits.String())
	assert.Equal(t, StateActive, b.State())
	assert.Same(t, l.root, l.door.Parent())
	assert.Equal(t, 1, l.door.Index())

	host.ToggleBit(0)
	assert.Equal(t, "0000", host.bits.String())
	assert.Equal(t, []bool{false, true, false}, got)
	assert.Equal(t, StateDetached, b.State())
	assert.Nil(t, l.door.Parent())
	assert.Equal(t, DetachmentRecord{Parent: l.root, Index: 1, Detached: true}, b.Record())
}

func TestInvertedChannelDeactivatesOnSet(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)

	b := New(host, l.mask, Config{Channel: 2, Invert: true}, WithActivation())
	// raw 0 inverted to enabled
	require.Equal(t, StateActive, b.State())
	require.True(t, b.Effective())

	host.SetBit(2, true)
	assert.False(t, b.Effective())
	assert.Equal(t, StateDetached, b.State())
	assert.True(t, host.bits.IsBitSet(2), "canonical mask keeps raw intent")
}

func TestOwnerCapabilityReceivesEffectiveValue(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	owner := &ownerRecorder{}

	New(host, l.mask, Config{Channel: 1, Invert: true}, WithOwner(owner))
	host.SetBit(1, true)

	assert.Equal(t, []bool{true, false}, owner.got)
	// no activation policy, nothing moved
	assert.Same(t, l.root, l.door.Parent())
}

type ownerRecorder struct{ got []bool }

func (o *ownerRecorder) OnBitChanged(v bool) { o.got = append(o.got, v) }

func TestOutOfRangeChannelStaysUnbound(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	core, logs := observer.New(zapcore.DebugLevel)

	called := false
	b := New(host, l.mask, Config{Channel: 4}, WithLogger(zap.New(core)), WithListener(func(bool) { called = true }))

	assert.Equal(t, StateUnbound, b.State())
	assert.True(t, errors.Is(b.Err(), directory.ErrChannelRange))
	assert.False(t, called)
	assert.Equal(t, 1, logs.FilterMessage("binding failed, object stays unbound").Len())

	assert.ErrorIs(t, b.Deactivate(), ErrUnbound)
	assert.ErrorIs(t, b.Reactivate(), ErrUnbound)
	assert.ErrorIs(t, b.RequestToggle(), ErrUnbound)
	assert.ErrorIs(t, b.RequestBitFlip(true), ErrUnbound)
	assert.Zero(t, host.dir.Len())
}

func TestFreedNodeStaysUnbound(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	kept := directoryFunc(func(bool) {})
	require.NoError(t, host.Register(0, kept, nil))
	l.door.Free()

	b := New(host, l.mask, Config{Channel: 0}, WithActivation())

	assert.Equal(t, StateUnbound, b.State())
	assert.ErrorIs(t, b.Err(), directory.ErrReleased)
	assert.NotNil(t, host.dir.Get(0), "refused binding leaves the channel as it was")
	assert.NotSame(t, b, host.dir.Get(0))
}

func TestDetachReattachRestoresPosition(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 0})

	require.NoError(t, b.Deactivate())
	assert.Equal(t, 2, l.root.ChildCount())
	// subtree kept intact while detached
	assert.Equal(t, []*scene.Node{l.panel, l.mask}, l.door.Children())

	require.NoError(t, b.Reactivate())
	assert.Same(t, l.root, l.door.Parent())
	assert.Equal(t, 1, l.door.Index())
	assert.Equal(t, []*scene.Node{l.left, l.door, l.right}, l.root.Children())
	assert.Equal(t, DetachmentRecord{}, b.Record())
}

func TestReattachClampsAfterSiblingsRemoved(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)

	// move door to the end so the recorded index is 2
	require.NoError(t, l.root.RemoveChild(l.door))
	require.NoError(t, l.root.AddChild(l.door))

	b := New(host, l.mask, Config{Channel: 0})
	require.NoError(t, b.Deactivate())
	require.Equal(t, 2, b.Record().Index)

	require.NoError(t, l.root.RemoveChild(l.left))
	require.NoError(t, l.root.RemoveChild(l.right))

	assert.NotPanics(t, func() { require.NoError(t, b.Reactivate()) })
	assert.Equal(t, 0, l.door.Index())
	assert.Equal(t, 1, l.root.ChildCount())
}

func TestReattachAfterSiblingsAdded(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 0})

	require.NoError(t, b.Deactivate())
	extra := scene.NewNode("extra")
	require.NoError(t, l.root.InsertChild(extra, 0))

	require.NoError(t, b.Reactivate())
	assert.Equal(t, 1, l.door.Index())
	assert.Equal(t, []*scene.Node{extra, l.door, l.left, l.right}, l.root.Children())
}

func TestDeactivateStructuralRoot(t *testing.T) {
	host := newHost(4)
	root := scene.NewNode("root")
	mask := scene.NewNode("mask")
	require.NoError(t, root.AddChild(mask))
	core, logs := observer.New(zapcore.DebugLevel)

	b := New(host, mask, Config{Channel: 0}, WithLogger(zap.New(core)))
	err := b.Deactivate()

	assert.ErrorIs(t, err, ErrStructuralRoot)
	assert.Equal(t, StateActive, b.State())
	assert.Same(t, root, mask.Parent())
	assert.Equal(t, 1, logs.FilterMessage("cannot detach structural root").Len())
}

func TestDeactivateWithoutOwnerIsNoop(t *testing.T) {
	host := newHost(4)
	orphan := scene.NewNode("mask")

	b := New(host, orphan, Config{Channel: 0})
	assert.NoError(t, b.Deactivate())
	assert.Equal(t, StateActive, b.State())
	assert.Nil(t, b.Owner())
}

func TestRepeatedCallsAreIdempotent(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 0})

	require.NoError(t, b.Reactivate())
	assert.Equal(t, 3, l.root.ChildCount())

	require.NoError(t, b.Deactivate())
	require.NoError(t, b.Deactivate())
	assert.Equal(t, 2, l.root.ChildCount())
	assert.Equal(t, 1, b.Record().Index)

	require.NoError(t, b.Reactivate())
	require.NoError(t, b.Reactivate())
	assert.Equal(t, 3, l.root.ChildCount())
}

func TestDetachKeepsRegistration(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 3}, WithActivation())

	require.Equal(t, StateDetached, b.State())
	require.Same(t, b, host.dir.Get(3), "intentional detach must not unregister")

	host.SetBit(3, true)
	assert.Equal(t, StateActive, b.State())
	assert.Same(t, l.root, l.door.Parent())
}

func TestExternalRemovalUnregisters(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	New(host, l.mask, Config{Channel: 0})

	require.NoError(t, l.root.RemoveChild(l.door))
	assert.Nil(t, host.dir.Get(0))
}

func TestRemovalAfterReattachUnregisters(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 0})

	require.NoError(t, b.Deactivate())
	require.NoError(t, b.Reactivate())
	require.Same(t, b, host.dir.Get(0))

	// exit hook is armed again
	require.NoError(t, l.root.RemoveChild(l.door))
	assert.Nil(t, host.dir.Get(0))
}

// Freeing a detached subtree releases the binding rather than leaving it dangling
func TestDestroyWhileDetachedUnregisters(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 0}, WithActivation())
	require.Equal(t, StateDetached, b.State())

	l.door.Free()

	assert.Nil(t, host.dir.Get(0))
	assert.False(t, b.Alive())
	assert.NotPanics(t, func() { host.SetBit(0, true) })
}

// A binding nested inside another binding's owner survives the outer detach and reattach
func TestNestedBindingSurvivesOuterDetach(t *testing.T) {
	host := newHost(4)
	root := scene.NewNode("root")
	outer := scene.NewNode("outer")
	outerMask := scene.NewNode("outer-mask")
	inner := scene.NewNode("inner")
	innerMask := scene.NewNode("inner-mask")
	require.NoError(t, root.AddChild(outer))
	require.NoError(t, outer.AddChild(outerMask))
	require.NoError(t, outer.AddChild(inner))
	require.NoError(t, inner.AddChild(innerMask))

	host.SetBit(0, true)
	host.SetBit(1, true)
	ob := New(host, outerMask, Config{Channel: 0}, WithActivation())
	ib := New(host, innerMask, Config{Channel: 1}, WithActivation())
	require.Equal(t, StateActive, ob.State())
	require.Equal(t, StateActive, ib.State())

	host.SetBit(0, false)
	require.Equal(t, StateDetached, ob.State())
	assert.Same(t, ib, host.dir.Get(1), "inner stays registered while outer is detached")
	assert.Same(t, outer, inner.Parent())

	// inner still reacts inside the detached subtree
	host.SetBit(1, false)
	assert.Equal(t, StateDetached, ib.State())
	assert.Nil(t, inner.Parent())

	host.SetBit(0, true)
	assert.Equal(t, StateActive, ob.State())
	assert.Same(t, root, outer.Parent())

	host.SetBit(1, true)
	assert.Equal(t, StateActive, ib.State())
	assert.Same(t, outer, inner.Parent())
	assert.Same(t, ib, host.dir.Get(1))
	assert.Same(t, ob, host.dir.Get(0))

	// real removal of the outer owner still releases both
	require.NoError(t, root.RemoveChild(outer))
	assert.Nil(t, host.dir.Get(0))
	assert.Nil(t, host.dir.Get(1))
}

func TestRequestsPassThrough(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	b := New(host, l.mask, Config{Channel: 2, Invert: true})

	require.NoError(t, b.RequestBitFlip(true))
	assert.True(t, host.bits.IsBitSet(2), "request sets the raw bit, inversion only affects delivery")
	assert.False(t, b.Effective())

	require.NoError(t, b.RequestToggle())
	assert.False(t, host.bits.IsBitSet(2))
	assert.True(t, b.Effective())
}

func TestHandlerMayFlipAnotherChannel(t *testing.T) {
	host := newHost(4)
	l := newLevel(t)
	other := scene.NewNode("other")
	otherMask := scene.NewNode("other-mask")
	require.NoError(t, l.root.AddChild(other))
	require.NoError(t, other.AddChild(otherMask))

	second := New(host, otherMask, Config{Channel: 1}, WithActivation())
	require.Equal(t, StateDetached, second.State())

	New(host, l.mask, Config{Channel: 0}, WithOwner(directoryFunc(func(v bool) {
		if v {
			host.SetBit(1, true)
		}
	})))

	host.SetBit(0, true)
	assert.Equal(t, "0011", host.bits.String())
	assert.Equal(t, StateActive, second.State())
	assert.Same(t, l.root, other.Parent())
}

type directoryFunc func(bool)

func (f directoryFunc) OnBitChanged(v bool) { f(v) }

func TestStateString(t *testing.T) {
	assert.Equal(t, "unbound", StateUnbound.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "detached", StateDetached.String())
}
