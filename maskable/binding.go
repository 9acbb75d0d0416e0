package maskable

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/bitswitch/directory"
	"github.com/lixenwraith/bitswitch/scene"
)

var (
	ErrUnbound        = errors.New("maskable: binding is not registered")
	ErrStructuralRoot = errors.New("maskable: owner has no parent to detach from")
)

// Host is the controller side of a binding: registration plus canonical mutation
type Host interface {
	Register(index int, obs directory.Observer, life directory.Lifetime) error
	SetBit(index int, enabled bool)
	ToggleBit(index int)
}

// State of a binding
type State int

const (
	StateUnbound State = iota
	StateActive
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDetached:
		return "detached"
	default:
		return "unbound"
	}
}

// Config is fixed for the lifetime of a binding
type Config struct {
	Channel int  `yaml:"channel"`
	Invert  bool `yaml:"invert"`
}

// DetachmentRecord remembers where the owner subtree was cut from
type DetachmentRecord struct {
	Parent   *scene.Node
	Index    int
	Detached bool
}

// Binding attaches the node's owner (its parent) to one channel
// The binding node sits under the owner; deactivation cuts the owner out of the owner's parent
type Binding struct {
	host   Host
	node   *scene.Node
	cfg    Config
	logger *zap.Logger

	owner     directory.Observer
	listeners []func(effective bool)

	state     State
	effective bool
	record    DetachmentRecord
	bindErr   error
}

// Option configures a Binding at construction
type Option func(*Binding)

// WithOwner sets the owner capability invoked with the effective value
func WithOwner(owner directory.Observer) Option {
	return func(b *Binding) { b.owner = owner }
}

// WithActivation makes the binding drive its own owner: enabled reactivates, disabled deactivates
func WithActivation() Option {
	return func(b *Binding) { b.owner = activation{b} }
}

// WithListener subscribes fn before registration so it sees the initial delivery
func WithListener(fn func(effective bool)) Option {
	return func(b *Binding) { b.listeners = append(b.listeners, fn) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Binding) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates the binding and registers it on cfg.Channel
// The current bit is delivered before New returns; a failed registration leaves the binding unbound for good
func New(host Host, node *scene.Node, cfg Config, opts ...Option) *Binding {
	b := &Binding{
		host:   host,
		node:   node,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(zap.Int("channel", cfg.Channel), zap.String("node", node.Path()))

	// Registration delivers synchronously and the owner may deactivate during it
	b.state = StateActive
	if err := host.Register(cfg.Channel, b, b); err != nil {
		b.state = StateUnbound
		b.bindErr = err
		b.logger.Error("binding failed, object stays unbound", zap.Error(err))
	}
	return b
}

// OnBitChanged receives the raw channel value from the directory
func (b *Binding) OnBitChanged(enabled bool) {
	effective := enabled != b.cfg.Invert
	b.effective = effective

	for _, fn := range b.listeners {
		fn(effective)
	}
	if b.owner != nil {
		b.owner.OnBitChanged(effective)
	}
}

// OnChanged subscribes fn to later effective-value changes
func (b *Binding) OnChanged(fn func(effective bool)) {
	b.listeners = append(b.listeners, fn)
}

// Deactivate removes the owner subtree from its parent, keeping all of its state
// No-op when already detached or when the binding node has no owner
func (b *Binding) Deactivate() error {
	if b.state == StateUnbound {
		return ErrUnbound
	}
	if b.record.Detached {
		return nil
	}
	owner := b.node.Parent()
	if owner == nil {
		return nil
	}
	parent := owner.Parent()
	if parent == nil {
		err := errors.Wrapf(ErrStructuralRoot, "deactivate %s", owner.Path())
		b.logger.Error("cannot detach structural root", zap.Error(err))
		return err
	}

	record := DetachmentRecord{Parent: parent, Index: owner.Index(), Detached: true}

	// Intentional removal is not teardown, no exit hook in the subtree fires
	if err := parent.Detach(owner); err != nil {
		b.logger.Error("detach failed", zap.Error(err))
		return err
	}

	b.record = record
	b.state = StateDetached
	b.logger.Debug("owner detached",
		zap.String("parent", parent.Path()),
		zap.Int("index", record.Index),
	)
	return nil
}

// Reactivate reinserts the owner at min(recorded index, current child count)
// No-op unless detached
func (b *Binding) Reactivate() error {
	if b.state == StateUnbound {
		return ErrUnbound
	}
	if !b.record.Detached || b.record.Parent == nil {
		return nil
	}
	owner := b.node.Parent()
	if owner == nil {
		return nil
	}

	parent := b.record.Parent
	index := b.record.Index
	if n := parent.ChildCount(); index > n {
		index = n
	}
	if err := parent.InsertChild(owner, index); err != nil {
		b.logger.Error("reattach failed, owner stays detached", zap.Error(err))
		return err
	}

	b.record = DetachmentRecord{}
	b.state = StateActive
	b.logger.Debug("owner reattached", zap.Int("index", index))
	return nil
}

// RequestBitFlip asks the controller to set this binding's raw bit
func (b *Binding) RequestBitFlip(enabled bool) error {
	if b.state == StateUnbound {
		return ErrUnbound
	}
	b.host.SetBit(b.cfg.Channel, enabled)
	return nil
}

// RequestToggle asks the controller to flip this binding's raw bit
func (b *Binding) RequestToggle() error {
	if b.state == StateUnbound {
		return ErrUnbound
	}
	b.host.ToggleBit(b.cfg.Channel)
	return nil
}

func (b *Binding) State() State {
	return b.state
}

// Effective returns the last delivered value after inversion
func (b *Binding) Effective() bool {
	return b.effective
}

func (b *Binding) Config() Config {
	return b.cfg
}

func (b *Binding) Node() *scene.Node {
	return b.node
}

func (b *Binding) Record() DetachmentRecord {
	return b.record
}

// Err returns the registration failure, nil for bound bindings
func (b *Binding) Err() error {
	return b.bindErr
}

// Owner returns the node the binding activates, nil if the binding node is orphaned
func (b *Binding) Owner() *scene.Node {
	return b.node.Parent()
}

type activation struct {
	b *Binding
}

// Errors are already logged by the binding, the owner keeps its current state
func (a activation) OnBitChanged(enabled bool) {
	if enabled {
		_ = a.b.Reactivate()
	} else {
		_ = a.b.Deactivate()
	}
}
