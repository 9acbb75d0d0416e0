package level

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/bitswitch/maskable"
	"github.com/lixenwraith/bitswitch/scene"
)

// Controller is what Build needs from the session controller
type Controller interface {
	maskable.Host
	SetMaxBits(n int)
	SetFromBinaryString(s string)
}

// Instance is a built level: the live scene and its bindings in authoring order
type Instance struct {
	Name     string
	Root     *scene.Node
	Bindings []*maskable.Binding
}

// Build applies width and initial mask, creates the scene, then attaches bindings pre-order
// Bindings are attached after the whole tree exists so initial deactivation can detach owners
func (l *Level) Build(ctrl Controller, logger *zap.Logger) (*Instance, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("level").With(zap.String("level", l.Name))

	ctrl.SetMaxBits(l.Width())
	if l.InitialMask != "" {
		ctrl.SetFromBinaryString(l.InitialMask)
	}

	type pending struct {
		node *scene.Node
		cfg  maskable.Config
	}
	var masks []pending

	var build func(ns NodeSpec) (*scene.Node, error)
	build = func(ns NodeSpec) (*scene.Node, error) {
		n := scene.NewNode(ns.Name)
		if ns.Mask != nil {
			masks = append(masks, pending{node: n, cfg: *ns.Mask})
		}
		for _, cs := range ns.Children {
			c, err := build(cs)
			if err != nil {
				return nil, err
			}
			if err := n.AddChild(c); err != nil {
				return nil, errors.Wrapf(err, "level %s", l.Name)
			}
		}
		return n, nil
	}

	root, err := build(l.Scene)
	if err != nil {
		return nil, err
	}

	inst := &Instance{Name: l.Name, Root: root}
	for _, p := range masks {
		b := maskable.New(ctrl, p.node, p.cfg, maskable.WithActivation(), maskable.WithLogger(logger))
		inst.Bindings = append(inst.Bindings, b)
	}

	logger.Info("level built",
		zap.Int("bindings", len(inst.Bindings)),
		zap.Int("width", l.Width()),
	)
	return inst, nil
}

// Binding returns the binding on channel, nil if none
func (i *Instance) Binding(channel int) *maskable.Binding {
	for _, b := range i.Bindings {
		if b.Config().Channel == channel && b.State() != maskable.StateUnbound {
			return b
		}
	}
	return nil
}

// Teardown frees the scene, including detached owners; their bindings release from the directory
func (i *Instance) Teardown() {
	for _, b := range i.Bindings {
		if b.State() == maskable.StateDetached {
			if owner := b.Owner(); owner != nil {
				owner.Root().Free()
			}
		}
	}
	i.Root.Free()
}
