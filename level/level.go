package level

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/bitswitch/bitmask"
	"github.com/lixenwraith/bitswitch/game"
	"github.com/lixenwraith/bitswitch/maskable"
)

// ErrInvalidLevel wraps every validation failure
var ErrInvalidLevel = errors.New("level: invalid")

// Level is the authored description of a scene and its channel bindings
type Level struct {
	Name        string   `yaml:"name"`
	MaxBits     int      `yaml:"max_bits"`
	InitialMask string   `yaml:"initial_mask"`
	Scene       NodeSpec `yaml:"scene"`
}

// NodeSpec is one scene node; a Mask block turns the node into a binding for its parent
type NodeSpec struct {
	Name     string           `yaml:"name"`
	Mask     *maskable.Config `yaml:"mask,omitempty"`
	Children []NodeSpec       `yaml:"children,omitempty"`
}

// Parse decodes and validates a level; unknown fields are rejected
func Parse(data []byte) (*Level, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes and validates a level from r
func Load(r io.Reader) (*Level, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var l Level
	if err := dec.Decode(&l); err != nil {
		return nil, errors.Wrap(err, "level: decode")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadFile reads and validates the level at path
func LoadFile(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "level: open")
	}
	defer f.Close()

	l, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "level file %s", path)
	}
	return l, nil
}

// Width returns the clamped channel count the level runs at
// Without max_bits the width follows initial_mask, then the controller default
func (l *Level) Width() int {
	switch {
	case l.MaxBits != 0:
		return bitmask.ClampWidth(l.MaxBits)
	case l.InitialMask != "":
		return bitmask.ClampWidth(len(l.InitialMask))
	default:
		return game.DefaultMaxBits
	}
}

// Validate reports every authoring error at once
func (l *Level) Validate() error {
	var errs error
	width := l.Width()

	if l.MaxBits < 0 || l.MaxBits > bitmask.MaxWidth {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "max_bits %d outside [%d, %d]", l.MaxBits, bitmask.MinWidth, bitmask.MaxWidth))
	}
	if strings.Trim(l.InitialMask, "01") != "" {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "initial_mask %q must contain only 0 and 1", l.InitialMask))
	}
	if len(l.InitialMask) > width {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "initial_mask %q longer than %d channels", l.InitialMask, width))
	}

	seen := make(map[int]string)
	var walk func(ns NodeSpec, path string, depth int)
	walk = func(ns NodeSpec, path string, depth int) {
		path += "/" + ns.Name
		if ns.Name == "" {
			errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "%s: node without name", path))
		}
		if ns.Mask != nil {
			ch := ns.Mask.Channel
			switch {
			case ch < 0 || ch >= width:
				errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "%s: channel %d outside [0, %d)", path, ch, width))
			case seen[ch] != "":
				errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "%s: channel %d already bound by %s", path, ch, seen[ch]))
			default:
				seen[ch] = path
			}
			// the owner is the parent and it must itself have a parent
			if depth < 2 {
				errs = multierr.Append(errs, errors.Wrapf(ErrInvalidLevel, "%s: mask needs an owner below the scene root", path))
			}
		}
		for _, c := range ns.Children {
			walk(c, path, depth+1)
		}
	}
	walk(l.Scene, "", 0)

	return errs
}
