package level

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/lixenwraith/bitswitch/game"
	"github.com/lixenwraith/bitswitch/maskable"
)

func TestLoadSwitchyard(t *testing.T) {
	l, err := LoadFile("../levels/switchyard.yaml")
	require.NoError(t, err)

	assert.Equal(t, "switchyard", l.Name)
	assert.Equal(t, 4, l.Width())
	require.Len(t, l.Scene.Children, 5)
	require.NotNil(t, l.Scene.Children[3].Children[1].Mask)
	assert.Equal(t, maskable.Config{Channel: 2, Invert: true}, *l.Scene.Children[3].Children[1].Mask)
}

func TestBuildAppliesInitialMask(t *testing.T) {
	l, err := LoadFile("../levels/switchyard.yaml")
	require.NoError(t, err)

	c := game.New(game.Options{MaxBits: 8})
	inst, err := l.Build(c, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, c.MaxBits())
	assert.Equal(t, "0001", c.BinaryString())
	require.Len(t, inst.Bindings, 4)
	assert.Equal(t, []int{0, 1, 2, 3}, c.Directory().Channels())

	yard := inst.Root
	gateB := inst.Binding(1).Owner()
	assert.Equal(t, maskable.StateActive, inst.Binding(0).State())
	assert.Equal(t, maskable.StateDetached, inst.Binding(1).State())
	assert.Equal(t, maskable.StateActive, inst.Binding(2).State(), "inverted bridge is present while its bit is clear")
	assert.Equal(t, maskable.StateDetached, inst.Binding(3).State())
	assert.Equal(t, 4, yard.ChildCount())
	assert.Nil(t, gateB.Parent())

	// opening gate-b restores it between gate-a and bridge
	c.SetBit(1, true)
	assert.Same(t, yard, gateB.Parent())
	assert.Equal(t, 2, gateB.Index())

	// setting the bridge bit retracts it
	c.SetBit(2, true)
	assert.Equal(t, maskable.StateDetached, inst.Binding(2).State())

	vault := yard.Find("vault")
	c.SetBit(3, true)
	assert.Equal(t, 1, vault.ChildCount())
}

func TestTeardownReleasesBindings(t *testing.T) {
	l, err := LoadFile("../levels/switchyard.yaml")
	require.NoError(t, err)

	c := game.New(game.Options{})
	inst, err := l.Build(c, nil)
	require.NoError(t, err)
	require.Equal(t, 4, c.Directory().Len())

	inst.Teardown()

	assert.Zero(t, c.Directory().Len(), "detached owners are freed too")
	assert.True(t, inst.Root.IsFreed())
	assert.NotPanics(t, func() { c.SetFromBinaryString("1111") })
}

func TestValidateCollectsAllErrors(t *testing.T) {
	src := []byte(`
name: broken
max_bits: 2
initial_mask: "10x"
scene:
  name: root
  mask: { channel: 0 }
  children:
    - name: a
      mask: { channel: 1 }
      children:
        - name: a-mask
          mask: { channel: 1 }
    - name: ""
      children:
        - name: b-mask
          mask: { channel: 5 }
`)
	_, err := Parse(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLevel))

	errs := multierr.Errors(err)
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	assert.Len(t, errs, 7, "%v", msgs)
	assert.Contains(t, err.Error(), `initial_mask "10x" must contain only 0 and 1`)
	assert.Contains(t, err.Error(), `initial_mask "10x" longer than 2 channels`)
	assert.Contains(t, err.Error(), "/root: mask needs an owner below the scene root")
	assert.Contains(t, err.Error(), "/root/a: mask needs an owner below the scene root")
	assert.Contains(t, err.Error(), "/root/a/a-mask: channel 1 already bound by /root/a")
	assert.Contains(t, err.Error(), "/root/: node without name")
	assert.Contains(t, err.Error(), "/root//b-mask: channel 5 outside [0, 2)")
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("name: x\nmaxbits: 3\nscene: {name: r}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level: decode")
}

func TestWidthFallbacks(t *testing.T) {
	assert.Equal(t, 6, (&Level{InitialMask: "000000"}).Width())
	assert.Equal(t, game.DefaultMaxBits, (&Level{}).Width())
	assert.Equal(t, 16, (&Level{MaxBits: 16}).Width())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level: open")
}
