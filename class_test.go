package termrender

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type diamondRootArgs struct {
	ArgsBase
	Char string
}

type diamondLeftArgs struct {
	ArgsBase
	Depth int
}

type diamondRightArgs struct {
	ArgsBase
	Wide bool
}

type rootScratch struct {
	DataBase
	Buf []byte
}

// The diamond hierarchy is shared: namespace types bind to a class once per
// process, so the classes are built a single time.
var (
	diamondOnce sync.Once

	diamondRoot   *RenderClass
	diamondLeft   *RenderClass
	diamondRight  *RenderClass
	diamondBottom *RenderClass
)

func buildDiamond(t *testing.T) {
	t.Helper()
	diamondOnce.Do(func() {
		diamondRoot = MustClass("diamondRoot",
			WithBases(BaseClass),
			WithArgs(&diamondRootArgs{Char: "#"}),
			WithData(&rootScratch{}),
		)
		diamondLeft = MustClass("diamondLeft", WithBases(diamondRoot), WithArgs(&diamondLeftArgs{Depth: 1}))
		diamondRight = MustClass("diamondRight", WithBases(diamondRoot), WithArgs(&diamondRightArgs{}))
		diamondBottom = MustClass("diamondBottom", WithBases(diamondLeft, diamondRight))
	})
}

func TestClassDiamondDefaults(t *testing.T) {
	buildDiamond(t)

	args, err := NewRenderArgs(diamondBottom)
	require.NoError(t, err)

	// Every ancestor contributes its defaults exactly once, and the default
	// instances are interned, not copied.
	for _, cls := range []*RenderClass{diamondRoot, diamondLeft, diamondRight} {
		ns, err := args.Get(cls)
		require.NoError(t, err, cls.Name())
		assert.Same(t, cls.argsDefault, ns, cls.Name())
	}

	rootNS, err := args.Get(diamondRoot)
	require.NoError(t, err)
	assert.Equal(t, "#", rootNS.(*diamondRootArgs).Char)

	// The opposite base order linearizes to the same ancestor set.
	flipped, err := NewClass("diamondBottomFlipped", WithBases(diamondRight, diamondLeft))
	require.NoError(t, err)
	flippedArgs, err := NewRenderArgs(flipped)
	require.NoError(t, err)
	for _, cls := range []*RenderClass{diamondRoot, diamondLeft, diamondRight} {
		a, err := args.Get(cls)
		require.NoError(t, err)
		b, err := flippedArgs.Get(cls)
		require.NoError(t, err)
		assert.Same(t, a, b, cls.Name())
	}
}

func TestClassNamespaceBinding(t *testing.T) {
	buildDiamond(t)

	t.Run("rebinding is rejected", func(t *testing.T) {
		_, err := NewClass("rebinder", WithBases(diamondRoot), WithArgs(&diamondRootArgs{}))
		var bound *AlreadyAssociatedError
		require.ErrorAs(t, err, &bound)
		assert.Equal(t, "diamondRoot", bound.Class.Name())
	})

	t.Run("indirect embedding is rejected", func(t *testing.T) {
		// Embedding another namespace type satisfies the interface but not
		// the direct-embedding requirement.
		type indirect struct {
			diamondLeftArgs
		}
		_, err := NewClass("indirectEmbed", WithArgs(&indirect{}))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unbound namespace instance", func(t *testing.T) {
		buildDiamond(t)
		type neverBound struct {
			ArgsBase
		}
		_, err := NewRenderArgs(diamondBottom, &neverBound{})
		var unbound *UnassociatedNamespaceError
		require.ErrorAs(t, err, &unbound)
	})
}

func TestClassArgsIncompatibility(t *testing.T) {
	buildDiamond(t)

	// diamondLeft knows nothing about diamondRight's namespace.
	_, err := NewRenderArgs(diamondLeft, &diamondRightArgs{Wide: true})
	var incompatible *IncompatibleRenderArgsError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, diamondRight, incompatible.Bound)
	assert.Equal(t, diamondLeft, incompatible.Target)
}

func TestRenderArgsImmutability(t *testing.T) {
	buildDiamond(t)

	base, err := NewRenderArgs(diamondLeft)
	require.NoError(t, err)

	updated, err := base.With(&diamondLeftArgs{Depth: 7})
	require.NoError(t, err)

	origNS, err := base.Get(diamondLeft)
	require.NoError(t, err)
	newNS, err := updated.Get(diamondLeft)
	require.NoError(t, err)

	assert.Equal(t, 1, origNS.(*diamondLeftArgs).Depth, "With must not modify the receiver")
	assert.Equal(t, 7, newNS.(*diamondLeftArgs).Depth)
	assert.True(t, updated.Equal(updated))
	assert.False(t, base.Equal(updated))
}

func TestUpdateArgs(t *testing.T) {
	orig := &diamondLeftArgs{Depth: 3}

	ns, err := UpdateArgs(orig, map[string]any{"Depth": 9})
	require.NoError(t, err)
	assert.Equal(t, 9, ns.(*diamondLeftArgs).Depth)
	assert.Equal(t, 3, orig.Depth, "UpdateArgs must copy")

	_, err = UpdateArgs(orig, map[string]any{"Missing": 1})
	var unknown *UnknownArgsFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Missing", unknown.Field)

	_, err = UpdateArgs(orig, map[string]any{"Depth": "nope"})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
}

func TestRenderDataLifecycle(t *testing.T) {
	buildDiamond(t)

	data := NewRenderData(diamondBottom)

	// Core namespace is always present.
	core := data.Core()
	core.Size = Size{Cols: 3, Rows: 2}
	core.Duration = 40 * time.Millisecond

	ns, err := data.Get(diamondRoot)
	require.NoError(t, err)
	ns.(*rootScratch).Buf = []byte("x")

	// Fresh data means fresh namespaces.
	other := NewRenderData(diamondBottom)
	otherNS, err := other.Get(diamondRoot)
	require.NoError(t, err)
	assert.Nil(t, otherNS.(*rootScratch).Buf)
	other.Finalize()

	var order []int
	data.OnFinalize(func() { order = append(order, 1) })
	data.OnFinalize(func() { order = append(order, 2) })

	data.Finalize()
	assert.Equal(t, []int{2, 1}, order, "hooks run in reverse registration order")
	assert.True(t, data.Finalized())

	// Finalize is idempotent; use after finalize is a state error.
	data.Finalize()
	assert.Equal(t, []int{2, 1}, order)

	_, err = data.Get(diamondRoot)
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
}

func TestClassDescriptorInheritance(t *testing.T) {
	parent, err := NewClass("descriptorParent",
		WithBases(BaseClass),
		WithFrameDuration(FixedDuration(50*time.Millisecond)),
		WithRenderMethods("lines", "lines", "whole"),
		WithForcedSupport(true),
	)
	require.NoError(t, err)
	child, err := NewClass("descriptorChild", WithBases(parent))
	require.NoError(t, err)
	override, err := NewClass("descriptorOverride", WithBases(parent), WithForcedSupport(false))
	require.NoError(t, err)

	assert.Equal(t, FixedDuration(50*time.Millisecond), child.DefaultFrameDuration())
	def, methods := child.RenderMethods()
	assert.Equal(t, "lines", def)
	assert.Equal(t, []string{"lines", "whole"}, methods)
	assert.True(t, child.ForcedSupport())
	assert.False(t, override.ForcedSupport())
	assert.True(t, child.IsSubclassOf(BaseClass))
	assert.False(t, parent.IsSubclassOf(child))
}

func TestNoArgsNamespace(t *testing.T) {
	bare, err := NewClass("bareOfArgs", WithBases(BaseClass))
	require.NoError(t, err)

	args, err := NewRenderArgs(bare)
	require.NoError(t, err)
	_, err = args.Get(bare)
	var noArgs *NoArgsNamespaceError
	require.True(t, errors.As(err, &noArgs))
}
