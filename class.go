package termrender

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// ArgsNamespace is implemented by immutable render-parameter namespaces. A
// namespace type is a pointer to a struct embedding ArgsBase and is bound to
// exactly one render class, permanently, when that class is created.
type ArgsNamespace interface {
	argsNamespace()
}

// ArgsBase must be embedded by every args namespace struct.
type ArgsBase struct{}

func (ArgsBase) argsNamespace() {}

// DataNamespace is implemented by mutable per-render scratch namespaces. The
// binding rule is the same as for args namespaces, but data namespaces are
// instantiated fresh for every render call and never defaulted.
type DataNamespace interface {
	dataNamespace()
}

// DataBase must be embedded by every data namespace struct.
type DataBase struct{}

func (DataBase) dataNamespace() {}

var (
	argsBaseType = reflect.TypeOf(ArgsBase{})
	dataBaseType = reflect.TypeOf(DataBase{})
)

// registry holds the permanent namespace-type -> render-class associations.
var registry = struct {
	sync.Mutex
	args map[reflect.Type]*RenderClass
	data map[reflect.Type]*RenderClass
}{
	args: make(map[reflect.Type]*RenderClass),
	data: make(map[reflect.Type]*RenderClass),
}

// RenderClass is a descriptor value identifying one class in the render
// hierarchy. Classes may have multiple bases; namespace defaults merge across
// the whole hierarchy deterministically, each ancestor contributing exactly
// once no matter how often it is reachable.
type RenderClass struct {
	name  string
	bases []*RenderClass
	mro   []*RenderClass

	argsType    reflect.Type
	argsDefault ArgsNamespace
	dataType    reflect.Type

	// Merged defaults: hierarchy class -> interned default args instance,
	// built once at registration.
	defaults map[*RenderClass]ArgsNamespace

	frameDuration *FrameDuration
	renderMethods []string
	defaultMethod string
	forcedSupport *bool
}

type classConfig struct {
	bases         []*RenderClass
	args          ArgsNamespace
	data          DataNamespace
	frameDuration *FrameDuration
	methods       []string
	defaultMethod string
	forced        *bool
}

// ClassOption configures a render class at creation time.
type ClassOption func(*classConfig)

// WithBases declares the base classes, in precedence order.
func WithBases(bases ...*RenderClass) ClassOption {
	return func(c *classConfig) { c.bases = append(c.bases, bases...) }
}

// WithArgs binds an args namespace type to the class and records the given
// instance as its default values.
func WithArgs(defaults ArgsNamespace) ClassOption {
	return func(c *classConfig) { c.args = defaults }
}

// WithData binds a data namespace type to the class. The prototype is used
// only for its type; fresh instances are allocated per render call.
func WithData(prototype DataNamespace) ClassOption {
	return func(c *classConfig) { c.data = prototype }
}

// WithFrameDuration sets the class-level default frame duration.
func WithFrameDuration(d FrameDuration) ClassOption {
	return func(c *classConfig) { c.frameDuration = &d }
}

// WithRenderMethods declares the render methods a style class implements and
// which of them is the default.
func WithRenderMethods(def string, methods ...string) ClassOption {
	return func(c *classConfig) {
		c.defaultMethod = def
		c.methods = methods
	}
}

// WithForcedSupport makes the class report itself as supported regardless of
// terminal capabilities. Unset, the setting is inherited along the hierarchy.
func WithForcedSupport(on bool) ClassOption {
	return func(c *classConfig) { c.forced = &on }
}

// NewClass creates and registers a render class.
//
// Namespace bindings are validated here, before the class becomes visible:
// a namespace type already bound elsewhere yields *AlreadyAssociatedError and
// a prototype that is not a pointer to a struct embedding the respective base
// yields *ValidationError.
func NewClass(name string, opts ...ClassOption) (*RenderClass, error) {
	var cfg classConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	cls := &RenderClass{
		name:          name,
		bases:         cfg.bases,
		frameDuration: cfg.frameDuration,
		renderMethods: cfg.methods,
		defaultMethod: cfg.defaultMethod,
		forcedSupport: cfg.forced,
	}

	mro, err := linearize(cls)
	if err != nil {
		return nil, err
	}
	cls.mro = mro

	var argsType, dataType reflect.Type
	if cfg.args != nil {
		argsType, err = namespaceStructType(reflect.TypeOf(cfg.args), argsBaseType)
		if err != nil {
			return nil, err
		}
	}
	if cfg.data != nil {
		dataType, err = namespaceStructType(reflect.TypeOf(cfg.data), dataBaseType)
		if err != nil {
			return nil, err
		}
	}

	registry.Lock()
	defer registry.Unlock()
	if argsType != nil {
		if bound, ok := registry.args[argsType]; ok {
			return nil, &AlreadyAssociatedError{Namespace: reflect.PointerTo(argsType), Class: bound}
		}
	}
	if dataType != nil {
		if bound, ok := registry.data[dataType]; ok {
			return nil, &AlreadyAssociatedError{Namespace: reflect.PointerTo(dataType), Class: bound}
		}
	}
	if argsType != nil {
		registry.args[argsType] = cls
		cls.argsType = argsType
		cls.argsDefault = cfg.args
	}
	if dataType != nil {
		registry.data[dataType] = cls
		cls.dataType = dataType
	}

	// Merged defaults: walk the linearization once, most-distant ancestor
	// first, each class contributing its own interned default instance.
	cls.defaults = make(map[*RenderClass]ArgsNamespace)
	for i := len(mro) - 1; i >= 0; i-- {
		if c := mro[i]; c.argsType != nil {
			cls.defaults[c] = c.argsDefault
		}
	}

	return cls, nil
}

// MustClass is NewClass, panicking on error. Intended for package-level
// class declarations.
func MustClass(name string, opts ...ClassOption) *RenderClass {
	cls, err := NewClass(name, opts...)
	if err != nil {
		panic(err)
	}
	return cls
}

// Name returns the class name.
func (c *RenderClass) Name() string { return c.name }

// Bases returns the direct base classes.
func (c *RenderClass) Bases() []*RenderClass { return c.bases }

// IsSubclassOf reports whether other is c itself or one of its ancestors.
func (c *RenderClass) IsSubclassOf(other *RenderClass) bool {
	for _, a := range c.mro {
		if a == other {
			return true
		}
	}
	return false
}

// DefaultFrameDuration resolves the class-level frame duration default along
// the hierarchy, nearest declaration winning.
func (c *RenderClass) DefaultFrameDuration() FrameDuration {
	for _, a := range c.mro {
		if a.frameDuration != nil {
			return *a.frameDuration
		}
	}
	return FixedDuration(100 * time.Millisecond)
}

// RenderMethods resolves the render-method set along the hierarchy.
func (c *RenderClass) RenderMethods() (def string, methods []string) {
	for _, a := range c.mro {
		if len(a.renderMethods) > 0 {
			return a.defaultMethod, a.renderMethods
		}
	}
	return "", nil
}

// ForcedSupport resolves the forced-support flag along the hierarchy.
func (c *RenderClass) ForcedSupport() bool {
	for _, a := range c.mro {
		if a.forcedSupport != nil {
			return *a.forcedSupport
		}
	}
	return false
}

// linearize computes a C3 linearization of the class hierarchy. The result
// is deterministic, starts with the class itself, and contains every
// ancestor exactly once.
func linearize(cls *RenderClass) ([]*RenderClass, error) {
	if len(cls.bases) == 0 {
		return []*RenderClass{cls}, nil
	}

	var seqs [][]*RenderClass
	for _, b := range cls.bases {
		mro := make([]*RenderClass, len(b.mro))
		copy(mro, b.mro)
		seqs = append(seqs, mro)
	}
	seqs = append(seqs, append([]*RenderClass(nil), cls.bases...))

	out := []*RenderClass{cls}
	for {
		seqs = nonEmpty(seqs)
		if len(seqs) == 0 {
			return out, nil
		}

		var next *RenderClass
		for _, seq := range seqs {
			head := seq[0]
			if inTail(head, seqs) {
				continue
			}
			next = head
			break
		}
		if next == nil {
			return nil, validationErrorf("inconsistent class hierarchy for %q", cls.name)
		}

		out = append(out, next)
		for i, seq := range seqs {
			if seq[0] == next {
				seqs[i] = seq[1:]
			}
		}
	}
}

func nonEmpty(seqs [][]*RenderClass) [][]*RenderClass {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func inTail(cls *RenderClass, seqs [][]*RenderClass) bool {
	for _, seq := range seqs {
		for _, c := range seq[1:] {
			if c == cls {
				return true
			}
		}
	}
	return false
}

// namespaceStructType validates a namespace prototype and returns its struct
// type. The prototype must be a non-nil pointer to a struct that embeds base.
func namespaceStructType(t reflect.Type, base reflect.Type) (reflect.Type, error) {
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, validationErrorf("namespace prototype must be a pointer to struct (got: %v)", t)
	}
	st := t.Elem()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Anonymous && f.Type == base {
			return st, nil
		}
	}
	return nil, validationErrorf("%v does not embed %v", st, base)
}

// classForArgs returns the render class an args namespace type is bound to.
func classForArgs(ns ArgsNamespace) (*RenderClass, error) {
	t := reflect.TypeOf(ns)
	if t == nil || t.Kind() != reflect.Pointer {
		return nil, validationErrorf("args namespace must be a pointer to struct (got: %v)", t)
	}
	registry.Lock()
	defer registry.Unlock()
	cls, ok := registry.args[t.Elem()]
	if !ok {
		return nil, &UnassociatedNamespaceError{Namespace: t}
	}
	return cls, nil
}

// RenderArgs is an immutable set of render parameters for one render class:
// the merged hierarchy defaults overridden by any namespaces supplied at
// construction.
type RenderArgs struct {
	cls        *RenderClass
	namespaces map[*RenderClass]ArgsNamespace
}

// NewRenderArgs builds render args for cls. Each override replaces the
// default namespace of the class it is bound to, which must be cls itself or
// one of its ancestors.
func NewRenderArgs(cls *RenderClass, overrides ...ArgsNamespace) (*RenderArgs, error) {
	if cls == nil {
		return nil, validationErrorf("render class must not be nil")
	}
	ra := &RenderArgs{cls: cls, namespaces: cls.defaults}
	if len(overrides) == 0 {
		return ra, nil
	}

	namespaces := make(map[*RenderClass]ArgsNamespace, len(cls.defaults))
	for c, ns := range cls.defaults {
		namespaces[c] = ns
	}
	for _, ns := range overrides {
		bound, err := classForArgs(ns)
		if err != nil {
			return nil, err
		}
		if !cls.IsSubclassOf(bound) {
			return nil, &IncompatibleRenderArgsError{Bound: bound, Target: cls}
		}
		namespaces[bound] = ns
	}
	ra.namespaces = namespaces
	return ra, nil
}

// Class returns the class the args were built for.
func (ra *RenderArgs) Class() *RenderClass { return ra.cls }

// Get returns the namespace instance for cls.
func (ra *RenderArgs) Get(cls *RenderClass) (ArgsNamespace, error) {
	if ns, ok := ra.namespaces[cls]; ok {
		return ns, nil
	}
	if !ra.cls.IsSubclassOf(cls) {
		return nil, &IncompatibleRenderArgsError{Bound: cls, Target: ra.cls}
	}
	return nil, &NoArgsNamespaceError{Class: cls}
}

// With returns a new RenderArgs with the given namespaces replacing their
// current counterparts. The receiver is never modified.
func (ra *RenderArgs) With(overrides ...ArgsNamespace) (*RenderArgs, error) {
	current := make([]ArgsNamespace, 0, len(ra.namespaces)+len(overrides))
	for _, ns := range ra.namespaces {
		current = append(current, ns)
	}
	return NewRenderArgs(ra.cls, append(current, overrides...)...)
}

// Equal reports whether two render args hold equal namespace values for the
// same class.
func (ra *RenderArgs) Equal(other *RenderArgs) bool {
	if other == nil || ra.cls != other.cls || len(ra.namespaces) != len(other.namespaces) {
		return false
	}
	for c, ns := range ra.namespaces {
		o, ok := other.namespaces[c]
		if !ok || !reflect.DeepEqual(ns, o) {
			return false
		}
	}
	return true
}

// UpdateArgs returns a copy of ns with the named exported fields replaced.
// Unknown field names yield *UnknownArgsFieldError; incompatible values yield
// *ValidationError. The original namespace is never modified.
func UpdateArgs(ns ArgsNamespace, fields map[string]any) (ArgsNamespace, error) {
	v := reflect.ValueOf(ns)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, validationErrorf("args namespace must be a pointer to struct (got: %v)", v.Type())
	}

	out := reflect.New(v.Type().Elem())
	out.Elem().Set(v.Elem())
	for name, value := range fields {
		f := out.Elem().FieldByName(name)
		if !f.IsValid() || !f.CanSet() {
			return nil, &UnknownArgsFieldError{Field: name, Namespace: v.Type()}
		}
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || !rv.Type().AssignableTo(f.Type()) {
			return nil, validationErrorf("invalid value for args field %q (got: %v)", name, value)
		}
		f.Set(rv)
	}
	return out.Interface().(ArgsNamespace), nil
}

// RenderData is the mutable per-call state of one render: a fresh namespace
// instance for every hierarchy class that declares one. It is allocated at
// the start of a render call and must be finalized exactly once at the end,
// including on failure.
type RenderData struct {
	cls        *RenderClass
	namespaces map[*RenderClass]DataNamespace
	finalizers []func()
	finalized  bool
}

// NewRenderData allocates render data for cls.
func NewRenderData(cls *RenderClass) *RenderData {
	namespaces := make(map[*RenderClass]DataNamespace)
	for i := len(cls.mro) - 1; i >= 0; i-- {
		if c := cls.mro[i]; c.dataType != nil {
			namespaces[c] = reflect.New(c.dataType).Interface().(DataNamespace)
		}
	}
	return &RenderData{cls: cls, namespaces: namespaces}
}

// Class returns the class the data was allocated for.
func (rd *RenderData) Class() *RenderClass { return rd.cls }

// Get returns the namespace instance for cls.
func (rd *RenderData) Get(cls *RenderClass) (DataNamespace, error) {
	if rd.finalized {
		return nil, stateErrorf("render data has been finalized")
	}
	if ns, ok := rd.namespaces[cls]; ok {
		return ns, nil
	}
	if !rd.cls.IsSubclassOf(cls) {
		return nil, &IncompatibleRenderArgsError{Bound: cls, Target: rd.cls}
	}
	return nil, &NoDataNamespaceError{Class: cls}
}

// Core returns the root data namespace carried by every render.
func (rd *RenderData) Core() *CoreData {
	ns, err := rd.Get(BaseClass)
	if err != nil {
		panic(err)
	}
	return ns.(*CoreData)
}

// OnFinalize registers a release hook run exactly once when the data is
// finalized, in reverse registration order.
func (rd *RenderData) OnFinalize(f func()) {
	rd.finalizers = append(rd.finalizers, f)
}

// Finalized reports whether Finalize has run.
func (rd *RenderData) Finalized() bool { return rd.finalized }

// Finalize releases the render data. Safe to call multiple times; only the
// first call runs the release hooks.
func (rd *RenderData) Finalize() {
	if rd.finalized {
		return
	}
	rd.finalized = true
	for i := len(rd.finalizers) - 1; i >= 0; i-- {
		rd.finalizers[i]()
	}
	rd.finalizers = nil
}

// CoreData is the data namespace of BaseClass, seeded for every render call.
type CoreData struct {
	DataBase

	// Size is the resolved render size for this call.
	Size Size
	// FrameOffset is the frame to render.
	FrameOffset int
	// Duration is the declared duration of the rendered frame.
	Duration time.Duration
	// Iteration is set when the call is made by a render iterator, letting
	// the renderable prepare animation-only state.
	Iteration bool
}

func (d *CoreData) String() string {
	return fmt.Sprintf("CoreData(size=%s offset=%d duration=%s iteration=%t)",
		d.Size, d.FrameOffset, d.Duration, d.Iteration)
}

// BaseClass is the root of the render class hierarchy.
var BaseClass = MustClass("Renderable", WithData(&CoreData{}))
