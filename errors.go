package termrender

import (
	"fmt"
	"reflect"
)

// ValidationError reports an argument of an inappropriate type or with an
// unexpected value. It is always raised before any resource is touched, so a
// failed call leaves no partial state behind.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// SizeError reports that a requested or resolved size cannot fit into the
// constraints it was resolved against.
type SizeError struct {
	Msg string
}

func (e *SizeError) Error() string { return e.Msg }

func sizeErrorf(format string, args ...any) *SizeError {
	return &SizeError{Msg: fmt.Sprintf(format, args...)}
}

// RenderSizeOutofRangeError reports that a render size cannot fit into the
// available terminal size. Raised by Draw before anything is written.
type RenderSizeOutofRangeError struct {
	Size      Size
	Available Size
	Animated  bool
}

func (e *RenderSizeOutofRangeError) Error() string {
	what := "image"
	if e.Animated {
		what = "animation"
	}
	return fmt.Sprintf(
		"the %s size %dx%d cannot fit into the available terminal size %dx%d",
		what, e.Size.Cols, e.Size.Rows, e.Available.Cols, e.Available.Rows,
	)
}

// SeekError reports a frame offset outside [0, frame count).
type SeekError struct {
	Offset int
	Count  int
}

func (e *SeekError) Error() string {
	return fmt.Sprintf("frame offset out of range (got: %d, frame count: %d)", e.Offset, e.Count)
}

// IndefiniteSeekError reports an attempt to seek a renderable with an
// indefinite frame count, for which no offset is meaningful.
type IndefiniteSeekError struct{}

func (e *IndefiniteSeekError) Error() string {
	return "cannot seek a renderable with indefinite frame count"
}

// StateError reports use of a finalized or closed object.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func stateErrorf(format string, args ...any) *StateError {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// StyleError reports an unknown or invalid style-specific parameter.
type StyleError struct {
	Style string
	Msg   string
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Style, e.Msg)
}

func styleErrorf(style, format string, args ...any) *StyleError {
	return &StyleError{Style: style, Msg: fmt.Sprintf(format, args...)}
}

// AlreadyAssociatedError reports a namespace type registered for a second
// render class. A namespace type binds to exactly one class, permanently.
type AlreadyAssociatedError struct {
	Namespace reflect.Type
	Class     *RenderClass
}

func (e *AlreadyAssociatedError) Error() string {
	return fmt.Sprintf(
		"namespace type %s is already associated with render class %q",
		e.Namespace, e.Class.Name(),
	)
}

// UnassociatedNamespaceError reports a namespace instance whose type was
// never bound to a render class.
type UnassociatedNamespaceError struct {
	Namespace reflect.Type
}

func (e *UnassociatedNamespaceError) Error() string {
	return fmt.Sprintf("namespace type %s is not associated with any render class", e.Namespace)
}

// IncompatibleRenderArgsError reports a namespace (or render args) whose
// bound class is not in the hierarchy of the target class.
type IncompatibleRenderArgsError struct {
	Bound  *RenderClass
	Target *RenderClass
}

func (e *IncompatibleRenderArgsError) Error() string {
	return fmt.Sprintf(
		"render args namespace of class %q is incompatible with render class %q",
		e.Bound.Name(), e.Target.Name(),
	)
}

// NoArgsNamespaceError reports an args lookup for a class that declares no
// args namespace.
type NoArgsNamespaceError struct {
	Class *RenderClass
}

func (e *NoArgsNamespaceError) Error() string {
	return fmt.Sprintf("render class %q has no args namespace", e.Class.Name())
}

// NoDataNamespaceError reports a data lookup for a class that declares no
// data namespace.
type NoDataNamespaceError struct {
	Class *RenderClass
}

func (e *NoDataNamespaceError) Error() string {
	return fmt.Sprintf("render class %q has no data namespace", e.Class.Name())
}

// UnknownArgsFieldError reports a by-name args update for a field the bound
// namespace does not declare.
type UnknownArgsFieldError struct {
	Field     string
	Namespace reflect.Type
}

func (e *UnknownArgsFieldError) Error() string {
	return fmt.Sprintf("unknown args field %q for namespace type %s", e.Field, e.Namespace)
}
