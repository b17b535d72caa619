// Package errors holds the sentinels and typed errors shared by the engine
// bridge, the document I/O paths and the grid controller.
//
// Every failure in sheetview is recoverable: the view keeps running and the
// status line reports what went wrong. The typed errors below carry enough
// context for the log while StatusText picks the part worth showing.
//
//	err := errors.NewDocumentError(errors.OpOpen, "failed to read a.s2v", cause).WithPath(path)
//	if errors.Is(err, errors.ErrFileRead) { ... }
//
// Callers import this package instead of the standard one; it re-exports
// Is, As, Unwrap, New and Join.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Engine boundary.
var (
	// ErrEngineUnavailable means no engine was resolved at bootstrap.
	ErrEngineUnavailable = New("spreadsheet engine not available")
	// ErrLoadUnsupported means the engine has no bulk document loading.
	ErrLoadUnsupported = New("spreadsheet engine does not support document loading")
	// ErrCellRejected means the engine refused a cell mutation.
	ErrCellRejected = New("cell content rejected by engine")
)

// Documents.
var (
	ErrSampleUnavailable = New("sample document unavailable")
	ErrFileRead          = New("failed to read file")
	ErrSaveFailed        = New("failed to save file")
	// ErrSaveUnavailable means a save mechanism cannot be used right now;
	// the next one in line is tried.
	ErrSaveUnavailable = New("save mechanism unavailable")
)

var (
	ErrTimeout  = New("operation timed out")
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput matches every ValidationError.
	ErrInvalidInput = New("invalid input")
)

// detail is the part every typed error shares.
type detail struct {
	message string
	cause   error
}

func (d detail) Unwrap() error { return d.cause }

// render formats "kind [k=v, ...]: message: cause", leaving out the empty
// parts.
func (d detail) render(kind string, attrs ...string) string {
	var sb strings.Builder
	sb.WriteString(kind)
	var set []string
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i+1] != "" {
			set = append(set, attrs[i]+"="+attrs[i+1])
		}
	}
	if len(set) > 0 {
		sb.WriteString(" [" + strings.Join(set, ", ") + "]")
	}
	if d.message != "" {
		sb.WriteString(": " + d.message)
	}
	if d.cause != nil {
		sb.WriteString(": " + d.cause.Error())
	}
	return sb.String()
}

// userFacing marks errors whose text can go on the status line unchanged.
type userFacing interface {
	error
	userFacing()
}

// EngineError is a failure at the engine boundary: nothing resolved, a
// capability missing, or a call the engine rejected.
type EngineError struct {
	detail
	Engine string
}

// NewEngineError wraps cause with a short message for the status line.
func NewEngineError(message string, cause error) *EngineError {
	return &EngineError{detail: detail{message: message, cause: cause}}
}

// WithEngine records which engine failed.
func (e *EngineError) WithEngine(name string) *EngineError {
	e.Engine = name
	return e
}

func (e *EngineError) Error() string {
	return e.render("engine error", "engine", e.Engine)
}

func (e *EngineError) userFacing() {}

// DocumentOp names the document operation that failed.
type DocumentOp string

const (
	OpSample DocumentOp = "sample"
	OpOpen   DocumentOp = "open"
	OpSave   DocumentOp = "save"
	OpLoad   DocumentOp = "load"
)

// DocumentError is a failure reading, loading or writing an S2V document.
type DocumentError struct {
	detail
	Op   DocumentOp
	Path string
}

func NewDocumentError(op DocumentOp, message string, cause error) *DocumentError {
	return &DocumentError{detail: detail{message: message, cause: cause}, Op: op}
}

// WithPath records the file or location involved.
func (e *DocumentError) WithPath(path string) *DocumentError {
	e.Path = path
	return e
}

func (e *DocumentError) Error() string {
	return e.render(string(e.Op)+" error", "path", e.Path)
}

func (e *DocumentError) userFacing() {}

// NotFoundError reports a missing engine, builtin document or similar named
// resource.
type NotFoundError struct {
	detail
	Kind string
	Name string
}

func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *NotFoundError) userFacing() {}

// ValidationError reports a bad cell address, label or other input. It
// matches ErrInvalidInput.
type ValidationError struct {
	detail
	Field string
	Value any
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{detail: detail{message: message}}
}

func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	value := ""
	if e.Value != nil {
		value = fmt.Sprint(e.Value)
	}
	return e.render("validation error", "field", e.Field, "value", value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) userFacing() {}

// IsUserFacing reports whether err, or something it wraps, is one of the
// typed errors above.
func IsUserFacing(err error) bool {
	var uf userFacing
	return err != nil && As(err, &uf)
}

// StatusText returns the one line to show for err. Engine errors show only
// their message; document errors show message and cause without the
// operation prefix; other typed errors show in full. Anything else is
// replaced by fallback.
func StatusText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if !IsUserFacing(err) {
		return fallback
	}
	var docErr *DocumentError
	if As(err, &docErr) && docErr.cause != nil {
		return docErr.message + ": " + docErr.cause.Error()
	}
	var engErr *EngineError
	if As(err, &engErr) {
		return engErr.message
	}
	return err.Error()
}

// Wrap prefixes err with message, returning nil for a nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
