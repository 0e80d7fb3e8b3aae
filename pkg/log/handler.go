package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	ensembleerrors "github.com/YuminosukeSato/ensemble/pkg/errors"
)

// ErrFmtHandler is the slog handler behind fatal CLI errors. When a record
// carries an error attribute it adds the cockroachdb stack trace, the error
// type and, for input errors, the split or file the error points at.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		err, _ = attr.Value.Any().(error)
		return false
	})
	if err != nil {
		r.AddAttrs(errorAttrs(err)...)
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// errorAttrs describes err with the attribute keys of this package.
func errorAttrs(err error) []slog.Attr {
	var attrs []slog.Attr
	if st := extractStacktrace(err); st != "" {
		attrs = append(attrs, slog.String(StacktraceAttrKey, st))
	}

	var (
		fe *ensembleerrors.FormatError
		se *ensembleerrors.SizeMismatchError
		le *ensembleerrors.LibraryInconsistencyError
		me *ensembleerrors.MissingTargetsError
		ve *ensembleerrors.ValidationError
		pe *ensembleerrors.PanicError
	)
	switch {
	case errors.As(err, &fe):
		attrs = append(attrs, slog.String(ErrorTypeKey, "FormatError"), slog.String(PathKey, fe.Source))
	case errors.As(err, &se):
		attrs = append(attrs, slog.String(ErrorTypeKey, "SizeMismatchError"))
	case errors.As(err, &le):
		attrs = append(attrs, slog.String(ErrorTypeKey, "LibraryInconsistencyError"), slog.String(SplitKey, le.Split))
	case errors.As(err, &me):
		attrs = append(attrs, slog.String(ErrorTypeKey, "MissingTargetsError"), slog.String(SplitKey, me.Split))
	case errors.As(err, &ve):
		attrs = append(attrs, slog.String(ErrorTypeKey, "ValidationError"))
	case errors.As(err, &pe):
		attrs = append(attrs, slog.String(ErrorTypeKey, "PanicError"), slog.String(OperationKey, pe.Operation))
	}
	return attrs
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
