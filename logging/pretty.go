package logging

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// PrettyHandlerOptions configures a PrettyHandler.
type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
}

// PrettyHandler is a slog.Handler that writes one human readable line per record: a timestamp, a
// colored level, the message and the record's attributes as JSON.
type PrettyHandler struct {
	slog.Handler
	l     *log.Logger
	attrs []slog.Attr
}

// NewPrettyHandler returns a new PrettyHandler writing to 'out'.
func NewPrettyHandler(out io.Writer, opts PrettyHandlerOptions) *PrettyHandler {

	h := &PrettyHandler{
		Handler: slog.NewJSONHandler(out, &opts.SlogOpts),
		l:       log.New(out, "", 0),
		attrs:   make([]slog.Attr, 0),
	}

	return h
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {

	level := r.Level.String() + ":"

	switch r.Level {
	case slog.LevelDebug:
		level = color.MagentaString(level)
	case slog.LevelInfo:
		level = color.BlueString(level)
	case slog.LevelWarn:
		level = color.YellowString(level)
	case slog.LevelError:
		level = color.RedString(level)
	}

	fields := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))

	for _, a := range h.attrs {
		fields[a.Key] = attrValue(a.Value)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = attrValue(a.Value)
		return true
	})

	b, err := json.Marshal(fields)

	if err != nil {
		return err
	}

	ts := r.Time.Format("[15:04:05.000]")
	msg := color.CyanString(r.Message)

	h.l.Println(ts, level, msg, color.WhiteString(string(b)))
	return nil
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {

	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)

	return &PrettyHandler{
		Handler: h.Handler.WithAttrs(attrs),
		l:       h.l,
		attrs:   combined,
	}
}

func attrValue(v slog.Value) interface{} {

	v = v.Resolve()

	switch v.Kind() {
	case slog.KindGroup:

		group := make(map[string]interface{})

		for _, a := range v.Group() {
			group[a.Key] = attrValue(a.Value)
		}

		return group

	case slog.KindAny:

		err, ok := v.Any().(error)

		if ok {
			return err.Error()
		}

		return v.Any()

	default:
		return v.Any()
	}
}

// SetupLogger installs a PrettyHandler writing to STDERR as the default slog logger and returns it.
func SetupLogger(verbose bool) *slog.Logger {

	level := slog.LevelInfo

	if verbose {
		level = slog.LevelDebug
	}

	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: level,
		},
	}

	logger := slog.New(NewPrettyHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	return logger
}
