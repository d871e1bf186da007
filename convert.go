// ABOUTME: One-shot conversion of a single function into its own MCP server.
// ABOUTME: Wrap pairs a function with an explicit builder for deferred conversion.

package cantrip

import (
	"context"
	"log/slog"
)

const defaultConvertName = "Cantrip Function Server"

// ConvertOptions configures Convert and Wrap. All fields are optional.
type ConvertOptions struct {
	// Name and Description apply to the single tool, with the same
	// defaults as ToolOptions.
	Name        string
	Description string
	// ServerName is the display name ("Cantrip Function Server" when
	// empty). The remaining fields mirror Options.
	ServerName   string
	Instructions string
	Version      string
	Addr         string
	Logger       *slog.Logger
}

// Convert builds a server exposing fn as its only tool and returns it
// for the caller to run.
func Convert[In, Out any](fn Func[In, Out], opts *ConvertOptions) (*Server, error) {
	var o ConvertOptions
	if opts != nil {
		o = *opts
	}
	if o.ServerName == "" {
		o.ServerName = defaultConvertName
	}

	s := New(o.ServerName, &Options{
		Version:      o.Version,
		Instructions: o.Instructions,
		Logger:       o.Logger,
		Addr:         o.Addr,
	})
	if _, err := AddFunc(s, fn, &ToolOptions{Name: o.Name, Description: o.Description}); err != nil {
		return nil, err
	}
	return s, nil
}

// Wrap returns fn unchanged together with a Conversion that can build,
// or build and run, a standalone server for it on demand. The function
// stays directly callable; nothing is constructed until the Conversion
// is used.
func Wrap[In, Out any](fn Func[In, Out], opts *ConvertOptions) (Func[In, Out], *Conversion[In, Out]) {
	c := &Conversion[In, Out]{fn: fn}
	if opts != nil {
		c.opts = *opts
	}
	return fn, c
}

// Conversion lazily turns a wrapped function into its own server.
type Conversion[In, Out any] struct {
	fn   Func[In, Out]
	opts ConvertOptions
}

// Server builds a fresh single-tool server for the wrapped function.
// Each call builds a new one.
func (c *Conversion[In, Out]) Server() (*Server, error) {
	return Convert(c.fn, &c.opts)
}

// Serve builds the server and runs it on the given transport.
func (c *Conversion[In, Out]) Serve(ctx context.Context, transport Transport) error {
	s, err := c.Server()
	if err != nil {
		return err
	}
	return s.Run(ctx, transport)
}
