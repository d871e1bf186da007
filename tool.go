// ABOUTME: Function-to-tool adapter registering plain Go functions as MCP tools.
// ABOUTME: Keeps the server's own tool registry alongside the SDK server for in-process calls.

package cantrip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrToolNotFound indicates the named tool is not registered on the server.
var ErrToolNotFound = errors.New("tool not found")

// Func is the shape of a function exposed as a tool: a typed input
// decoded from the call arguments, and a result of any type, which is
// passed through Normalize before it reaches the wire.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// ToolOptions overrides the defaults derived from the function itself.
// A nil ToolOptions means both defaults.
type ToolOptions struct {
	// Name is the tool name. Defaults to the function's identifier as
	// reported by the runtime.
	Name string
	// Description defaults to "Function <name>".
	Description string
}

// Tool is a single registration on a Server.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema

	handler func(ctx context.Context, args json.RawMessage) ([]mcp.Content, error)
}

// AddFunc registers fn as a tool on s. The tool name defaults to fn's
// identifier and the description to "Function <name>"; opts overrides
// both. Registering a name that already exists replaces the previous
// tool. The input schema is inferred from In.
//
// Errors returned by fn are not intercepted here: they travel to the
// SDK, which surfaces them as tool errors to the client.
func AddFunc[In, Out any](s *Server, fn Func[In, Out], opts *ToolOptions) (*Tool, error) {
	if fn == nil {
		return nil, fmt.Errorf("adding tool: nil function")
	}

	var name, description string
	if opts != nil {
		name = opts.Name
		description = opts.Description
	}
	if name == "" {
		name = funcName(fn)
	}
	if name == "" {
		return nil, fmt.Errorf("adding tool: name not derivable from function, set ToolOptions.Name")
	}
	if description == "" {
		description = fmt.Sprintf("Function %s", name)
	}

	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("inferring input schema for %q: %w", name, err)
	}

	tool := &Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
		handler: func(ctx context.Context, args json.RawMessage) ([]mcp.Content, error) {
			var in In
			if len(args) > 0 {
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("decoding arguments for %q: %w", name, err)
				}
			}
			out, err := fn(ctx, in)
			if err != nil {
				return nil, err
			}
			return Normalize(out), nil
		},
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		out, err := fn(ctx, in)
		if err != nil {
			return nil, nil, err
		}
		return &mcp.CallToolResult{Content: Normalize(out)}, nil, nil
	})

	s.mu.Lock()
	s.tools[name] = tool
	s.mu.Unlock()

	s.logger.Debug("tool registered", "server", s.name, "server_id", s.id, "tool", name)

	return tool, nil
}

// ToolFunc registers fn and hands it back unchanged, so the function
// remains directly callable alongside its tool registration. It panics
// when registration fails; use AddFunc to handle errors explicitly.
func ToolFunc[In, Out any](s *Server, fn Func[In, Out], opts *ToolOptions) Func[In, Out] {
	if _, err := AddFunc(s, fn, opts); err != nil {
		panic(fmt.Sprintf("cantrip: %v", err))
	}
	return fn
}

// CallTool invokes a registered tool in-process, without a transport
// session. args may be any JSON-encodable value, a json.RawMessage, or
// raw JSON bytes; nil means no arguments. The result is the normalized
// content the tool would place on the wire.
// Returns ErrToolNotFound for unknown names.
func (s *Server) CallTool(ctx context.Context, name string, args any) ([]mcp.Content, error) {
	s.mu.RLock()
	tool, ok := s.tools[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	raw, err := rawArgs(args)
	if err != nil {
		return nil, fmt.Errorf("encoding arguments for %q: %w", name, err)
	}
	return tool.handler(ctx, raw)
}

// HasTool reports whether a tool with the given name is registered.
func (s *Server) HasTool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tools[name]
	return ok
}

// Tools returns the registered tools sorted by name.
func (s *Server) Tools() []*Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]*Tool, 0, len(s.tools))
	for _, t := range s.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// RemoveTools drops the named tools from the server and from the
// underlying SDK server. Unknown names are ignored.
func (s *Server) RemoveTools(names ...string) {
	s.mu.Lock()
	for _, name := range names {
		delete(s.tools, name)
	}
	s.mu.Unlock()

	s.mcp.RemoveTools(names...)
}

// rawArgs turns the caller-supplied arguments into raw JSON for the
// tool handler.
func rawArgs(args any) (json.RawMessage, error) {
	switch a := args.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return a, nil
	case []byte:
		return json.RawMessage(a), nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// funcName derives a tool name from the function's runtime identifier:
// the last path segment with method and generic suffixes stripped.
// Anonymous functions come out as "funcN"; name those explicitly.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	name := rf.Name()
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if !identifierName(name) {
		// Anonymous functions get runtime names like "func1"; those
		// make terrible tool names, so require an explicit one.
		return ""
	}
	return name
}

func identifierName(name string) bool {
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	if rest, ok := strings.CutPrefix(name, "func"); ok && allDigits(rest) {
		return false
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
