// Package cantrip exposes plain Go functions as tools on a
// Model-Context-Protocol (MCP) server.
//
// # Overview
//
// The package is a thin convenience layer over the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk/mcp). It does not implement
// any of the protocol itself: framing, the JSON-RPC envelope, and
// session lifecycle all belong to the SDK. What it adds is the glue a
// function needs to become a tool:
//
//   - a registration path that derives the tool name, description, and
//     input schema from the function itself
//   - a result normalizer that turns arbitrary return values into MCP
//     content blocks
//   - an in-process call path so registered tools are usable (and
//     testable) without a transport session
//
// # Architecture
//
// A Server pairs an SDK server with its own tool registry:
//
//   - Server: identity (name, version, instructions), transport
//     selection, lifecycle
//   - AddFunc / ToolFunc: the function-to-tool adapter
//   - Normalize: the content conversion contract
//   - Convert / Wrap: single-function servers
//
// Tool names are unique per server; registering an existing name
// replaces the earlier tool.
//
// # Usage
//
// Combine several functions into one server:
//
//	srv := cantrip.New("Calculator Server", nil)
//	cantrip.AddFunc(srv, add, nil)
//	cantrip.AddFunc(srv, divide, &cantrip.ToolOptions{
//		Description: "Divide two numbers",
//	})
//	if err := srv.Run(ctx, cantrip.TransportStdio); err != nil {
//		log.Fatal(err)
//	}
//
// Or expose a single function as its own server:
//
//	srv, err := cantrip.Convert(hello, nil)
//
// Functions take a context and one JSON-decodable input value and may
// return any value:
//
//	type AddArgs struct {
//		A int `json:"a"`
//		B int `json:"b"`
//	}
//
//	func add(ctx context.Context, in AddArgs) (int, error) {
//		return in.A + in.B, nil
//	}
//
// Return values pass through Normalize: strings become text blocks,
// an Image becomes an image block, existing content passes through
// unchanged, and anything else is JSON-encoded as text. Errors are not
// converted; the SDK reports them to the client as tool errors.
package cantrip
