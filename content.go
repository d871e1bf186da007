// ABOUTME: Result normalization for tool return values into MCP content blocks.
// ABOUTME: Recognized content passes through unchanged; everything else becomes text.

package cantrip

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Image carries raw image bytes and their MIME type. Returning an Image
// (or *Image) from a registered function produces a single image
// content block on the wire.
type Image struct {
	Data     []byte
	MIMEType string
}

// Content converts the image to its MCP content block.
func (img Image) Content() *mcp.ImageContent {
	return &mcp.ImageContent{Data: img.Data, MIMEType: img.MIMEType}
}

// Normalize converts an arbitrary function result into MCP content.
//
// Values that already are content (anything implementing mcp.Content,
// a []mcp.Content, or a []any made up entirely of content blocks) pass
// through unchanged, with scalars wrapped in a one-element slice. An
// Image becomes one image block. Strings become text blocks carrying
// the exact string. Errors and fmt.Stringer values contribute their
// textual form, and []byte is treated as raw text. Everything else is
// JSON-encoded into a text block, falling back to fmt formatting for
// values JSON cannot represent. A nil result yields no content.
func Normalize(v any) []mcp.Content {
	switch r := v.(type) {
	case nil:
		return []mcp.Content{}
	case mcp.Content:
		return []mcp.Content{r}
	case []mcp.Content:
		return r
	case []any:
		if blocks, ok := contentSlice(r); ok {
			return blocks
		}
	case Image:
		return []mcp.Content{r.Content()}
	case *Image:
		if r == nil {
			return []mcp.Content{}
		}
		return []mcp.Content{r.Content()}
	case string:
		return []mcp.Content{&mcp.TextContent{Text: r}}
	case []byte:
		return []mcp.Content{&mcp.TextContent{Text: string(r)}}
	case error:
		return []mcp.Content{&mcp.TextContent{Text: r.Error()}}
	case fmt.Stringer:
		return []mcp.Content{&mcp.TextContent{Text: r.String()}}
	}
	return []mcp.Content{&mcp.TextContent{Text: stringify(v)}}
}

// contentSlice converts a []any whose elements are all content blocks.
// Mixed slices are rejected so the caller can fall through to text.
func contentSlice(items []any) ([]mcp.Content, bool) {
	blocks := make([]mcp.Content, 0, len(items))
	for _, item := range items {
		c, ok := item.(mcp.Content)
		if !ok {
			return nil, false
		}
		blocks = append(blocks, c)
	}
	return blocks, true
}

// stringify renders a non-content value as text: JSON when the value is
// encodable, fmt's default formatting otherwise.
func stringify(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
