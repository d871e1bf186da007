// ABOUTME: Tests for result normalization into MCP content blocks.
// ABOUTME: Covers pass-through identity, image conversion, and text fallbacks.

package cantrip

import (
	"errors"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// textOf asserts blocks is a single text block and returns its text.
func textOf(t *testing.T, blocks []mcp.Content) string {
	t.Helper()
	if len(blocks) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(blocks))
	}
	tc, ok := blocks[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *mcp.TextContent, got %T", blocks[0])
	}
	return tc.Text
}

type ticket struct {
	id int
}

func (tk ticket) String() string {
	return fmt.Sprintf("ticket-%d", tk.id)
}

func TestNormalizeText(t *testing.T) {
	t.Run("plain string becomes one text block with the exact string", func(t *testing.T) {
		got := textOf(t, Normalize("Hello, World!"))
		if got != "Hello, World!" {
			t.Errorf("expected 'Hello, World!', got %q", got)
		}
	})

	t.Run("empty string still produces a text block", func(t *testing.T) {
		got := textOf(t, Normalize(""))
		if got != "" {
			t.Errorf("expected empty text, got %q", got)
		}
	})

	t.Run("byte slice is treated as raw text", func(t *testing.T) {
		got := textOf(t, Normalize([]byte("raw bytes")))
		if got != "raw bytes" {
			t.Errorf("expected 'raw bytes', got %q", got)
		}
	})
}

func TestNormalizePassThrough(t *testing.T) {
	t.Run("recognized scalar block is returned unchanged", func(t *testing.T) {
		block := &mcp.TextContent{Text: "already content"}

		blocks := Normalize(block)
		if len(blocks) != 1 {
			t.Fatalf("expected 1 block, got %d", len(blocks))
		}
		if blocks[0] != mcp.Content(block) {
			t.Error("expected the same block back")
		}
	})

	t.Run("content slice is returned unchanged", func(t *testing.T) {
		in := []mcp.Content{
			&mcp.TextContent{Text: "a"},
			&mcp.ImageContent{Data: []byte{1}, MIMEType: "image/png"},
		}

		blocks := Normalize(in)
		if len(blocks) != 2 {
			t.Fatalf("expected 2 blocks, got %d", len(blocks))
		}
		if blocks[0] != in[0] || blocks[1] != in[1] {
			t.Error("expected identical blocks back")
		}
	})

	t.Run("untyped slice of content blocks converts element-wise", func(t *testing.T) {
		first := &mcp.TextContent{Text: "a"}
		second := &mcp.TextContent{Text: "b"}

		blocks := Normalize([]any{first, second})
		if len(blocks) != 2 {
			t.Fatalf("expected 2 blocks, got %d", len(blocks))
		}
		if blocks[0] != mcp.Content(first) || blocks[1] != mcp.Content(second) {
			t.Error("expected identical blocks back")
		}
	})

	t.Run("mixed untyped slice falls back to JSON text", func(t *testing.T) {
		got := textOf(t, Normalize([]any{"a", 1}))
		if got != `["a",1]` {
			t.Errorf("expected JSON slice text, got %q", got)
		}
	})
}

func TestNormalizeImage(t *testing.T) {
	t.Run("image value becomes one image block with bytes and MIME type", func(t *testing.T) {
		img := Image{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MIMEType: "image/png"}

		blocks := Normalize(img)
		if len(blocks) != 1 {
			t.Fatalf("expected 1 block, got %d", len(blocks))
		}
		ic, ok := blocks[0].(*mcp.ImageContent)
		if !ok {
			t.Fatalf("expected *mcp.ImageContent, got %T", blocks[0])
		}
		if string(ic.Data) != string(img.Data) {
			t.Error("expected image bytes to be carried over")
		}
		if ic.MIMEType != "image/png" {
			t.Errorf("expected MIME type 'image/png', got %q", ic.MIMEType)
		}
	})

	t.Run("image pointer converts the same way", func(t *testing.T) {
		img := &Image{Data: []byte{1, 2, 3}, MIMEType: "image/jpeg"}

		blocks := Normalize(img)
		if len(blocks) != 1 {
			t.Fatalf("expected 1 block, got %d", len(blocks))
		}
		ic, ok := blocks[0].(*mcp.ImageContent)
		if !ok {
			t.Fatalf("expected *mcp.ImageContent, got %T", blocks[0])
		}
		if ic.MIMEType != "image/jpeg" {
			t.Errorf("expected MIME type 'image/jpeg', got %q", ic.MIMEType)
		}
	})

	t.Run("nil image pointer yields no content", func(t *testing.T) {
		var img *Image
		if blocks := Normalize(img); len(blocks) != 0 {
			t.Errorf("expected no blocks, got %d", len(blocks))
		}
	})
}

func TestNormalizeFallbacks(t *testing.T) {
	t.Run("nil yields no content", func(t *testing.T) {
		if blocks := Normalize(nil); len(blocks) != 0 {
			t.Errorf("expected no blocks, got %d", len(blocks))
		}
	})

	t.Run("numbers use their JSON form", func(t *testing.T) {
		if got := textOf(t, Normalize(42)); got != "42" {
			t.Errorf("expected '42', got %q", got)
		}
		if got := textOf(t, Normalize(2.5)); got != "2.5" {
			t.Errorf("expected '2.5', got %q", got)
		}
	})

	t.Run("booleans use their JSON form", func(t *testing.T) {
		if got := textOf(t, Normalize(true)); got != "true" {
			t.Errorf("expected 'true', got %q", got)
		}
	})

	t.Run("structs are JSON-encoded", func(t *testing.T) {
		type result struct {
			Count int    `json:"count"`
			Label string `json:"label"`
		}

		got := textOf(t, Normalize(result{Count: 3, Label: "ok"}))
		if got != `{"count":3,"label":"ok"}` {
			t.Errorf("unexpected JSON text: %q", got)
		}
	})

	t.Run("maps are JSON-encoded", func(t *testing.T) {
		got := textOf(t, Normalize(map[string]int{"a": 1}))
		if got != `{"a":1}` {
			t.Errorf("unexpected JSON text: %q", got)
		}
	})

	t.Run("error values use their message", func(t *testing.T) {
		got := textOf(t, Normalize(errors.New("boom")))
		if got != "boom" {
			t.Errorf("expected 'boom', got %q", got)
		}
	})

	t.Run("stringers use their String form", func(t *testing.T) {
		got := textOf(t, Normalize(ticket{id: 7}))
		if got != "ticket-7" {
			t.Errorf("expected 'ticket-7', got %q", got)
		}
	})

	t.Run("unencodable values fall back to fmt", func(t *testing.T) {
		ch := make(chan int)
		blocks := Normalize(ch)
		if len(blocks) != 1 {
			t.Fatalf("expected 1 block, got %d", len(blocks))
		}
		if _, ok := blocks[0].(*mcp.TextContent); !ok {
			t.Fatalf("expected *mcp.TextContent, got %T", blocks[0])
		}
	})
}
