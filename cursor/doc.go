// Package cursor registers MCP server launch entries in the Cursor
// editor's configuration file.
//
// # Overview
//
// Cursor launches MCP servers it finds in a per-user mcp.json file.
// This package locates that file for the host OS, reads it, and
// upserts or removes entries so a server built with cantrip shows up
// inside the editor without hand-editing JSON.
//
// # Architecture
//
// Two layers split the work:
//
//   - Store: locates mcp.json, reads it (absent file = empty
//     registry), and rewrites it atomically via a temp file + rename
//   - Registry: derives launch defaults (interpreter, working
//     directory, PYTHONPATH) and performs lock-guarded
//     read-modify-write cycles through the Store
//
// Mutations take a sibling .lock file keyed on the owner's PID, so two
// concurrent invocations cannot silently drop each other's entries.
// Every read hits the disk; the file is the source of truth.
//
// # Defaults
//
// Upsert fills anything the caller leaves out:
//
//	script path       -> made absolute
//	working directory -> the script's directory
//	interpreter       -> <cwd>/.venv interpreter if present, else "python"
//	env.PYTHONPATH    -> the working directory
//
// # Usage
//
// Open the default config and register a server:
//
//	store, err := cursor.NewStore()
//	if err != nil { ... }
//	reg := cursor.NewRegistry(store, nil)
//
//	entry, err := reg.Upsert("calculator", "./server.py", nil)
//	removed, err := reg.Remove("calculator")
//	names, err := reg.List()
//
// Manifests declare a whole set of entries in YAML and reconcile them
// in one call:
//
//	m, err := cursor.LoadManifest("cantrip.yaml")
//	result, err := reg.Apply(m)
package cursor
