// Package server implements the MCP (Model Context Protocol) server for the
// photo mosaic tools.
//
// This package provides a JSON-RPC 2.0 server that exposes tile scanning,
// index inspection and mosaic composition through the MCP protocol, so an
// MCP client can build mosaics without a shell.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - mosaic_compose: Rebuild a target image from tiles and write the PNG
//   - mosaic_scan: Import a folder of photos as tiles and rebuild the index
//   - mosaic_index_info: Color and tile counts, first index colors
//   - mosaic_nearest_color: Nearest index color to a #RRGGBB value
//   - mosaic_average_color: Average color of one image file
//
// # Index Lifetime
//
// The color index is loaded (or rebuilt) on first use and kept for the life
// of the process; mosaic_scan replaces it.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments, -32000 for tool execution failure,
//     -32601 for unknown methods, -32700 for unparsable requests
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	a, err := app.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(a, version)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
