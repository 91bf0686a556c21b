// Package server implements the MCP (Model Context Protocol) server for leaf
// measurement.
//
// This package provides a JSON-RPC 2.0 server that exposes the leafmeter
// pipeline to MCP clients, so an assistant can measure the leaves on a
// scanned sheet without leaving the conversation.
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
//   - leaf_analyze: Calibrated per-leaf metrics and aggregated statistics
//   - leaf_detect_shapes: Every traced boundary with its classification
//   - leaf_calibrate: Reference square and scale factors
//   - leaf_overlay: Annotated sheet as base64 PNG
//
// Every tool takes the absolute path of the sheet image. Decoded images are
// cached by path for the lifetime of the server process.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments, undecodable images and invalid
//     reference areas; -32000 for failures inside the pipeline
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	a, err := analysis.New(config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(a, version).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
