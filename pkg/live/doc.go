// Package live serves cells over HTTP and WebSocket.
//
// A Hub binds one cell to WebSocket clients. Every notification of the
// cell is pushed to every client as a value frame, and a client may write
// the cell with a set frame. Writes are applied on the app loop with
// TrySet, so they go through the same state gate as in-process writes:
// a write that arrives while the cell is notifying is answered with an
// error frame instead of corrupting the pass.
//
// Frames are JSON text messages:
//
//	{"type":"value","cell":"counter","value":3}     server to client
//	{"type":"set","value":4}                        client to server
//	{"type":"error","code":"E003","message":"..."}  server to client
//
// NewRouter mounts hubs under /cells with chi.
package live
