// Package store persists cell values.
//
// A Store is a small key/value backend (memory, Redis, S3). Persist binds
// a cell to a key: the stored value, if any, is loaded into the cell, and
// every later value is written back in the background so notification
// passes never wait on I/O.
//
//	st := store.NewRedis("localhost:6379", "", 0, store.WithPrefix("app:"))
//	p, err := store.Persist(ctx, prefs, st, "prefs")
//	...
//	defer p.Close()
package store
