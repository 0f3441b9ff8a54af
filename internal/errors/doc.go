// Package errors provides coded, actionable error messages for vcell.
//
// Library packages return plain errors (sentinels such as
// signal.ErrUpdating, wrapped with %w). At the edges (CLI output, live
// binding error frames) they are turned into a *CellError carrying a
// stable code, a category, and a hint.
//
// # Error Categories
//
//   - runtime: misuse of a cell (reentrant write, read before set)
//   - protocol: live binding frames and routing
//   - store: persistence backends
//   - config: configuration loading and watching
//   - cli: command line usage
//
// # Usage
//
//	err := errors.Classify(cell.TrySet(1))
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Cell is updating
//	//
//	//   A write was issued while the cell was running a notification pass
//	//   or an initial subscribe call.
//	//
//	//   Hint: Schedule the write on the loop instead of writing from an observer.
package errors
