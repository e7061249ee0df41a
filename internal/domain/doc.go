// Package domain defines the core types of the Atelier canvas.
//
// A Space is a themed canvas. It holds Blocks, the freely positioned cards of
// the canvas, and each Block carries an ordered list of Content items (text,
// notes, links to files or web pages). Links connect two blocks, possibly
// across spaces, and carry a type, a weight and a validation status.
//
// # Coordinates
//
// Every block has two coordinate pairs. X/Y place it inside its own space;
// XGlobal/YGlobal place it in the global graph that spans all spaces. The
// layout engine writes one pair or the other depending on the Scope of the
// run.
//
// # Views
//
// GlobalGraph is the derived cross-space view, filtered with GraphFilter.
// Fragment is the unit of import and export for one space.
//
// # Design Principles
//
// - No database or external dependencies
// - Enumerations are typed strings with Valid methods
// - Missing rows are reported with ErrNotFound
package domain
