// Package repository defines the data access interface for Atelier.
//
// The Repository interface covers spaces, blocks, block contents and links,
// the filtered global graph view, bulk fragment import/export, and
// persistence of layout results. The implementation lives in the sqlite
// subpackage.
//
// # Coordinates
//
// SavePositions writes either the local (x, y) or the global
// (x_global, y_global) pair of each block depending on the scope, inside a
// single transaction.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
