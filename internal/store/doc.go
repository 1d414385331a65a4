// Package store persists analysis runs to SQLite.
//
// Each analysis run records the spec it analyzed (content-addressed hash
// of the canonicalized configuration), the theory's size, and every
// query result, so past verdicts can be listed and compared without
// re-solving. The database is a plain local file; WAL mode keeps reads
// cheap while a run is being written.
package store
