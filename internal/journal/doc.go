// Package journal persists launcher sessions and connectivity transitions in
// a local SQLite database so `oficina history` can show what happened across
// runs.
//
// The schema version lives in SQLite's user_version pragma. A database stamped
// with a different version is rejected with ErrSchemaMismatch and never
// migrated. The journal holds diagnostics only, so deleting it is safe.
package journal
