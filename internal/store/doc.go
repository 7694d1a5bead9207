// Package store implements the durable record collections (timers, presets,
// groups, history) behind a replace-all Backend, and the Repository that
// serializes every read-modify-write against them.
//
// Two backends are provided: FileBackend keeps one JSON document per
// collection on an afero filesystem, SQLiteBackend keeps rows in a single
// SQLite table. Records are JSON encoded in both; unknown fields are ignored
// on load so older binaries can read newer data.
package store
