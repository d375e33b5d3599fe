// Package kvstore provides the persisted settings service shared by the board,
// search and offline components.
//
// # Overview
//
// Every piece of client state (board snapshots, the search cache, the offline
// action queue, the theme preference) is a JSON document stored under a string
// key. The Store interface hides where those documents live so that components
// take a Store by injection and tests can swap in a MemoryStore.
//
// # Lifecycle
//
//	store, err := kvstore.Open(kvstore.Options{Backend: kvstore.BackendSQLite, Path: ".kanban/kanban.db"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := store.Init(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	theme, err := kvstore.GetJSON(ctx, store, kvstore.ThemeKey, "system")
//
// # Backends
//
// MemoryStore keeps documents in a map and is used by tests. SQLiteStore writes a
// single local database file and is the default for the CLI. RedisStore shares
// state through Redis; all of its keys are namespaced as kanban:{namespace}:{key}
// so that several boards can coexist on one server.
//
// # Consistency
//
// Writes are whole-document replacements with last-write-wins semantics. There is
// no cross-process coordination: two processes writing the same key race, and the
// later write wins.
package kvstore
