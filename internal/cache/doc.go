// Package cache implements the categorized TTL/capacity cache that sits
// between the tool handlers and the OpenDART upstream. Key features:
//   - Durable entry storage behind a Store interface (PebbleDB by default,
//     SQLite or in-memory opt-in)
//   - Per-category TTL expiry and LRU capacity eviction driven by a static
//     policy table loaded at startup
//   - SHA256-based deterministic cache keys with identifier normalization
//   - Hit/miss/eviction accounting exposed via Stats and an optional
//     StatsRecorder hook
//
// The Engine is the only type handlers interact with; stores are never
// touched directly outside this package.
package cache
