// Package cache stores resolved person records between runs.
//
// Keys are fingerprints of the input document, so any edit to the input
// misses the cache and triggers a fresh resolution. Two backends implement
// Store: MemoryStore for tests and single runs, and BoltStore, a bbolt file
// that survives across runs.
//
// # Usage
//
//	store, _ := cache.OpenBolt("resume.yml.cache.db")
//	defer store.Close()
//
//	key := cache.Fingerprint(input)
//	if data, err := store.Get(key); err == nil {
//	    // use data
//	}
//	store.Put(key, resolved)
package cache
