// Package offgate is the offline cache gateway for the Appen-Dictionary
// client: an http.RoundTripper that answers GET requests from named cache
// generations or from the live network, per URL class. Non-GET and
// non-http(s) requests are never intercepted.
//
// Two generations are current at any time:
//
//	<ns>-v<version>  - static assets, populated once at install
//	<ns>-runtime     - live responses for dynamic endpoints, captured lazily
//	                   and served when the network fails
//
// Strategies:
//   - Cache-First (static assets): stored response if present, else network.
//     Misses are never written back; only the installer populates statics.
//   - Network-First (API and audio paths): fresh response preferred and
//     captured; on failure the last known-good copy, the offline page (for
//     navigations), or a synthesized 503 carrying an offline marker.
//
// Lifecycle: Install fetches and stores the precache list, Activate purges
// every stale generation under the namespace and takes over traffic. Control
// messages from the hosting application force immediate activation
// (skip-waiting) or wipe the whole namespace (clear-cache).
//
// Components:
//   - store.Store: byte store with TTL (e.g. BigCache, Ristretto, Redis).
//   - manifest.Manifest: ledger of generation names and their member keys.
//   - codec.Codec[Stored]: (de)serializes response snapshots.
package offgate
