// Package edgegate implements the authorization core of an edge gateway
// node that serves static files under path-scoped access policies protected
// by time-limited, byte-range-scoped signed URLs.
//
// The package is purely computational: it performs no I/O, never blocks,
// and returns typed decisions instead of HTTP status codes. The pieces fit
// together as follows:
//
//   - Store: atomically swappable handle to an immutable policy Snapshot,
//     supporting lock-free reads under concurrent hot reloads
//   - Snapshot: validated path-prefix to policy mapping with longest-prefix
//     lookup
//   - VerifyToken / Sign: HMAC-SHA256 signed token verification and minting
//   - MatchRanges: byte-exact comparison of signed ranges against the
//     client's Range header
//   - Engine: orchestrates the above into one Allow/Deny decision per
//     request
//
// # Example Usage
//
//	store := edgegate.NewStore()
//	snap, err := edgegate.NewSnapshot(1, []edgegate.PathPolicy{
//	    {Prefix: "/restricted", Secret: "sign_token"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = store.Swap(snap)
//
//	engine := edgegate.NewEngine(store)
//	decision := engine.Authorize(edgegate.Request{
//	    Path:  r.URL.Path,
//	    Query: r.URL.Query(),
//	})
//
// See the loader package for producing snapshots from YAML documents or a
// central configuration server, and the http package for the gateway's
// serving surface.
package edgegate
