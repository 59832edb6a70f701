// Package gift turns a recipient profile into catalog search queries and ranks
// the catalog's candidate books against that same profile.
//
// Both operations are pure: they perform no I/O, hold no shared state and may be
// called concurrently. Fetching candidates for the generated queries is the
// caller's job (see package catalog).
//
//	queries := gift.BuildQueries(profile)
//	// ... fetch candidates for each query ...
//	gifts := gift.Rank(candidates, profile)
package gift
