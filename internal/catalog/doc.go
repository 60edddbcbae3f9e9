// Package catalog holds the in-memory song library and the derivation pipeline that turns it into a view.
//
// # Derivation
//
// [Derive] is a pure function of a song list and a [View]. It runs three steps, in order:
//
//  1. Filter: keep a song when each of its title, artist and album, lowercased, contains the matching
//     lowercased filter substring. Empty filters match everything.
//  2. Sort: stable sort by the lowercased sort key. Descending reverses the comparison, so songs with equal
//     keys keep their original relative order in both directions.
//  3. Group: [GroupNone] yields a single "All Songs" group. Any other key partitions the sorted songs by
//     that field ("Unknown" for empty values), groups in first-seen order.
//
// Nothing is cached; every call recomputes from scratch.
//
// # Ownership
//
// A [Library] or [Engine] has exactly one owner and is not safe for concurrent use. [Library.Add] and
// [Library.Delete] do not check roles; callers decide who may mutate.
package catalog
