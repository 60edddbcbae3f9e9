// Package models defines the domain entities shared by the songbook shell and the music library remote.
//
// The package contains two groups of types:
//
// 1. Identity: the fixed credential table entries and the authenticated actor
//   - [Role] : `admin` or `user`
//   - [Credential] : static username/password/role record used only for comparison
//   - [User] : the public fields of an authenticated actor
//   - [Session] : a [User] with an expiry instant
//
// 2. Catalog: entries held in memory by the library
//   - [Song] : a catalog entry with a unique integer id
//   - [SongInput] : the three required fields of the add form
//
// None of these types are persisted except the encoded session token, which is owned by the session package.
package models
