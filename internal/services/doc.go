// Package services holds the HTTP clients that cross the boundary between the shell and the remote library.
//
// # Remote Loading
//
// [RemoteLoader] fetches the remote's entry script, evaluates it in a fresh goja runtime and reads the
// exposed module from the global container (by default musicLibrary, module ./MusicLibrary):
//
//	var musicLibrary = {
//	  name: "musicLibrary",
//	  exposes: { "./MusicLibrary": { path: "/modules/music-library", props: ["userRole"] } }
//	};
//
// [RemoteLoader.Load] runs in its own goroutine and its channel receives exactly one [LoadResult] before
// it is closed. There is no retry and no timeout beyond the caller's context. A failed load renders
// [FailureNotice] in place of the component.
//
// # Components
//
// A loaded [Component] renders an HTML fragment for a role and a view query.
//
// # API Client
//
// [APIClient] logs in against the shell's token endpoint with the OAuth2 password grant and calls the
// remote's JSON API with the resulting bearer token.
//
// # Error Handling
//
//   - [shared.ErrRemoteLoad] : entry script unreachable, invalid, or missing the container/module
//   - [shared.ErrInvalidCredentials] : password grant rejected
//   - [shared.ErrNotAuthenticated] : no token, or the remote answered 401
//   - [shared.ErrForbidden] : the remote answered 403
//   - [shared.ErrSongNotFound] : the remote answered 404
//   - [shared.ErrAPIRequest] : any other non-2xx
package services
