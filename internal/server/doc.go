// Package server provides HTTP routing, middleware, and the two web services: the shell and the remote.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers method-qualified [http.ServeMux] patterns, so a request with the
// wrong method gets 405 from the mux itself.
//
// # Shell
//
// [Shell] owns the session. Each request builds a [session.Manager] over a [CookieStore]:
//
//	GET  /              login form, or the layout with the library component (or the fallback notice)
//	POST /login         form login, throttled
//	POST /logout        clear the cookie
//	POST /oauth/token   password grant for API clients, throttled ([TokenHandler])
//	POST /library/...   forwarded to the remote with X-User-Role set from the session
//	GET  /healthz
//
// Every page render performs its own remote load; nothing is cached between requests.
//
// # Remote
//
// [Remote] owns the song list, shared by all requests behind a read/write mutex:
//
//	GET    /assets/remoteEntry.js
//	GET    /modules/music-library                    HTML fragment for the caller's role
//	POST   /modules/music-library/songs              admin only, 303 to the return path
//	POST   /modules/music-library/songs/{id}/delete  admin only, 303 to the return path
//	GET    /api/songs                                derived view as JSON
//	POST   /api/songs                                bearer token, admin only
//	DELETE /api/songs/{id}                           bearer token, admin only
//	GET    /healthz
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
