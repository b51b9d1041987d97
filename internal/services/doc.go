// Package services defines the [ChartSource] and [TrackSource] interfaces and implements them for Billboard and Spotify.
//
// # Billboard
//
// [BillboardService] scrapes chart pages over HTTP and parses them with golang.org/x/net/html and cascadia selectors.
// Weekly charts live at {base}/{chart}/{YYYY-MM-DD}; year-end charts at {base}/year-end/{year}/{chart}.
// Requests are spaced by a [rate.Limiter] built from the configured requests-per-second.
//
// # Spotify
//
// [SpotifyService] authenticates with the OAuth2 client-credentials grant; the [oauth2] client fetches and refreshes
// the app token on its own. It exposes track search and audio-feature lookups.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrLookupMiss] : search returned nothing, or the payload was unusable
//   - [shared.ErrAuthFailed] : the provider rejected the credentials
//   - [shared.ErrInvalidArgument] : malformed [ChartQuery]
package services
