// Package services talks to the Spotify Web API.
//
// # Authentication
//
// [SpotifyAuthenticator] performs the OAuth 2.0 client credentials grant against the accounts service
// using [clientcredentials.Config]. The client id and secret travel in an HTTP basic Authorization
// header and the form body carries grant_type=client_credentials. Exactly one request is made and
// the token is neither cached nor refreshed.
//
// Failures are reported as [shared.AuthenticationError], which carries the response status and body
// when the server answered.
//
// # Extraction
//
// [SpotifyExtractor] fetches the first page of a playlist's track listing and maps each item's
// nested track to a [models.Track]:
//
//	name                         -> TrackName
//	artists[].name joined ", "   -> Artist
//	album.name                   -> Album
//	album.release_date           -> ReleaseDate
//	popularity                   -> Popularity
//
// Absent values become empty strings. Only one page is read; when the response links to a next
// page a warning is logged.
//
// Failures are reported as [shared.ExtractionError].
package services
