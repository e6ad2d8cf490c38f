// Package models defines the response and request schemas of the sonar API.
//
// Upstream JSON from Spotify, Last.fm and lyrics.ovh is decoded into these
// types and only these fields are relayed, so the API surface does not change
// when a provider adds or renames fields.
//
//   - Spotify objects: [User], [Track], [Artist], [Album], [SimplePlaylist], [Device], [CurrentlyPlaying]
//   - Playback commands: [PlayRequest], [SeekRequest], [VolumeRequest], [TransferRequest]
//   - Aggregates: [Analytics]
//   - Music data: [Lyrics], [SimilarTrack], [ArtistInfo]
//   - Auth: [AuthStatus], [LogoutResponse], [TokenPair], [TokenResponse]
//
// Request types implement Validate, which the proxy calls before any upstream request.
package models
