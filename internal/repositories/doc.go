// Package repositories implements SQLite persistence for the command-line client.
//
// [KVRepository] is a string key/value table used as the durable storage medium
// behind client.TokenStore, so tokens issued to `sonar login` survive between
// invocations the way browser storage survives page loads.
package repositories
