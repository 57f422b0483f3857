// Package journal keeps the operator's event log and alert log in SQLite.
//
// The journal listens to the observer.Notifier and stores every event
// and alert line with a UUID and a UTC timestamp. The API serves the
// newest lines through GET /api/v1/logs.
package journal
