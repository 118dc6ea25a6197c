// Package session houses the process-local implementation of
// core.SessionStore. Sessions never outlive the process; the store exists so
// callers can inspect a finished run's snapshot and stage history.
package session
