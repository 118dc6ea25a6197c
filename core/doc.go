// Package core provides the foundational domain types shared by every
// blogmesh package:
//
//   - State (the session record threaded through every stage)
//   - Route (the controller's continue / done signal)
//   - Stage (the unit of work executed by the runner)
//   - Event (an immutable record of one completed stage execution)
//   - StageError (the typed failure that aborts a run)
//   - Session, SessionStore and ArtifactStore (process-local run records)
//
// The package intentionally keeps implementation concerns (model providers,
// prompt storage, routing, persistence) out of scope so stages and the runner
// can be tested against plain values.
package core
