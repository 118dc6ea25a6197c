package core

// SessionStore keeps run sessions: state snapshots and stage event history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendEvent(sessionID string, event Event) error
	SaveState(sessionID string, st *State) error
}

// ArtifactStore persists run outputs (drafts, reports) scoped by session.
// Implementations should be thread-safe.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
