// Package artifact contains implementations of core.ArtifactStore.
//
// InMemoryStore keeps artifacts in process memory for tests. DirStore writes
// them below a root directory (<root>/<session>/<artifact>) and backs the CLI
// exports (best draft as Markdown and HTML, the JSON run report).
package artifact
