// Package agent contains the LLM-backed stages of the blog pipeline. Each
// stage implements core.Stage and mutates only the record fields it owns:
//
//  1. Guard validates and sanitizes the user input, halting on rejection
//  2. Planner proposes prioritized web search queries
//  3. Researcher runs one web search and distills it into research notes
//  4. Generator writes the first draft or revises the previous one
//  5. Critic scores the draft and feeds the best-draft bookkeeping
//  6. SEOEditor polishes a finished draft for search engines
//
// Design principles:
//   - Explicit wiring: model, prompt loader, searcher and logger are injected
//   - No hidden global state; the *core.State is the only shared record
//   - Every system prompt is a named template resolved through prompt.Loader
//
// Stages never retry. Failures other than the guard's are returned to the
// runner, which aborts the run.
package agent
