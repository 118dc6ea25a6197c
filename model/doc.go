// Package model defines the provider-agnostic abstraction the pipeline stages
// use to drive text generation.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind a single interface
//   - Let every request carry its own sampling temperature
//   - Support structured (JSON object) output with reflection-derived schemas
//   - Facilitate lightweight scripting for tests (MockModel)
//
// Providers (OpenAI, Groq via the OpenAI-compatible endpoint, Anthropic)
// implement Model in sub-packages so stages remain decoupled from vendor SDKs.
package model
