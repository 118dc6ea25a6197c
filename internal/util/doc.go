// Package util holds small reflection helpers that back structured model
// output. It lives in internal to avoid committing to public API stability.
package util
