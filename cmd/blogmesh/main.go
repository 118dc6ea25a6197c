// Command blogmesh writes a blog post with a guard → planner → researcher →
// generator ⇄ critic pipeline and prints the best-scoring draft.
//
//	export GROQ_API_KEY=... TAVILY_API_KEY=...
//	blogmesh --topic "Go generics in practice" --tone friendly --max-iterations 4 --out ./out
//
// Without --topic the inputs are read interactively from stdin.
package main

import (
	"context"
	"os"
	"os/signal"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
