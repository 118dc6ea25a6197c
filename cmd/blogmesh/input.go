package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/blogmesh"
	"github.com/hupe1980/blogmesh/core"
)

var errNoInput = errors.New("no input: provide --topic or answer the prompts")

// readInput asks for the session inputs one line at a time. Answers
// override the corresponding fields of defaults; an unparsable word count
// falls back to core.DefaultWordCount.
func readInput(r io.Reader, w io.Writer, defaults blogmesh.Input) (blogmesh.Input, error) {
	in := defaults
	sc := bufio.NewScanner(r)

	ask := func(prompt string) (string, bool) {
		fmt.Fprint(w, prompt)
		if !sc.Scan() {
			return "", false
		}
		return strings.TrimSpace(sc.Text()), true
	}

	fmt.Fprintln(w, "Blog Generator Agent")

	topic, ok := ask("Enter blog topic: ")
	if !ok {
		if err := sc.Err(); err != nil {
			return in, err
		}
		return in, errNoInput
	}
	in.Topic = topic

	if wc, ok := ask(fmt.Sprintf("Target number of words (e.g. %d): ", core.DefaultWordCount)); ok && wc != "" {
		in.WordCount = core.ParseWordCount(wc)
	}
	if tone, ok := ask("Tone of the blog (e.g. friendly, professional, humorous): "); ok && tone != "" {
		in.Tone = tone
	}
	if c, ok := ask("Additional constraints (SEO terms, audience, etc.): "); ok && c != "" {
		in.Constraints = c
	}
	fmt.Fprintln(w)

	return in, sc.Err()
}
