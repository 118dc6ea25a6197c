package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/blogmesh/internal/util"
)

// ErrEmptyResponse is returned when a provider finishes without any text.
var ErrEmptyResponse = errors.New("model returned no content")

// GenerateText drains a Generate call and returns the complete completion.
// The final chunk wins; if the provider only streamed deltas they are joined.
func GenerateText(ctx context.Context, m Model, req Request) (string, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		partial strings.Builder
		final   string
		gotFull bool
	)
	for resp := range respCh {
		if resp.Partial {
			partial.WriteString(resp.Text)
			continue
		}
		final = resp.Text
		gotFull = true
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	if !gotFull {
		final = partial.String()
	}
	return final, nil
}

// GenerateJSON requests a JSON object shaped like out, then decodes it.
// The schema is derived from out's struct tags and appended to the
// instructions so providers without native schema support still comply.
func GenerateJSON(ctx context.Context, m Model, req Request, out any) error {
	schema := util.CreateSchema(out)
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}

	req.Format = FormatJSON
	req.Instructions = strings.TrimSpace(req.Instructions + "\n\n" +
		"Respond with a single JSON object matching this schema and nothing else:\n" + string(raw))

	text, err := GenerateText(ctx, m, req)
	if err != nil {
		return err
	}
	return DecodeJSON(text, out)
}

// DecodeJSON extracts the first JSON object from text (tolerating markdown
// fences and surrounding prose), checks required fields against out's schema
// and unmarshals it into out.
func DecodeJSON(text string, out any) error {
	body := ExtractJSON(text, '{', '}')
	if body == "" {
		if strings.TrimSpace(text) == "" {
			return ErrEmptyResponse
		}
		return fmt.Errorf("no JSON object in response: %q", truncate(text, 120))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return fmt.Errorf("invalid JSON object: %w", err)
	}
	if err := util.ValidateObject(obj, util.CreateSchema(out)); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("decode JSON object: %w", err)
	}
	return nil
}

// StripFences removes a surrounding markdown code fence (``` or ```json).
func StripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	} else {
		t = ""
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// ExtractJSON returns the outermost span delimited by open and close after
// fence stripping, or "" when none exists.
func ExtractJSON(text string, open, close byte) string {
	t := StripFences(text)
	start := strings.IndexByte(t, open)
	end := strings.LastIndexByte(t, close)
	if start < 0 || end <= start {
		return ""
	}
	return t[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
