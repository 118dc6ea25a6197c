package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_Queue(t *testing.T) {
	m := NewMockModel("mock", "mock").
		AddResponse("first").
		AddError(errors.New("boom"))

	text, err := GenerateText(context.Background(), m, Request{Messages: []Message{UserMessage("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	_, err = GenerateText(context.Background(), m, Request{Messages: []Message{UserMessage("hi")}})
	assert.EqualError(t, err, "boom")

	text, err = GenerateText(context.Background(), m, Request{Messages: []Message{UserMessage("echo")}})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: echo", text)
	assert.Equal(t, 3, m.Calls())
}

func TestMockModel_Handler(t *testing.T) {
	m := NewMockModel("mock", "mock").SetHandler(func(r Request) (string, error) {
		return r.Instructions, nil
	})
	text, err := GenerateText(context.Background(), m, Request{Instructions: "sys"})
	require.NoError(t, err)
	assert.Equal(t, "sys", text)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "sys", reqs[0].Instructions)
}

func TestMockModel_NoMessages(t *testing.T) {
	m := NewMockModel("mock", "mock")
	_, err := GenerateText(context.Background(), m, Request{})
	assert.Error(t, err)
}

func TestGenerateText_Streaming(t *testing.T) {
	m := NewMockModel("mock", "mock").AddResponse("héllo")
	respCh, errCh := m.Generate(context.Background(), Request{Stream: true})

	var partials int
	var final string
	for r := range respCh {
		if r.Partial {
			partials++
			continue
		}
		final = r.Text
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, 5, partials)
	assert.Equal(t, "héllo", final)
}

func TestGenerateText_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMockModel("mock", "mock").AddResponse("abc")
	_, err := GenerateText(ctx, m, Request{Stream: true})
	assert.ErrorIs(t, err, context.Canceled)
}

type verdict struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

func TestGenerateJSON(t *testing.T) {
	m := NewMockModel("mock", "mock").AddResponse("```json\n{\"valid\": true, \"issues\": [\"a\"]}\n```")

	var v verdict
	err := GenerateJSON(context.Background(), m, Request{Instructions: "check", Messages: []Message{UserMessage("x")}}, &v)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, []string{"a"}, v.Issues)

	req := m.Requests()[0]
	assert.Equal(t, FormatJSON, req.Format)
	assert.Contains(t, req.Instructions, "check")
	assert.Contains(t, req.Instructions, `"valid"`)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"plain", `{"valid": false}`, false},
		{"prose around", "Sure! {\"valid\": true} Hope that helps.", false},
		{"missing required", `{"issues": []}`, true},
		{"wrong type", `{"valid": "yes"}`, true},
		{"not json", "no braces here", true},
		{"empty", "   ", true},
		{"broken", `{"valid": }`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v verdict
			err := DecodeJSON(tt.text, &v)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `["a"]`, StripFences("```json\n[\"a\"]\n```"))
	assert.Equal(t, `["a"]`, StripFences("```\n[\"a\"]```"))
	assert.Equal(t, "plain", StripFences("  plain  "))
	assert.Equal(t, `["a","b"]`, ExtractJSON("queries: [\"a\",\"b\"]", '[', ']'))
	assert.Equal(t, "", ExtractJSON("none", '[', ']'))
}

func TestLimit(t *testing.T) {
	inner := NewMockModel("mock", "mock").SetHandler(func(Request) (string, error) { return "ok", nil })
	m := Limit(inner, 2)

	for i := 0; i < 2; i++ {
		_, err := GenerateText(context.Background(), m, Request{})
		require.NoError(t, err)
	}
	_, err := GenerateText(context.Background(), m, Request{})
	assert.ErrorContains(t, err, "exceeded max model calls: 2")
	assert.Equal(t, 2, inner.Calls())
	assert.Equal(t, 3, m.Limiter().Count())
	assert.Equal(t, "mock", m.Info().Name)
}

func TestCallLimiter_Unlimited(t *testing.T) {
	l := NewCallLimiter(0)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Increment())
	}
	assert.Equal(t, 10, l.Count())
	assert.Equal(t, -1, l.Remaining())
}
