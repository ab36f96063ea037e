package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiParts(t *testing.T) {
	blocks := buildComparisonBlocks(testImages("mon", 1), testImages("fri", 1))
	parts, err := geminiParts(blocks)
	require.NoError(t, err)
	require.Len(t, parts, 5)

	assert.Contains(t, parts[0].Text, "Monday group (1 images)")
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("mon-0.png"), parts[1].InlineData.Data)
	assert.Equal(t, comparisonPrompt, parts[4].Text)
}

func TestGeminiParts_DecodesBase64WithoutRaw(t *testing.T) {
	block := contentBlock{Type: "image", Source: &imageSource{
		Type:      "base64",
		MediaType: "image/gif",
		Data:      base64.StdEncoding.EncodeToString([]byte("gif-bytes")),
	}}
	parts, err := geminiParts([]contentBlock{block})
	require.NoError(t, err)
	assert.Equal(t, []byte("gif-bytes"), parts[0].InlineData.Data)
}

func TestGeminiParts_Rejects(t *testing.T) {
	_, err := geminiParts([]contentBlock{{Type: "image"}})
	assert.Error(t, err)
	_, err = geminiParts([]contentBlock{{Type: "audio"}})
	assert.Error(t, err)
	_, err = geminiParts([]contentBlock{{Type: "image", Source: &imageSource{Data: "%%%"}}})
	assert.Error(t, err)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := newGeminiClient(context.Background(), "", "gemini-test", 100, time.Second, "")
	assert.Error(t, err)
}

func TestGeminiClient_Compare(t *testing.T) {
	var gotPath, gotKey string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "gemini answer"}},
				},
			}},
		})
	}))
	defer srv.Close()

	c, err := newGeminiClient(context.Background(), "g-key", "gemini-test", 256, 5*time.Second, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Name())

	text, err := c.Compare(context.Background(), buildComparisonBlocks(testImages("mon", 1), testImages("fri", 1)))
	require.NoError(t, err)
	assert.Equal(t, "gemini answer", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), gotPath)
	assert.Equal(t, "g-key", gotKey)

	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	first := contents[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Len(t, first["parts"], 5)
}
