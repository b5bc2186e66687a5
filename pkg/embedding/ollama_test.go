package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"semchunk/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNormalizeBaseURL(t *testing.T) {
	testCases := []struct {
		in, expected string
	}{
		{"http://localhost:11434", "http://localhost:11434"},
		{"http://localhost:11434/", "http://localhost:11434"},
		{"http://localhost:11434//", "http://localhost:11434/"},
		{" http://10.0.0.5:11434/ ", "http://10.0.0.5:11434"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeBaseURL(tc.in))
	}
}

func TestOllamaEmbed(t *testing.T) {
	var got EmbeddingRequest
	srv := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"embedding":[0.1,-0.2,0.3]}`)
	})

	client := NewOllamaClient(NormalizeBaseURL(srv.URL+"/"), "nomic-embed-text")
	vec, err := client.Embed(context.Background(), "Cats are mammals.")
	require.NoError(t, err)

	assert.Equal(t, Vector{0.1, -0.2, 0.3}, vec)
	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, "Cats are mammals.", got.Prompt)
	assert.Equal(t, srv.URL, client.BaseURL())
}

func TestNewOllamaClientKeepsBaseURL(t *testing.T) {
	client := NewOllamaClient("http://x:1/", "nomic-embed-text")
	assert.Equal(t, "http://x:1/", client.BaseURL())
}

func TestOllamaEmbedErrors(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		body      string
		isService bool
		isFormat  bool
	}{
		{"ServerError", http.StatusInternalServerError, `model not loaded`, true, false},
		{"NotFound", http.StatusNotFound, `{"error":"model 'x' not found"}`, true, false},
		{"MalformedBody", http.StatusOK, `{"embedding":`, true, false},
		{"MissingField", http.StatusOK, `{"vector":[1,2]}`, false, true},
		{"NullField", http.StatusOK, `{"embedding":null}`, false, true},
		{"NotAnArray", http.StatusOK, `{"embedding":"nope"}`, false, true},
		{"EmptyArray", http.StatusOK, `{"embedding":[]}`, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})

			_, err := NewOllamaClient(srv.URL, "m").Embed(context.Background(), "text")
			require.Error(t, err)
			assert.Equal(t, tc.isService, errs.IsService(err), err.Error())
			assert.Equal(t, tc.isFormat, errs.IsFormat(err), err.Error())
		})
	}
}

func TestOllamaEmbedRejectsBlankText(t *testing.T) {
	called := false
	srv := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := NewOllamaClient(srv.URL, "m").Embed(context.Background(), " \n\t ")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.False(t, called)
}

func TestOllamaEmbedTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOllamaClient(url, "m", WithTimeout(time.Second)).Embed(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errs.IsService(err))
}

func TestOllamaListModels(t *testing.T) {
	srv := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"models":[
			{"name":"nomic-embed-text:latest","size":274302450,"modified_at":"2024-05-01T10:00:00Z"},
			{"name":"all-minilm"}
		]}`)
	})

	models, err := NewOllamaClient(srv.URL, "").ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "nomic-embed-text:latest", models[0].Name)
	assert.Equal(t, int64(274302450), models[0].Size)
	assert.Equal(t, "2024-05-01T10:00:00Z", models[0].ModifiedAt)
	assert.Equal(t, "all-minilm", models[1].Name)
	assert.Zero(t, models[1].Size)
}

func TestOllamaListModelsEmptyAndErrors(t *testing.T) {
	empty := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	models, err := NewOllamaClient(empty.URL, "").ListModels(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, models)
	assert.Empty(t, models)

	failing := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `loading`)
	})
	_, err = NewOllamaClient(failing.URL, "").ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsService(err))
	assert.Contains(t, err.Error(), "503")
}

func TestOllamaPing(t *testing.T) {
	ok := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"models":[]}`)
	})
	assert.True(t, NewOllamaClient(ok.URL, "").Ping(context.Background()))

	failing := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, ``)
	})
	assert.False(t, NewOllamaClient(failing.URL, "").Ping(context.Background()))

	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()
	assert.False(t, NewOllamaClient(url, "").Ping(context.Background()))
}
