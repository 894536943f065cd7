package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_ReturnsOneVectorPerText(t *testing.T) {
	var got embedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	e := &Embedder{BaseURL: server.URL, Model: "all-mpnet-base-v2", Client: server.Client()}
	vectors, err := e.Encode(context.Background(), []string{"first", "second"})

	assert.NoError(t, err)
	assert.Equal(t, "all-mpnet-base-v2", got.Model)
	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
}

func TestEncode_CountMismatchIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1]]}`))
	}))
	defer server.Close()

	e := &Embedder{BaseURL: server.URL, Model: "m", Client: server.Client()}
	_, err := e.Encode(context.Background(), []string{"a", "b"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 embeddings")
}

func TestEncode_DimensionMismatchIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	e := &Embedder{BaseURL: server.URL, Model: "m", Client: server.Client(), Dim: 2}
	_, err := e.Encode(context.Background(), []string{"a"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")
}

func TestEncode_DimensionCheckDisabledWhenZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	e := &Embedder{BaseURL: server.URL, Model: "m", Client: server.Client()}
	vectors, err := e.Encode(context.Background(), []string{"a"})

	assert.NoError(t, err)
	assert.Len(t, vectors[0], 3)
}

func TestEncode_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e := &Embedder{BaseURL: server.URL, Model: "m", Client: server.Client()}
	_, err := e.Encode(context.Background(), []string{"a"})

	assert.Error(t, err)
}
