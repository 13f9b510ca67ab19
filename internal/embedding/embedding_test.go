package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	calls int
	vecs  [][]float32
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.vecs != nil {
		return s.vecs, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{3, 4}
	}
	return out, nil
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)
}

func TestNormalizing_EmptyInputSkipsBackend(t *testing.T) {
	stub := &stubEmbedder{}
	e := Normalizing(stub)

	out, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 0, stub.calls)
}

func TestNormalizing_UnitRows(t *testing.T) {
	e := Normalizing(&stubEmbedder{})
	out, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, row := range out {
		var sum float64
		for _, x := range row {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	}
}

func TestNormalizing_RowCountMismatch(t *testing.T) {
	e := Normalizing(&stubEmbedder{vecs: [][]float32{{1, 0}}})
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
}

func TestNormalizing_Idempotent(t *testing.T) {
	e := Normalizing(&stubEmbedder{})
	assert.Same(t, e, Normalizing(e))
}

func TestSimilarity(t *testing.T) {
	a := [][]float32{{1, 0}, {0, 1}}
	b := [][]float32{{1, 0}, {0, 1}, {-1, 0}}

	sim := Similarity(a, b)
	require.Len(t, sim, 2)
	require.Len(t, sim[0], 3)
	assert.InDelta(t, 1.0, sim[0][0], 1e-9)
	assert.InDelta(t, 0.0, sim[0][1], 1e-9)
	assert.InDelta(t, -1.0, sim[0][2], 1e-9)
	assert.InDelta(t, 1.0, sim[1][1], 1e-9)
}

func TestSimilarity_EmptyShapes(t *testing.T) {
	assert.Len(t, Similarity(nil, [][]float32{{1}}), 0)

	sim := Similarity([][]float32{{1}, {0}}, nil)
	require.Len(t, sim, 2)
	assert.Empty(t, sim[0])
	assert.Empty(t, sim[1])
}

func TestSimilarity_Clamped(t *testing.T) {
	sim := Similarity([][]float32{{1.0000001, 0}}, [][]float32{{1.0000001, 0}})
	assert.LessOrEqual(t, sim[0][0], 1.0)
}

func TestProbe(t *testing.T) {
	assert.NoError(t, Probe(context.Background(), Normalizing(&stubEmbedder{})))

	err := Probe(context.Background(), &stubEmbedder{err: errors.New("connection refused")})
	assert.ErrorContains(t, err, "embedding probe failed")

	err = Probe(context.Background(), &stubEmbedder{vecs: [][]float32{{}}})
	assert.ErrorContains(t, err, "no vector")
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: ProviderOllama})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Provider: "carrier-pigeon", Model: "m"})
	assert.Error(t, err)
}

func TestOllamaEmbedder(t *testing.T) {
	var got ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{3, 4}, {0, 2}},
		})
	}))
	defer srv.Close()

	e, err := New(context.Background(), Config{Provider: ProviderOllama, Model: "nomic-embed-text", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := e.Embed(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, []string{"one", "two"}, got.Input)
	require.Len(t, out, 2)
	assert.InDelta(t, 0.6, out[0][0], 1e-6)
	assert.InDelta(t, 1.0, out[1][1], 1e-6)
}

func TestOllamaEmbedder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
		},
		{
			name: "error field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error":"model is loading"}`))
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewOllama(srv.URL, "m", 0).Embed(context.Background(), []string{"x"})
			require.Error(t, err)
			assert.Equal(t, apperr.KindBackend, apperr.KindOf(err))
			assert.Equal(t, apperr.CodeEmbeddingFailed, apperr.CodeOf(err))
		})
	}
}

func TestOpenAIEmbedder_CompatibleServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"m","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		]}`))
	}))
	defer srv.Close()

	e, err := NewOpenAI("", srv.URL, "m")
	require.NoError(t, err)

	out, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, out)
}

func TestOpenAIEmbedder_RequiresKeyForHostedAPI(t *testing.T) {
	_, err := NewOpenAI("", "", "text-embedding-3-small")
	assert.Error(t, err)
}
