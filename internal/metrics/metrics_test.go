package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Record(t *testing.T) {
	r := NewRegistry()
	r.Record("post", "/score", 100*time.Millisecond, 200)
	r.Record("POST", "/score", 300*time.Millisecond, 502)
	r.Record("GET", "/health", time.Millisecond, 200)

	snaps := r.Snapshots()
	require.Len(t, snaps, 2)

	assert.Equal(t, "GET", snaps[0].Method)
	assert.Equal(t, "/health", snaps[0].Path)

	score := snaps[1]
	assert.Equal(t, "POST", score.Method)
	assert.Equal(t, int64(2), score.Requests)
	assert.Equal(t, int64(1), score.Errors)
	assert.Equal(t, 200*time.Millisecond, score.AverageDuration)
}

func TestRegistry_Render(t *testing.T) {
	r := NewRegistry()
	r.Record("POST", "/score", 1500*time.Millisecond, 429)

	want := `requests_total{method="POST",path="/score"} 1` + "\n" +
		`errors_total{method="POST",path="/score"} 1` + "\n" +
		`request_duration_seconds_average{method="POST",path="/score"} 1.500000` + "\n"
	assert.Equal(t, want, r.Render())
}

func TestRegistry_RenderSorted(t *testing.T) {
	r := NewRegistry()
	r.Record("POST", "/score", time.Millisecond, 200)
	r.Record("GET", "/metrics", time.Millisecond, 200)
	r.Record("POST", "/estimate", time.Millisecond, 200)

	var order []string
	for _, line := range strings.Split(strings.TrimSpace(r.Render()), "\n") {
		if strings.HasPrefix(line, "requests_total") {
			order = append(order, line[:strings.Index(line, "}")+1])
		}
	}
	assert.Equal(t, []string{
		`requests_total{method="GET",path="/metrics"}`,
		`requests_total{method="POST",path="/estimate"}`,
		`requests_total{method="POST",path="/score"}`,
	}, order)
}

func TestRegistry_Empty(t *testing.T) {
	assert.Equal(t, "\n", NewRegistry().Render())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record("POST", "/score", time.Millisecond, 200)
		}()
	}
	wg.Wait()

	snaps := r.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(50), snaps[0].Requests)
}
