// Package trace loads and caches generator production traces. The cache
// is keyed by source identity so many generator instances of the same
// technology share one parse; loaded data is immutable. Fetch failures are
// fatal to the run and never retried: a partial or stale trace would
// silently corrupt results.
package trace

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultFetchTimeout bounds a single HTTP trace fetch.
const DefaultFetchTimeout = 5 * time.Second

// Cache is an externally-owned, read-only trace cache injected into
// generator construction.
type Cache struct {
	client *http.Client

	mu   sync.Mutex
	data map[string][][]float64
}

// NewCache returns an empty cache. A nil client gets a default with the
// standard fetch timeout.
func NewCache(client *http.Client) *Cache {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Cache{
		client: client,
		data:   make(map[string][][]float64),
	}
}

// Series returns one column of the trace identified by source, loading and
// caching the source on first use. The returned slice must be treated as
// read-only.
func (c *Cache) Series(ctx context.Context, source string, column int) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, ok := c.data[source]
	if !ok {
		var err error
		rows, err = c.load(ctx, source)
		if err != nil {
			return nil, err
		}
		c.data[source] = rows
	}

	series := make([]float64, len(rows))
	for i, row := range rows {
		if column < 0 || column >= len(row) {
			return nil, fmt.Errorf("trace %s: column %d out of range (row %d has %d)", source, column, i+1, len(row))
		}
		series[i] = row[column]
	}
	return series, nil
}

func (c *Cache) load(ctx context.Context, source string) ([][]float64, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", source, err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("trace fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("trace fetch %s: HTTP %d", source, resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", source, err)
		}
		body = f
	}
	defer body.Close()
	return parse(body, source)
}

// parse reads comma-separated trace rows, skipping '#' comments. Negative
// values are clamped to zero on load.
func parse(r io.Reader, source string) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	var rows [][]float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trace %s: %w", source, err)
		}
		row := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("trace %s: row %d column %d: %w", source, len(rows)+1, i+1, err)
			}
			if v < 0 {
				v = 0
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trace %s: empty trace", source)
	}
	return rows, nil
}
