package pipeline

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/lease-intake/internal/common"
	"github.com/joseph-ayodele/lease-intake/internal/entity"
	"github.com/joseph-ayodele/lease-intake/internal/llm"
	"github.com/joseph-ayodele/lease-intake/internal/rules"
)

type collected struct {
	mu        sync.Mutex
	contracts []entity.Contract
	errs      []error
}

func (c *collected) add(_ Job, ct entity.Contract, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errs = append(c.errs, err)
		return
	}
	c.contracts = append(c.contracts, ct)
}

func TestQueueProcessesAndDrains(t *testing.T) {
	p := NewProcessor(&fakeExtractor{}, &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}, nil, rules.DefaultLimits(), nil)
	var got collected
	q := NewQueue(p, got.add, nil, WithWorkers(3), WithQueueSize(1))

	names := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	for _, n := range names {
		require.NoError(t, q.Enqueue(context.Background(), Job{File: file(n, 10), Source: "/in/" + n}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.Shutdown(ctx))

	require.Len(t, got.contracts, len(names))
	var processed []string
	for _, c := range got.contracts {
		assert.False(t, c.Failed())
		processed = append(processed, c.FileName)
	}
	sort.Strings(processed)
	assert.Equal(t, names, processed)
}

func TestQueueReportsRejectedFiles(t *testing.T) {
	p := NewProcessor(&fakeExtractor{}, &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}, nil, rules.DefaultLimits(), nil)
	var got collected
	q := NewQueue(p, got.add, nil)

	require.NoError(t, q.Enqueue(context.Background(), Job{File: file("notes.exe", 10)}))
	require.NoError(t, q.Shutdown(context.Background()))

	require.Len(t, got.errs, 1)
	assert.ErrorIs(t, got.errs[0], common.ErrValidation)
	assert.Empty(t, got.contracts)
}

func TestQueueEnqueueAfterShutdown(t *testing.T) {
	p := NewProcessor(&fakeExtractor{}, &fakeAnalyzer{outcome: llm.Ok(goodAnalysis())}, nil, rules.DefaultLimits(), nil)
	q := NewQueue(p, nil, nil)
	require.NoError(t, q.Shutdown(context.Background()))
	require.NoError(t, q.Shutdown(context.Background()))

	err := q.Enqueue(context.Background(), Job{File: file("a.txt", 10)})
	assert.ErrorIs(t, err, ErrQueueClosed)
}
