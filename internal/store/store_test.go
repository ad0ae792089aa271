package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/lease-intake/internal/entity"
)

func contractAt(name string, t time.Time) entity.Contract {
	return entity.Contract{ID: uuid.Must(uuid.NewV7()), FileName: name, UploadedAt: t}
}

func TestSaveGetDelete(t *testing.T) {
	s := NewContractStore(0, nil)
	c := contractAt("a.pdf", time.Now())
	s.Save(c)

	got, ok := s.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, "a.pdf", got.FileName)

	deleted, ok := s.Delete(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, deleted.ID)

	_, ok = s.Delete(c.ID)
	assert.False(t, ok)
	assert.Zero(t, s.Count())
}

func TestListOrderedByUpload(t *testing.T) {
	s := NewContractStore(0, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Save(contractAt("late", base.Add(time.Hour)), contractAt("early", base))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].FileName)
	assert.Equal(t, "late", list[1].FileName)
}

func TestEvictsOldest(t *testing.T) {
	s := NewContractStore(2, nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := contractAt("first", base)
	assert.Empty(t, s.Save(first))
	assert.Empty(t, s.Save(contractAt("second", base.Add(time.Minute))))
	evicted := s.Save(contractAt("third", base.Add(2*time.Minute)))

	require.Len(t, evicted, 1)
	assert.Equal(t, first.ID, evicted[0].ID)
	assert.Equal(t, 2, s.Count())
	_, ok := s.Get(first.ID)
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewContractStore(0, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Save(contractAt("x", time.Now()))
		}()
		go func() {
			defer wg.Done()
			_ = s.List()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Count())
}
