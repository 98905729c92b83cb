package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/pkg/jobs"
)

type syncedActivityRepo struct {
	mu      sync.Mutex
	entries []*models.ActivityEntry
}

func (s *syncedActivityRepo) Append(ctx context.Context, entry *models.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *syncedActivityRepo) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func TestActivityRecorderPersistsAsync(t *testing.T) {
	repo := &syncedActivityRepo{}
	recorder := NewActivityRecorder(repo, jobs.QueueConfig{Workers: 1}, zap.NewNop())
	recorder.Start(context.Background())
	defer recorder.Stop()

	err := recorder.Append(context.Background(), &models.ActivityEntry{
		UserID:      "t1",
		Type:        models.ActivityNotice,
		Description: "Published notice",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return repo.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestActivityRecorderRejectsWhenStopped(t *testing.T) {
	recorder := NewActivityRecorder(&syncedActivityRepo{}, jobs.QueueConfig{}, zap.NewNop())

	err := recorder.Append(context.Background(), &models.ActivityEntry{UserID: "t1", Type: models.ActivityAuth})
	require.Error(t, err)
}
