package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/pjecz/casiopea/internal/database/testutil"
	"github.com/pjecz/casiopea/internal/models"
	"github.com/pjecz/casiopea/internal/services"
)

type stubPruner struct {
	calls   int
	removed int64
	err     error
}

func (s *stubPruner) CleanupOlderThan(_ context.Context, _ int) (int64, error) {
	s.calls++
	return s.removed, s.err
}

func TestCleanerDisabledWithoutRetention(t *testing.T) {
	c := cron.New()
	cleaner := NewCleaner(&stubPruner{}, 0, WithCron(c))

	require.False(t, cleaner.Enabled())
	require.NoError(t, cleaner.Start())
	require.Empty(t, c.Entries())

	_, err := cleaner.RunOnce(context.Background())
	require.Error(t, err)
}

func TestCleanerStartRegistersJob(t *testing.T) {
	c := cron.New()
	cleaner := NewCleaner(&stubPruner{}, 30, WithCron(c), WithAuditSchedule("@every 1h"))

	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.Start())
	require.Len(t, c.Entries(), 1)

	<-cleaner.Stop().Done()
}

func TestCleanerStopWithoutStartFinishes(t *testing.T) {
	for _, cleaner := range []*Cleaner{
		NewCleaner(&stubPruner{}, 0),
		NewCleaner(&stubPruner{}, 30, WithAuditSchedule("cada martes")),
	} {
		_ = cleaner.Start()
		select {
		case <-cleaner.Stop().Done():
		case <-time.After(5 * time.Second):
			t.Fatal("stop context never finished")
		}
	}
}

func TestCleanerRejectsBadSchedule(t *testing.T) {
	cleaner := NewCleaner(&stubPruner{}, 30, WithAuditSchedule("cada martes"))
	require.Error(t, cleaner.Start())
}

func TestCleanerRunOncePropagatesErrors(t *testing.T) {
	pruner := &stubPruner{err: errors.New("db down")}
	cleaner := NewCleaner(pruner, 30)

	_, err := cleaner.RunOnce(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, pruner.calls)
}

func TestCleanerPrunesAuditService(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	audit, err := services.NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, audit.Log(ctx, services.AuditEntry{ModuleName: "ROLES", Description: "Nuevo Rol ANTIGUO"}))
	require.NoError(t, audit.Log(ctx, services.AuditEntry{ModuleName: "ROLES", Description: "Nuevo Rol ACTUAL"}))
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("description = ?", "Nuevo Rol ANTIGUO").
		Update("created_at", time.Now().UTC().AddDate(-1, 0, 0)).Error)

	removed, err := NewCleaner(audit, 180).RunOnce(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}
