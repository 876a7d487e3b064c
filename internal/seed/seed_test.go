package seed

import (
	"context"
	"io"
	"testing"

	"auditdesk/internal/audit"
	"auditdesk/internal/storage"
	"auditdesk/internal/store/memory"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsRepeatable(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.New()
	svc := audit.New(logger, store, storage.NewMemory())

	for range 2 {
		require.NoError(t, Users(ctx, logger, svc, "demo-password"))
		require.NoError(t, Engagements(ctx, logger, svc))
	}

	admin, err := store.UserByEmail(ctx, "admin@auditdesk.local")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, admin.Role)

	clients, err := svc.Clients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, len(demoEngagements))

	projects, err := svc.Projects(ctx, &types.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, projects, 3)

	items, err := svc.ChecklistItems(ctx, projects[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
