//go:build integration

package store_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"auditdesk/internal/audit"
	"auditdesk/internal/db"
	"auditdesk/internal/storage"
	"auditdesk/internal/store"
	"auditdesk/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *types.Config {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "audit",
				"POSTGRES_PASSWORD": "audit",
				"POSTGRES_DB":       "auditdesk",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &types.Config{
		DatabaseURL:    fmt.Sprintf("postgres://audit:audit@%s:%s/auditdesk?sslmode=disable", host, port.Port()),
		DatabaseSchema: "auditdesk",
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	config := startPostgres(t)

	pool, err := db.Connect(ctx, config)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, config.DatabaseSchema))
	require.NoError(t, db.Migrate(ctx, pool, config.DatabaseSchema), "migrate is idempotent")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repos := store.New(pool)
	var _ audit.Store = repos

	svc := audit.New(logger, repos, storage.NewMemory())

	senior, err := svc.RegisterUser(ctx, &audit.NewUser{Email: "senior@example.com", Password: "password123", FirstName: "Sam", LastName: "Senior", Role: types.RoleSeniorAuditor})
	require.NoError(t, err)

	_, err = svc.RegisterUser(ctx, &audit.NewUser{Email: "SENIOR@example.com", Password: "password123", FirstName: "S", LastName: "S"})
	require.ErrorIs(t, err, types.ErrConflict)

	client, err := svc.CreateClient(ctx, &audit.NewClient{LegalName: "Acme Holdings Ltd"})
	require.NoError(t, err)
	require.Equal(t, "CL-1001", client.Code)

	project, err := svc.CreateProject(ctx, &audit.NewProject{ClientID: client.ID, ProjectType: "Tax Audit", TeamLeadID: &senior.ID})
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("CL-1001-TA-%d-01", time.Now().UTC().Year()), project.Code)
	require.Equal(t, "Sam Senior", project.TeamLeadName)

	require.ErrorIs(t, svc.DeleteClient(ctx, client.ID), types.ErrConflict)

	items, err := svc.BulkCreateChecklistItems(ctx, project.ID, []*types.NewChecklistItem{
		{Code: "20-10", Title: "Time summary", AssignedTo: &senior.ID},
		{Code: "20-4a", Title: "Independence letter"},
		{Code: "20-4", Title: "Independence form"},
	})
	require.NoError(t, err)

	_, err = svc.BulkCreateChecklistItems(ctx, project.ID, []*types.NewChecklistItem{
		{Code: "30-1", Title: "Final analytics", AssignedTo: &senior.ID},
		{Code: "30-2", Title: ""},
	})
	require.ErrorIs(t, err, types.ErrValidation)

	listed, err := svc.ChecklistItems(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, []string{"20-4", "20-4a", "20-10"}, []string{listed[0].Code, listed[1].Code, listed[2].Code})
	require.Equal(t, "Sam Senior", *listed[2].AssignedToName)

	// Concurrent toggles of different columns must all land.
	var wg sync.WaitGroup
	for _, column := range []types.SignOffColumn{types.SignOffSenior, types.SignOffEQR, types.SignOffPartner} {
		wg.Add(1)
		go func(column types.SignOffColumn) {
			defer wg.Done()
			_, err := svc.ToggleSignOff(ctx, items[0].ID, column)
			assert.NoError(t, err)
		}(column)
	}
	wg.Wait()

	toggled, err := svc.ChecklistItem(ctx, items[0].ID)
	require.NoError(t, err)
	require.True(t, toggled.SeniorReview && toggled.EQRReview && toggled.PartnerReview)

	signed, err := svc.FinalSignOff(ctx, items[1].ID, senior.ID)
	require.NoError(t, err)
	require.Equal(t, types.ChecklistStatusCompleted, signed.Status)
	require.NotNil(t, signed.SignOffDate)

	pending, err := svc.PendingTasks(ctx, senior.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "Acme Holdings Ltd", *pending[0].ClientName)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, summary.TotalProjects)
	require.Equal(t, 2, summary.PendingChecklists)

	workload, err := svc.TeamWorkload(ctx)
	require.NoError(t, err)
	require.Len(t, workload, 1)
	require.Equal(t, 1, workload[0].AssignedChecklists)

	activity, err := svc.ProjectActivity(ctx)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	require.Equal(t, 3, activity[0].TotalChecklists)
	require.Equal(t, 1, activity[0].CompletedChecklists)

	require.NoError(t, svc.DeleteProject(ctx, project.ID))
	_, err = svc.ChecklistItem(ctx, items[0].ID)
	require.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, svc.DeleteClient(ctx, client.ID))
}
