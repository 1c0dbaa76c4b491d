package pgconsole

import (
	"context"
	"testing"
	"time"

	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "courierdesk_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/courierdesk_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestPGConsole_Flow(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()
	require.NoError(t, st.Ping(ctx))

	// key/value
	_, ok, err := st.GetValue(ctx, "auth_token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.SetValue(ctx, "auth_token", "t1"))
	require.NoError(t, st.SetValue(ctx, "auth_token", "t2"))
	v, ok, err := st.GetValue(ctx, "auth_token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t2", v)

	require.NoError(t, st.DeleteValue(ctx, "auth_token"))
	_, ok, err = st.GetValue(ctx, "auth_token")
	require.NoError(t, err)
	require.False(t, ok)

	// журнал переходов
	t0 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendTransition(ctx, models.TransitionRecord{
		ShipmentID: "S1", Action: "CONFIRM_BRANCH",
		From: models.StatusBooked, To: models.StatusBranchAssigned,
		Payload:   map[string]any{"branch_id": "B1", "vehicle_id": "V1"},
		CreatedAt: t0,
	}))
	require.NoError(t, st.AppendTransition(ctx, models.TransitionRecord{
		ShipmentID: "S1", Action: "SCHEDULE_PICKUP_SUCCESS",
		From: models.StatusBranchAssigned, To: models.StatusPickupScheduled,
		CreatedAt: t0.Add(time.Hour),
	}))
	require.NoError(t, st.AppendTransition(ctx, models.TransitionRecord{
		ShipmentID: "S2", Action: "CLOSE",
		From: models.StatusDeliveredSuccess, To: models.StatusClosed,
	}))

	recs, err := st.ListTransitions(ctx, "S1", 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, models.StatusPickupScheduled, recs[0].To)
	require.Nil(t, recs[0].Payload)
	require.Equal(t, map[string]any{"branch_id": "B1", "vehicle_id": "V1"}, recs[1].Payload)
	require.True(t, t0.Equal(recs[1].CreatedAt))
	require.NotEmpty(t, recs[1].ID)

	recs, err = st.ListTransitions(ctx, "S1", 1, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "CONFIRM_BRANCH", recs[0].Action)

	recs, err = st.ListTransitions(ctx, "nope", 0, -1)
	require.NoError(t, err)
	require.Empty(t, recs)
}
