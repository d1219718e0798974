package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/beacon/internal/clock"
	"github.com/smallbiznis/beacon/internal/event/domain"
	"github.com/smallbiznis/beacon/internal/event/repository"
	occurrencedomain "github.com/smallbiznis/beacon/internal/occurrence/domain"
	occurrencerepo "github.com/smallbiznis/beacon/internal/occurrence/repository"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	orgrepo "github.com/smallbiznis/beacon/internal/org/repository"
	"github.com/smallbiznis/beacon/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
	app   orgdomain.Application
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	org := orgdomain.Organization{ID: node.Generate(), Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(&org).Error)
	project := orgdomain.Project{ID: node.Generate(), OrgID: org.ID, Name: "Shop", Slug: "shop"}
	require.NoError(t, db.Create(&project).Error)
	app := orgdomain.Application{ID: node.Generate(), ProjectID: project.ID, OrgID: org.ID, Name: "Storefront", Slug: "storefront"}
	require.NoError(t, db.Create(&app).Error)

	svc := NewService(Params{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          fakeClock,
		Repo:           repository.NewRepository(db),
		OrgRepo:        orgrepo.NewRepository(db),
		OccurrenceRepo: occurrencerepo.NewRepository(db),
	})
	return &harness{svc: svc, db: db, clock: fakeClock, app: app}
}

func (h *harness) createEvent(t *testing.T, name string) *domain.Event {
	t.Helper()
	event, err := h.svc.Create(context.Background(), domain.CreateRequest{
		ApplicationID: h.app.ID.String(),
		Name:          name,
	})
	require.NoError(t, err)
	return event
}

func TestCreateEventDerivesScope(t *testing.T) {
	h := newHarness(t)

	event := h.createEvent(t, "Order Placed")
	require.Equal(t, "order-placed", event.Slug)
	require.Equal(t, h.app.OrgID, event.OrgID)
	require.Equal(t, h.app.ProjectID, event.ProjectID)
	require.True(t, event.Active)
}

func TestTriggerCreatesOccurrence(t *testing.T) {
	h := newHarness(t)
	event := h.createEvent(t, "Order Placed")

	occ, err := h.svc.Trigger(context.Background(), domain.TriggerRequest{
		EventID: event.ID.String(),
		Context: map[string]any{"order_id": "A-1"},
	})
	require.NoError(t, err)
	require.Equal(t, occurrencedomain.StatusNew, occ.Status)
	require.Equal(t, occurrencedomain.DefaultAttempts, occ.Attempts)
	require.NotEmpty(t, occ.CorrelationID)
	require.Equal(t, h.clock.Now(), occ.Timestamp)
}

func TestTriggerKeepsCallerCorrelationID(t *testing.T) {
	h := newHarness(t)
	event := h.createEvent(t, "Order Placed")

	occ, err := h.svc.Trigger(context.Background(), domain.TriggerRequest{
		EventID:       event.ID.String(),
		CorrelationID: "req-42",
	})
	require.NoError(t, err)
	require.Equal(t, "req-42", occ.CorrelationID)
}

func TestTriggerDuplicateTimestampConflicts(t *testing.T) {
	h := newHarness(t)
	event := h.createEvent(t, "Order Placed")

	_, err := h.svc.Trigger(context.Background(), domain.TriggerRequest{EventID: event.ID.String()})
	require.NoError(t, err)

	// Same event, same frozen clock: the (event, timestamp) key collides.
	_, err = h.svc.Trigger(context.Background(), domain.TriggerRequest{EventID: event.ID.String()})
	require.ErrorIs(t, err, occurrencedomain.ErrOccurrenceExists)

	h.clock.Advance(time.Second)
	_, err = h.svc.Trigger(context.Background(), domain.TriggerRequest{EventID: event.ID.String()})
	require.NoError(t, err)
}

func TestTriggerInactiveEvent(t *testing.T) {
	h := newHarness(t)
	event := h.createEvent(t, "Order Placed")
	require.NoError(t, h.db.Exec(`UPDATE events SET active = ? WHERE id = ?`, false, event.ID).Error)

	_, err := h.svc.Trigger(context.Background(), domain.TriggerRequest{EventID: event.ID.String()})
	require.ErrorIs(t, err, domain.ErrEventInactive)
}

func TestTriggerUnknownEvent(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Trigger(context.Background(), domain.TriggerRequest{EventID: "999"})
	require.ErrorIs(t, err, domain.ErrEventNotFound)
}
