package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	eventdomain "github.com/smallbiznis/beacon/internal/event/domain"
	"github.com/smallbiznis/beacon/internal/occurrence/domain"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	"github.com/smallbiznis/beacon/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repoHarness struct {
	db    *gorm.DB
	node  *snowflake.Node
	repo  domain.Repository
	event eventdomain.Event
}

func newRepoHarness(t *testing.T) *repoHarness {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)

	org := orgdomain.Organization{ID: node.Generate(), Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(&org).Error)
	project := orgdomain.Project{ID: node.Generate(), OrgID: org.ID, Name: "Shop", Slug: "shop"}
	require.NoError(t, db.Create(&project).Error)
	app := orgdomain.Application{ID: node.Generate(), ProjectID: project.ID, OrgID: org.ID, Name: "Storefront", Slug: "storefront"}
	require.NoError(t, db.Create(&app).Error)
	event := eventdomain.Event{
		ID: node.Generate(), ApplicationID: app.ID, ProjectID: project.ID, OrgID: org.ID,
		Name: "Order Placed", Slug: "order-placed", Active: true,
	}
	require.NoError(t, db.Create(&event).Error)

	return &repoHarness{db: db, node: node, repo: NewRepository(db), event: event}
}

func (h *repoHarness) createOccurrence(t *testing.T, ts time.Time) *domain.Occurrence {
	t.Helper()
	occ := &domain.Occurrence{
		ID:        h.node.Generate(),
		EventID:   h.event.ID,
		Timestamp: ts,
		Context:   datatypes.JSONMap{},
		Status:    domain.StatusNew,
		Attempts:  domain.DefaultAttempts,
	}
	require.NoError(t, h.repo.Create(context.Background(), occ))
	return occ
}

func TestCreateDuplicateNaturalKey(t *testing.T) {
	h := newRepoHarness(t)
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h.createOccurrence(t, ts)

	dup := &domain.Occurrence{
		ID:        h.node.Generate(),
		EventID:   h.event.ID,
		Timestamp: ts,
		Context:   datatypes.JSONMap{},
		Status:    domain.StatusNew,
		Attempts:  domain.DefaultAttempts,
	}
	require.ErrorIs(t, h.repo.Create(context.Background(), dup), domain.ErrOccurrenceExists)
}

func TestGetByNaturalKey(t *testing.T) {
	h := newRepoHarness(t)
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	occ := h.createOccurrence(t, ts)

	got, err := h.repo.GetByNaturalKey(context.Background(), domain.NaturalKey{
		Timestamp:   ts,
		EventSlug:   "order-placed",
		AppSlug:     "storefront",
		ProjectSlug: "shop",
		OrgSlug:     "acme",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, occ.ID, got.ID)

	missing, err := h.repo.GetByNaturalKey(context.Background(), domain.NaturalKey{
		Timestamp:   ts,
		EventSlug:   "order-placed",
		AppSlug:     "storefront",
		ProjectSlug: "shop",
		OrgSlug:     "globex",
	})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestClaimLeasesAndSkipsHeldRows(t *testing.T) {
	h := newRepoHarness(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	first := h.createOccurrence(t, now)
	second := h.createOccurrence(t, now.Add(time.Second))

	claimed, err := h.repo.Claim(context.Background(), now, 5*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	require.Equal(t, first.ID, claimed[0].ID)
	require.Equal(t, second.ID, claimed[1].ID)

	// The lease hides both rows until it expires.
	claimed, err = h.repo.Claim(context.Background(), now.Add(time.Minute), 5*time.Minute, 10)
	require.NoError(t, err)
	require.Empty(t, claimed)

	claimed, err = h.repo.Claim(context.Background(), now.Add(6*time.Minute), 5*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)

	// Release makes a row immediately claimable again.
	require.NoError(t, h.repo.Release(context.Background(), first.ID))
	claimed, err = h.repo.Claim(context.Background(), now.Add(7*time.Minute), 5*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, first.ID, claimed[0].ID)
}

func TestClaimIgnoresTerminalAndExhaustedRows(t *testing.T) {
	h := newRepoHarness(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	processed := h.createOccurrence(t, now)
	exhausted := h.createOccurrence(t, now.Add(time.Second))
	pending := h.createOccurrence(t, now.Add(2*time.Second))

	require.NoError(t, h.repo.SetStatus(context.Background(), processed.ID, domain.StatusProcessed))
	require.NoError(t, h.db.Exec(`UPDATE occurrences SET attempts = 0 WHERE id = ?`, exhausted.ID).Error)

	claimed, err := h.repo.Claim(context.Background(), now, 5*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	require.Equal(t, pending.ID, claimed[0].ID)
}

func TestUpdateDataPersistsCheckpoint(t *testing.T) {
	h := newRepoHarness(t)
	occ := h.createOccurrence(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	data := domain.OccurrenceData{
		Delivered:  []snowflake.ID{1, 2},
		Recipients: []domain.DeliveredRecipient{{"a@example.com", "mail"}, {"b@example.com", "mail"}},
	}
	require.NoError(t, h.repo.UpdateData(context.Background(), occ.ID, data))

	got, err := h.repo.Get(context.Background(), occ.ID)
	require.NoError(t, err)
	require.Equal(t, data, got.Data.Data())
	require.Equal(t, 2, got.Recipients)
}

func TestDecrementAttempts(t *testing.T) {
	h := newRepoHarness(t)
	occ := h.createOccurrence(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	for want := domain.DefaultAttempts - 1; want >= 0; want-- {
		remaining, err := h.repo.DecrementAttempts(context.Background(), occ.ID)
		require.NoError(t, err)
		require.Equal(t, want, remaining)
	}

	// Already at zero; stays there.
	remaining, err := h.repo.DecrementAttempts(context.Background(), occ.ID)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}

func TestPurgeableHonorsRetention(t *testing.T) {
	h := newRepoHarness(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	old := h.createOccurrence(t, now.Add(-100*24*time.Hour))
	fresh := h.createOccurrence(t, now.Add(-time.Hour))
	require.NoError(t, h.db.Exec(`UPDATE occurrences SET updated_at = ? WHERE id = ?`, now.Add(-100*24*time.Hour), old.ID).Error)
	require.NoError(t, h.db.Exec(`UPDATE occurrences SET updated_at = ? WHERE id = ?`, now.Add(-time.Hour), fresh.ID).Error)

	ids, err := h.repo.Purgeable(context.Background(), now, 90, 100)
	require.NoError(t, err)
	require.Equal(t, []snowflake.ID{old.ID}, ids)

	deleted, err := h.repo.Delete(context.Background(), ids)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	got, err := h.repo.Get(context.Background(), old.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestPurgeablePerEventOverride(t *testing.T) {
	h := newRepoHarness(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Event keeps occurrences for 7 days only.
	require.NoError(t, h.db.Exec(`UPDATE events SET occurrence_retention = ? WHERE id = ?`, 7, h.event.ID).Error)

	occ := h.createOccurrence(t, now.Add(-10*24*time.Hour))
	require.NoError(t, h.db.Exec(`UPDATE occurrences SET updated_at = ? WHERE id = ?`, now.Add(-10*24*time.Hour), occ.ID).Error)

	ids, err := h.repo.Purgeable(context.Background(), now, 90, 100)
	require.NoError(t, err)
	require.Equal(t, []snowflake.ID{occ.ID}, ids)
}

func TestPurgeableScansPastRetainedRows(t *testing.T) {
	h := newRepoHarness(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Three 10-day-old occurrences retained under the 30-day default fill
	// an entire batch; the purgeable row behind them must still be found.
	age := func(id snowflake.ID, days int) {
		require.NoError(t, h.db.Exec(
			`UPDATE occurrences SET updated_at = ? WHERE id = ?`,
			now.Add(-time.Duration(days)*24*time.Hour), id,
		).Error)
	}
	for i := 0; i < 3; i++ {
		retained := h.createOccurrence(t, now.Add(time.Duration(i)*time.Second))
		age(retained.ID, 10)
	}

	short := eventdomain.Event{
		ID: h.node.Generate(), ApplicationID: h.event.ApplicationID,
		ProjectID: h.event.ProjectID, OrgID: h.event.OrgID,
		Name: "Cart Abandoned", Slug: "cart-abandoned", Active: true,
	}
	require.NoError(t, h.db.Create(&short).Error)
	require.NoError(t, h.db.Exec(`UPDATE events SET occurrence_retention = ? WHERE id = ?`, 1, short.ID).Error)

	stale := &domain.Occurrence{
		ID:        h.node.Generate(),
		EventID:   short.ID,
		Timestamp: now,
		Context:   datatypes.JSONMap{},
		Status:    domain.StatusNew,
		Attempts:  domain.DefaultAttempts,
	}
	require.NoError(t, h.repo.Create(context.Background(), stale))
	age(stale.ID, 5)

	ids, err := h.repo.Purgeable(context.Background(), now, 30, 3)
	require.NoError(t, err)
	require.Equal(t, []snowflake.ID{stale.ID}, ids)
}
