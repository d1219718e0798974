package service

import (
	"context"
	stdcontext "context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	channeldomain "github.com/smallbiznis/beacon/internal/channel/domain"
	channelrepo "github.com/smallbiznis/beacon/internal/channel/repository"
	"github.com/smallbiznis/beacon/internal/clock"
	"github.com/smallbiznis/beacon/internal/dispatcher"
	eventdomain "github.com/smallbiznis/beacon/internal/event/domain"
	messagedomain "github.com/smallbiznis/beacon/internal/message/domain"
	messagerepo "github.com/smallbiznis/beacon/internal/message/repository"
	messageservice "github.com/smallbiznis/beacon/internal/message/service"
	notificationdomain "github.com/smallbiznis/beacon/internal/notification/domain"
	notificationrepo "github.com/smallbiznis/beacon/internal/notification/repository"
	"github.com/smallbiznis/beacon/internal/occurrence/domain"
	occurrencerepo "github.com/smallbiznis/beacon/internal/occurrence/repository"
	orgdomain "github.com/smallbiznis/beacon/internal/org/domain"
	recipientdomain "github.com/smallbiznis/beacon/internal/recipient/domain"
	recipientrepo "github.com/smallbiznis/beacon/internal/recipient/repository"
	"github.com/smallbiznis/beacon/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	sent   []dispatcher.Payload
	failOn map[string]error
}

func (f *fakeDispatcher) Name() string { return "test" }

func (f *fakeDispatcher) Send(_ context.Context, p dispatcher.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[p.Address]; ok {
		return err
	}
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeDispatcher) sentTo(address string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.sent {
		if p.Address == address {
			count++
		}
	}
	return count
}

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	repo domain.Repository
	fake *fakeDispatcher
	proc domain.Processor

	org     orgdomain.Organization
	project orgdomain.Project
	app     orgdomain.Application
	event   eventdomain.Event
	list    recipientdomain.DistributionList
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	log := zap.NewNop()

	fake := &fakeDispatcher{failOn: map[string]error{}}
	registry := dispatcher.NewRegistry(fake)

	msgSvc := messageservice.NewService(messageservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  messagerepo.NewRepository(db),
	})

	occRepo := occurrencerepo.NewRepository(db)
	proc := NewProcessor(Params{
		DB:               db,
		Log:              log,
		Clock:            clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:             occRepo,
		NotificationRepo: notificationrepo.NewRepository(db),
		ChannelRepo:      channelrepo.NewRepository(db),
		RecipientRepo:    recipientrepo.NewRepository(db),
		MessageSvc:       msgSvc,
		Dispatchers:      registry,
	})

	f := &fixture{db: db, node: node, repo: occRepo, fake: fake, proc: proc}

	f.org = orgdomain.Organization{ID: node.Generate(), Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(&f.org).Error)

	f.project = orgdomain.Project{ID: node.Generate(), OrgID: f.org.ID, Name: "Shop", Slug: "shop"}
	require.NoError(t, db.Create(&f.project).Error)

	f.app = orgdomain.Application{ID: node.Generate(), ProjectID: f.project.ID, OrgID: f.org.ID, Name: "Storefront", Slug: "storefront"}
	require.NoError(t, db.Create(&f.app).Error)

	f.event = eventdomain.Event{
		ID:            node.Generate(),
		ApplicationID: f.app.ID,
		ProjectID:     f.project.ID,
		OrgID:         f.org.ID,
		Name:          "Order Placed",
		Slug:          "order-placed",
		Active:        true,
	}
	require.NoError(t, db.Create(&f.event).Error)

	f.list = recipientdomain.DistributionList{ID: node.Generate(), OrgID: f.org.ID, ProjectID: f.project.ID, Name: "Ops"}
	require.NoError(t, db.Create(&f.list).Error)

	return f
}

func (f *fixture) addChannel(t *testing.T, name string) channeldomain.Channel {
	t.Helper()
	channel := channeldomain.Channel{
		ID:         f.node.Generate(),
		OrgID:      f.org.ID,
		Name:       name,
		Dispatcher: "test",
		Config:     datatypes.JSONMap{},
		Active:     true,
	}
	require.NoError(t, f.db.Create(&channel).Error)
	require.NoError(t, f.db.Create(&eventdomain.EventChannel{EventID: f.event.ID, ChannelID: channel.ID}).Error)
	return channel
}

func (f *fixture) addAddress(t *testing.T, email string) recipientdomain.Address {
	t.Helper()
	user := recipientdomain.User{ID: f.node.Generate(), Email: email}
	require.NoError(t, f.db.Create(&user).Error)
	address := recipientdomain.Address{ID: f.node.Generate(), UserID: user.ID, Name: "primary", Value: email}
	require.NoError(t, f.db.Create(&address).Error)
	return address
}

func (f *fixture) addAssignment(t *testing.T, address recipientdomain.Address, channel channeldomain.Channel) recipientdomain.Assignment {
	t.Helper()
	assignment := recipientdomain.Assignment{
		ID:                 f.node.Generate(),
		DistributionListID: f.list.ID,
		AddressID:          address.ID,
		ChannelID:          channel.ID,
		Active:             true,
	}
	require.NoError(t, f.db.Create(&assignment).Error)
	return assignment
}

func (f *fixture) addNotification(t *testing.T, filter, extra datatypes.JSONMap) notificationdomain.Notification {
	t.Helper()
	if filter == nil {
		filter = datatypes.JSONMap{}
	}
	if extra == nil {
		extra = datatypes.JSONMap{}
	}
	notification := notificationdomain.Notification{
		ID:                 f.node.Generate(),
		EventID:            f.event.ID,
		DistributionListID: f.list.ID,
		Name:               "notify-ops",
		PayloadFilter:      filter,
		ExtraContext:       extra,
	}
	require.NoError(t, f.db.Create(&notification).Error)
	return notification
}

func (f *fixture) addTemplate(t *testing.T, channel channeldomain.Channel, subject, content string) {
	t.Helper()
	message := messagedomain.Message{
		ID:        f.node.Generate(),
		OrgID:     f.org.ID,
		ChannelID: channel.ID,
		Name:      "template",
		Subject:   subject,
		Content:   content,
		Context:   datatypes.JSONMap{},
	}
	require.NoError(t, f.db.Create(&message).Error)
}

func (f *fixture) trigger(t *testing.T, context datatypes.JSONMap, options domain.OccurrenceOptions) *domain.Occurrence {
	t.Helper()
	if context == nil {
		context = datatypes.JSONMap{}
	}
	occurrence := &domain.Occurrence{
		ID:            f.node.Generate(),
		EventID:       f.event.ID,
		Timestamp:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Context:       context,
		Options:       datatypes.NewJSONType(options),
		CorrelationID: "corr-1",
		Status:        domain.StatusNew,
		Attempts:      domain.DefaultAttempts,
	}
	require.NoError(t, f.repo.Create(stdcontext.Background(), occurrence))
	return occurrence
}

func (f *fixture) reload(t *testing.T, id snowflake.ID) *domain.Occurrence {
	t.Helper()
	occurrence, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, occurrence)
	return occurrence
}

func TestProcessDeliversAllAssignments(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	bob := f.addAddress(t, "bob@example.com")
	a1 := f.addAssignment(t, alice, channel)
	a2 := f.addAssignment(t, bob, channel)
	f.addNotification(t, nil, nil)
	f.addTemplate(t, channel, "{{ event }}", "Order {{ order_id }}")

	occ := f.trigger(t, datatypes.JSONMap{"order_id": "A-1"}, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, domain.StatusProcessed, got.Status)
	require.Equal(t, 2, got.Recipients)

	data := got.Data.Data()
	require.Equal(t, []snowflake.ID{a1.ID, a2.ID}, data.Delivered)
	require.Equal(t, []domain.DeliveredRecipient{
		{"alice@example.com", "mail"},
		{"bob@example.com", "mail"},
	}, data.Recipients)

	require.Len(t, f.fake.sent, 2)
	require.Equal(t, "Order Placed", f.fake.sent[0].Subject)
	require.Equal(t, "Order A-1", f.fake.sent[0].Text)
}

func TestProcessAbortsOnDispatchErrorAndResumes(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	bob := f.addAddress(t, "bob@example.com")
	a1 := f.addAssignment(t, alice, channel)
	a2 := f.addAssignment(t, bob, channel)
	f.addNotification(t, nil, nil)
	f.addTemplate(t, channel, "hi", "body")

	f.fake.failOn["bob@example.com"] = errors.New("smtp unreachable")

	occ := f.trigger(t, nil, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.False(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, domain.StatusNew, got.Status)
	require.Equal(t, []snowflake.ID{a1.ID}, got.Data.Data().Delivered)

	// Next run only dispatches the remaining assignment.
	delete(f.fake.failOn, "bob@example.com")
	completed, err = f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got = f.reload(t, occ.ID)
	require.Equal(t, domain.StatusProcessed, got.Status)
	require.Equal(t, []snowflake.ID{a1.ID, a2.ID}, got.Data.Data().Delivered)
	require.Equal(t, 1, f.fake.sentTo("alice@example.com"))
	require.Equal(t, 1, f.fake.sentTo("bob@example.com"))
}

func TestProcessMissingTemplateAborts(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	f.addAssignment(t, alice, channel)
	f.addNotification(t, nil, nil)

	occ := f.trigger(t, nil, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.False(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, domain.StatusNew, got.Status)
	require.Empty(t, got.Data.Data().Delivered)
	require.Empty(t, f.fake.sent)
}

func TestProcessLimitToRestrictsAddresses(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	bob := f.addAddress(t, "bob@example.com")
	a1 := f.addAssignment(t, alice, channel)
	f.addAssignment(t, bob, channel)
	f.addNotification(t, nil, nil)
	f.addTemplate(t, channel, "hi", "body")

	occ := f.trigger(t, nil, domain.OccurrenceOptions{LimitTo: []string{"alice@example.com"}})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, []snowflake.ID{a1.ID}, got.Data.Data().Delivered)
	require.Equal(t, 0, f.fake.sentTo("bob@example.com"))
}

func TestProcessChannelOptionRestrictsChannels(t *testing.T) {
	f := newFixture(t)
	mail := f.addChannel(t, "mail")
	chat := f.addChannel(t, "chat")
	alice := f.addAddress(t, "alice@example.com")
	f.addAssignment(t, alice, mail)
	f.addAssignment(t, alice, chat)
	f.addNotification(t, nil, nil)
	f.addTemplate(t, mail, "hi", "body")
	f.addTemplate(t, chat, "hi", "body")

	occ := f.trigger(t, nil, domain.OccurrenceOptions{Channels: []snowflake.ID{mail.ID}})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got := f.reload(t, occ.ID)
	data := got.Data.Data()
	require.Len(t, data.Delivered, 1)
	require.Equal(t, []domain.DeliveredRecipient{{"alice@example.com", "mail"}}, data.Recipients)
}

func TestProcessPayloadFilterSelectsNotifications(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	f.addAssignment(t, alice, channel)
	f.addNotification(t, datatypes.JSONMap{"severity": "critical"}, nil)
	f.addTemplate(t, channel, "hi", "body")

	occ := f.trigger(t, datatypes.JSONMap{"severity": "low"}, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, domain.StatusProcessed, got.Status)
	require.Empty(t, got.Data.Data().Delivered)
	require.Empty(t, f.fake.sent)
}

func TestProcessSkipsIdleChannelWithoutTemplate(t *testing.T) {
	f := newFixture(t)
	// The extra channel has no template and no assignments; it must not
	// block delivery on the channel that does have work.
	f.addChannel(t, "extra")
	mail := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	a1 := f.addAssignment(t, alice, mail)
	f.addNotification(t, nil, nil)
	f.addTemplate(t, mail, "hi", "body")

	occ := f.trigger(t, nil, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, domain.StatusProcessed, got.Status)
	require.Equal(t, []snowflake.ID{a1.ID}, got.Data.Data().Delivered)
	require.Equal(t, []domain.DeliveredRecipient{{"alice@example.com", "mail"}}, got.Data.Data().Recipients)
}

func TestProcessExcludesInactiveAssignments(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	bob := f.addAddress(t, "bob@example.com")
	a1 := f.addAssignment(t, alice, channel)
	inactive := recipientdomain.Assignment{
		ID:                 f.node.Generate(),
		DistributionListID: f.list.ID,
		AddressID:          bob.ID,
		ChannelID:          channel.ID,
		Active:             false,
	}
	require.NoError(t, f.db.Create(&inactive).Error)
	f.addNotification(t, nil, nil)
	f.addTemplate(t, channel, "hi", "body")

	occ := f.trigger(t, nil, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	got := f.reload(t, occ.ID)
	require.Equal(t, []snowflake.ID{a1.ID}, got.Data.Data().Delivered)
	require.Equal(t, 0, f.fake.sentTo("bob@example.com"))
}

func TestProcessExtraContextWinsOverTrigger(t *testing.T) {
	f := newFixture(t)
	channel := f.addChannel(t, "mail")
	alice := f.addAddress(t, "alice@example.com")
	f.addAssignment(t, alice, channel)
	f.addNotification(t, nil, datatypes.JSONMap{"tone": "urgent"})
	f.addTemplate(t, channel, "hi", "{{ tone }} for {{ event_slug }}")

	occ := f.trigger(t, datatypes.JSONMap{"tone": "calm"}, domain.OccurrenceOptions{})

	completed, err := f.proc.Process(context.Background(), occ.ID)
	require.NoError(t, err)
	require.True(t, completed)

	require.Len(t, f.fake.sent, 1)
	require.Equal(t, "urgent for order-placed", f.fake.sent[0].Text)
}
