package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	activitydomain "github.com/smallbiznis/addonhook/internal/activity/domain"
	"github.com/smallbiznis/addonhook/internal/activity/repository"
	"github.com/smallbiznis/addonhook/internal/clock"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockSlack struct {
	mock.Mock
}

func (m *mockSlack) PostMessage(ctx context.Context, channelID string, message string) error {
	args := m.Called(ctx, channelID, message)
	return args.Error(0)
}

func newService(t *testing.T, dsn string, slackProvider *mockSlack, channel string) (*gorm.DB, activitydomain.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&activitydomain.ActivityLog{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	p := Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
		Cfg:   config.Config{Slack: config.SlackConfig{Channel: channel}},
	}
	if slackProvider != nil {
		p.Slack = slackProvider
	}
	return db, NewService(p)
}

func storedEntries(t *testing.T, db *gorm.DB) []activitydomain.ActivityLog {
	t.Helper()
	var entries []activitydomain.ActivityLog
	require.NoError(t, db.Order("id ASC").Find(&entries).Error)
	return entries
}

func TestLogStoresActor(t *testing.T) {
	db, svc := newService(t, "file:activity_log?mode=memory&cache=shared", nil, "")
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, "admin", "Addon #42 cancelled"))
	require.NoError(t, svc.Log(ctx, "  ", "System entry"))
	assert.ErrorIs(t, svc.Log(ctx, "admin", " "), activitydomain.ErrEmptyMessage)

	entries := storedEntries(t, db)
	require.Len(t, entries, 2)

	byMessage := map[string]activitydomain.ActivityLog{}
	for _, e := range entries {
		byMessage[e.Message] = e
	}
	require.NotNil(t, byMessage["Addon #42 cancelled"].Username)
	assert.Equal(t, "admin", *byMessage["Addon #42 cancelled"].Username)
	assert.Nil(t, byMessage["System entry"].Username)
	assert.False(t, byMessage["System entry"].Failure)
}

func TestFailureAlertsOperators(t *testing.T) {
	alerts := &mockSlack{}
	alerts.On("PostMessage", mock.Anything, "C-BILLING", "Unable to cancel invoice #100").Return(nil).Once()

	db, svc := newService(t, "file:activity_failure?mode=memory&cache=shared", alerts, "C-BILLING")
	ctx := context.Background()

	require.NoError(t, svc.Failure(ctx, "Unable to cancel invoice #100"))
	alerts.AssertExpectations(t)

	entries := storedEntries(t, db)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Failure)
	assert.Nil(t, entries[0].Username)
}

func TestFailureWithoutChannelSkipsAlert(t *testing.T) {
	alerts := &mockSlack{}
	_, svc := newService(t, "file:activity_nochannel?mode=memory&cache=shared", alerts, "")

	require.NoError(t, svc.Failure(context.Background(), "Unable to update notes on addon #42"))
	alerts.AssertNotCalled(t, "PostMessage", mock.Anything, mock.Anything, mock.Anything)
}
