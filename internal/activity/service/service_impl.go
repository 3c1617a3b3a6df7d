package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/smallbiznis/addonhook/internal/activity/domain"
	"github.com/smallbiznis/addonhook/internal/clock"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/providers/slack"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  activitydomain.Repository
	Cfg   config.Config
	Slack slack.Provider `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         activitydomain.Repository
	slack        slack.Provider
	alertChannel string
}

func NewService(p Params) activitydomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("activity.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		slack:        p.Slack,
		alertChannel: p.Cfg.Slack.Channel,
	}
}

func (s *Service) Log(ctx context.Context, username string, message string) error {
	return s.record(ctx, username, message, false)
}

func (s *Service) Failure(ctx context.Context, message string) error {
	if err := s.record(ctx, "", message, true); err != nil {
		return err
	}
	if s.slack != nil && s.alertChannel != "" {
		if err := s.slack.PostMessage(ctx, s.alertChannel, message); err != nil {
			s.log.Warn("failed to post activity alert", zap.String("channel", s.alertChannel), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, username string, message string, failure bool) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return activitydomain.ErrEmptyMessage
	}

	entry := activitydomain.ActivityLog{
		ID:        s.genID.Generate(),
		Username:  normalizeUsername(username),
		Message:   message,
		Failure:   failure,
		CreatedAt: s.clock.Now(),
	}

	level := s.log.Info
	if failure {
		level = s.log.Warn
	}
	level("activity", zap.String("message", message), zap.Bool("failure", failure))

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Error("failed to write activity log", zap.String("message", message), zap.Error(err))
		return err
	}
	return nil
}

func normalizeUsername(username string) *string {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
