package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/addonhook/internal/actor"
	addondomain "github.com/smallbiznis/addonhook/internal/addon/domain"
	cancellationdomain "github.com/smallbiznis/addonhook/internal/cancellation/domain"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/observability/metrics"
	"go.uber.org/zap"
)

// NoteLine formats the audit line written to the addon notes.
func NoteLine(username string, at time.Time, layout string, ticket string) string {
	line := fmt.Sprintf("Addon cancelled by %s on %s", username, at.Format(layout))
	if ticket = strings.TrimSpace(ticket); ticket != "" {
		line += " through ticket " + ticket
	}
	return line
}

// AppendNote adds line to notes on a new line.
func AppendNote(notes string, line string) string {
	return notes + "\n" + line
}

func (s *Service) appendNote(ctx context.Context, log *zap.Logger, cfg config.HookConfig, by actor.Actor, addon *addondomain.Addon, report *cancellationdomain.Report) {
	ticket, err := s.addons.FindCustomFieldValue(ctx, s.db, cfg.TicketFieldName, addon.AddonID, addon.ID)
	if err != nil {
		log.Warn("ticket lookup failed, writing note without ticket",
			zap.String("field", cfg.TicketFieldName),
			zap.Error(err),
		)
		ticket = ""
	}

	line := NoteLine(by.Name(), s.clock.Now(), cfg.NoteDateFormat, ticket)
	notes := AppendNote(addon.Notes, line)
	report.Note = line

	if err := s.addons.UpdateNotes(ctx, s.db, addon.ID, notes, s.clock.Now()); err != nil {
		s.recordFailure(ctx, log, metrics.StepNotes,
			fmt.Sprintf("Unable to update notes on addon #%d. Reason: %v", addon.ID, err), err)
		return
	}
	addon.Notes = notes
	report.NoteAppended = true
}
