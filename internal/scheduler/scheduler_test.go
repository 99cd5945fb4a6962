package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shroomtrack/internal/config"
	"github.com/mamadbah2/shroomtrack/internal/domain/models"
	"github.com/mamadbah2/shroomtrack/internal/service/legacysync"
)

type stubMirror struct {
	calls int
	src   legacysync.Snapshotter
}

func (m *stubMirror) Mirror(_ context.Context, src legacysync.Snapshotter) (legacysync.Summary, error) {
	m.calls++
	m.src = src
	return legacysync.Summary{}, nil
}

type stubSnapshot struct{}

func (stubSnapshot) Snapshot(context.Context) (models.SyncPayload, error) {
	return models.SyncPayload{}, nil
}

type stubSummary struct{ err error }

func (s stubSummary) WeeklySummary(context.Context, time.Time) (string, error) {
	return "Weekly summary", s.err
}

type stubSender struct{ to, body string }

func (s *stubSender) SendText(_ context.Context, to, body string) (string, error) {
	s.to, s.body = to, body
	return "wamid", nil
}

func testConfig() config.Config {
	return config.Config{
		Reporting: config.ReportingConfig{MirrorSchedule: "0 2 * * *", ReportSchedule: "0 20 * * 0", Timezone: "Africa/Conakry"},
		WhatsApp:  config.WhatsAppConfig{ReportTo: "224620000000"},
	}
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.Timezone = "Mars/Olympus"

	_, err := NewScheduler(cfg, Jobs{}, nil)

	assert.ErrorContains(t, err, "Mars/Olympus")
}

func TestStartRegistersEnabledJobs(t *testing.T) {
	s, err := NewScheduler(testConfig(), Jobs{
		Mirror:   &stubMirror{},
		Snapshot: stubSnapshot{},
		Summary:  stubSummary{},
		Sender:   &stubSender{},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 2)
}

func TestStartSkipsReportWithoutRecipient(t *testing.T) {
	cfg := testConfig()
	cfg.WhatsApp.ReportTo = ""
	s, err := NewScheduler(cfg, Jobs{Summary: stubSummary{}, Sender: &stubSender{}}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Empty(t, s.cron.Entries())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Reporting.MirrorSchedule = "every night"
	s, err := NewScheduler(cfg, Jobs{Mirror: &stubMirror{}, Snapshot: stubSnapshot{}}, nil)
	require.NoError(t, err)

	assert.ErrorContains(t, s.Start(), "schedule mirror")
}

func TestJobsRunAgainstCollaborators(t *testing.T) {
	mirror := &stubMirror{}
	sender := &stubSender{}
	s, err := NewScheduler(testConfig(), Jobs{Mirror: mirror, Snapshot: stubSnapshot{}, Summary: stubSummary{}, Sender: sender}, nil)
	require.NoError(t, err)

	s.mirror()
	s.sendWeeklyReport()

	assert.Equal(t, 1, mirror.calls)
	assert.Equal(t, stubSnapshot{}, mirror.src)
	assert.Equal(t, "224620000000", sender.to)
	assert.Equal(t, "Weekly summary", sender.body)
}

func TestWeeklyReportNotSentOnFailure(t *testing.T) {
	sender := &stubSender{}
	s, err := NewScheduler(testConfig(), Jobs{Summary: stubSummary{err: errors.New("mongo down")}, Sender: sender}, nil)
	require.NoError(t, err)

	s.sendWeeklyReport()

	assert.Empty(t, sender.to)
}
