package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

func newLoadedEditor(t *testing.T, existing []domain.EventReminder) (*ReminderEditor, *Client) {
	t.Helper()
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/events/7/reminders",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, successBody(existing))
		})

	ed, err := c.NewReminderEditor(context.Background(), 7)
	assert.NoError(t, err)
	return ed, c
}

func TestReminderEditor_Diff(t *testing.T) {
	base := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	existing := []domain.EventReminder{
		{ID: 1, EventID: 7, ScheduledAt: base, Message: "Demain !"},
		{ID: 2, EventID: 7, ScheduledAt: base.Add(6 * time.Hour), Message: "Dans 6 heures"},
		{ID: 3, EventID: 7, ScheduledAt: base.Add(9 * time.Hour), Message: "Dernier rappel"},
	}

	t.Run("untouched rows produce an empty diff", func(t *testing.T) {
		ed, _ := newLoadedEditor(t, existing)
		diff := ed.Diff()
		assert.True(t, diff.Empty())
	})

	t.Run("classifies create, update and delete in one pass", func(t *testing.T) {
		ed, _ := newLoadedEditor(t, existing)

		// row 1 untouched, row 2 rescheduled, row 3 removed, one new row
		ed.Set(1, dto.ReminderInput{ScheduledAt: base.Add(3 * time.Hour), Message: "Dans 6 heures"})
		ed.Remove(2)
		ed.Add(dto.ReminderInput{ScheduledAt: base.Add(12 * time.Hour), Message: "C'est parti"})

		diff := ed.Diff()
		assert.Len(t, diff.Creates, 1)
		assert.Len(t, diff.Updates, 1)
		assert.Len(t, diff.Deletes, 1)
		assert.Equal(t, int64(2), *diff.Updates[0].ID)
		assert.Equal(t, int64(3), diff.Deletes[0])
		assert.Nil(t, diff.Creates[0].ID)
	})

	t.Run("message-only change is an update", func(t *testing.T) {
		ed, _ := newLoadedEditor(t, existing)
		ed.Set(0, dto.ReminderInput{ScheduledAt: base, Message: "Demain soir !"})

		diff := ed.Diff()
		assert.Len(t, diff.Updates, 1)
		assert.Empty(t, diff.Creates)
		assert.Empty(t, diff.Deletes)
	})

	t.Run("clearing everything deletes every snapshot row", func(t *testing.T) {
		ed, _ := newLoadedEditor(t, existing)
		ed.Remove(0)
		ed.Remove(0)
		ed.Remove(0)

		diff := ed.Diff()
		assert.Empty(t, diff.Creates)
		assert.Empty(t, diff.Updates)
		assert.Len(t, diff.Deletes, 3)
	})
}

func TestReminderEditor_Save(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	existing := []domain.EventReminder{
		{ID: 1, EventID: 7, ScheduledAt: base, Message: "Demain !"},
		{ID: 2, EventID: 7, ScheduledAt: base.Add(6 * time.Hour), Message: "Dans 6 heures"},
	}

	t.Run("empty diff makes no calls", func(t *testing.T) {
		ed, c := newLoadedEditor(t, existing)
		httpmock.ZeroCallCounters()

		diff, err := ed.Save(ctx, c)
		assert.NoError(t, err)
		assert.True(t, diff.Empty())
		assert.Equal(t, 0, httpmock.GetTotalCallCount())
	})

	t.Run("exactly one call per changed row", func(t *testing.T) {
		ed, c := newLoadedEditor(t, existing)

		ed.Set(1, dto.ReminderInput{ScheduledAt: base.Add(3 * time.Hour), Message: "Dans 6 heures"})
		ed.Remove(0)
		ed.Add(dto.ReminderInput{ScheduledAt: base.Add(12 * time.Hour), Message: "Nouveau"})

		httpmock.RegisterResponder(http.MethodDelete, testBase+"/api/v1/events/7/reminders/1",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusOK, successBody(map[string]string{"message": "Reminder deleted successfully"}))
			})
		httpmock.RegisterResponder(http.MethodPut, testBase+"/api/v1/events/7/reminders/2",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusOK, successBody(domain.EventReminder{ID: 2}))
			})
		httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/events/7/reminders",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusCreated, successBody(domain.EventReminder{ID: 9}))
			})

		httpmock.ZeroCallCounters()
		diff, err := ed.Save(ctx, c)
		assert.NoError(t, err)
		assert.Len(t, diff.Creates, 1)
		assert.Len(t, diff.Updates, 1)
		assert.Len(t, diff.Deletes, 1)

		calls := httpmock.GetCallCountInfo()
		assert.Equal(t, 1, calls["DELETE "+testBase+"/api/v1/events/7/reminders/1"])
		assert.Equal(t, 1, calls["PUT "+testBase+"/api/v1/events/7/reminders/2"])
		assert.Equal(t, 1, calls["POST "+testBase+"/api/v1/events/7/reminders"])
		// one reload at the end, nothing else
		assert.Equal(t, 4, httpmock.GetTotalCallCount())
	})
}
