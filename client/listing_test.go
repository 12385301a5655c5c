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

func TestFilterCurrent(t *testing.T) {
	now := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)

	events := []domain.Event{
		{ID: 1, Title: "En cours", StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(2 * time.Hour)},
		{ID: 2, Title: "Terminé", StartDate: now.Add(-8 * time.Hour), EndDate: now.Add(-1 * time.Hour)},
		{ID: 3, Title: "À venir", StartDate: now.Add(24 * time.Hour), EndDate: now.Add(30 * time.Hour)},
		// no end date, the start date decides
		{ID: 4, Title: "Sans fin, futur", StartDate: now.Add(1 * time.Hour)},
		{ID: 5, Title: "Sans fin, passé", StartDate: now.Add(-1 * time.Hour)},
	}

	visible := filterCurrent(events, now)

	ids := make([]int64, 0, len(visible))
	for _, e := range visible {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)
}

func TestListing_RefiltersWithoutRefetching(t *testing.T) {
	ctx := context.Background()
	c := newMockedClient(t)

	start := time.Now()
	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/events",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, successBody([]domain.Event{
				{ID: 1, Title: "Se termine bientôt", StartDate: start.Add(-time.Hour), EndDate: start.Add(200 * time.Millisecond)},
				{ID: 2, Title: "Continue", StartDate: start, EndDate: start.Add(24 * time.Hour)},
			}))
		})

	listing, err := c.NewListing(ctx, &dto.ListEventsQuery{})
	assert.NoError(t, err)
	defer listing.Stop()

	assert.Len(t, listing.Events(), 2)

	// drive the filter directly instead of waiting for the ticker
	time.Sleep(300 * time.Millisecond)
	listing.refilter()

	visible := listing.Events()
	assert.Len(t, visible, 1)
	assert.Equal(t, int64(2), visible[0].ID)

	// the snapshot was filtered locally, not refetched
	assert.Equal(t, 1, httpmock.GetCallCountInfo()["GET "+testBase+"/api/v1/marketplace/events"])
}

func TestListing_StopIsIdempotent(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/events",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, successBody([]domain.Event{}))
		})

	listing, err := c.NewListing(context.Background(), &dto.ListEventsQuery{})
	assert.NoError(t, err)

	listing.Stop()
	listing.Stop()
}
