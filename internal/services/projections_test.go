package services

import (
	"context"
	"testing"

	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionsEmpty(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	feed, err := FeedFor(ctx, db, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, feed)
	assert.Empty(t, feed)

	for name, fn := range map[string]func(context.Context, string) ([]ConnectionView, error){
		"liked":      func(ctx context.Context, id string) ([]ConnectionView, error) { return LikedByMe(ctx, db, id) },
		"interested": func(ctx context.Context, id string) ([]ConnectionView, error) { return InterestedInMe(ctx, db, id) },
		"passed":     func(ctx context.Context, id string) ([]ConnectionView, error) { return PassedBy(ctx, db, id) },
		"requests":   func(ctx context.Context, id string) ([]ConnectionView, error) { return RequestsFor(ctx, db, id) },
		"connections": func(ctx context.Context, id string) ([]ConnectionView, error) {
			return ConnectionsFor(ctx, db, id, "")
		},
	} {
		views, err := fn(ctx, "nobody")
		require.NoError(t, err, name)
		assert.NotNil(t, views, name)
		assert.Empty(t, views, name)
	}

	groups, err := LikedIdeasByInvestor(ctx, db, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestFeedFor(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "ben")
	other := testutil.Investor(t, db, "cat")

	liked := testutil.Idea(t, db, founder, "liked")
	passed := testutil.Idea(t, db, founder, "passed")
	deleted := testutil.Idea(t, db, founder, "deleted")
	fresh := testutil.Idea(t, db, founder, "fresh")
	newest := testutil.Idea(t, db, founder, "newest")

	testutil.Connection(t, db, investor, liked, models.StatusRequested)
	testutil.Connection(t, db, investor, passed, models.StatusBlocked)
	testutil.Connection(t, db, other, fresh, models.StatusCurious)
	_, err := SoftDeleteIdea(ctx, db, founder.ID, deleted.ID)
	require.NoError(t, err)

	feed, err := FeedFor(ctx, db, investor.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newest.ID, feed[0].ID)
	assert.Equal(t, fresh.ID, feed[1].ID)
	require.NotNil(t, feed[0].Founder)
	assert.Equal(t, "ada", feed[0].Founder.Name)
	assert.Equal(t, models.RoleFounder, feed[0].Founder.Role)
}

func TestFeedForSkipsOwnAndNonFounderIdeas(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ada := testutil.Founder(t, db, "ada")
	bob := testutil.Founder(t, db, "bob")
	investor := testutil.Investor(t, db, "ben")

	adaIdea := testutil.Idea(t, db, ada, "ada's idea")
	bobIdea := testutil.Idea(t, db, bob, "bob's idea")

	// ada switches to investing; her idea leaves every feed
	ada.Role = models.RoleInvestor
	ada.PhotoURL = strPtr("https://example.com/ada.png")
	_, err := UpsertProfile(ctx, db, ada)
	require.NoError(t, err)

	feed, err := FeedFor(ctx, db, ada.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, bobIdea.ID, feed[0].ID)

	feed, err = FeedFor(ctx, db, investor.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, bobIdea.ID, feed[0].ID)
	assert.NotEqual(t, adaIdea.ID, feed[0].ID)
}

func TestConnectionsForStatusFilter(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "ben")

	pending := testutil.Connection(t, db, investor, testutil.Idea(t, db, founder, "one"), models.StatusPending)
	testutil.Connection(t, db, investor, testutil.Idea(t, db, founder, "two"), models.StatusConnected)
	testutil.Connection(t, db, investor, testutil.Idea(t, db, founder, "three"), models.StatusBlocked)

	views, err := ConnectionsFor(ctx, db, investor.ID, "", models.StatusPending)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, pending.ID, views[0].ID)

	// blocked rows never appear, even when asked for
	views, err = ConnectionsFor(ctx, db, investor.ID, "", models.StatusBlocked)
	require.NoError(t, err)
	assert.Empty(t, views)

	views, err = ConnectionsFor(ctx, db, investor.ID, "")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestLikedByMeKeepsDeletedHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "ben")

	kept := testutil.Idea(t, db, founder, "kept")
	gone := testutil.Idea(t, db, founder, "gone")
	blocked := testutil.Idea(t, db, founder, "blocked")
	testutil.Connection(t, db, investor, kept, models.StatusPending)
	testutil.Connection(t, db, investor, gone, models.StatusConnected)
	testutil.Connection(t, db, investor, blocked, models.StatusBlocked)

	_, err := SoftDeleteIdea(ctx, db, founder.ID, gone.ID)
	require.NoError(t, err)

	liked, err := LikedByMe(ctx, db, investor.ID)
	require.NoError(t, err)
	require.Len(t, liked, 2)
	for _, v := range liked {
		require.NotNil(t, v.Idea)
		require.NotNil(t, v.Counterpart)
		assert.Equal(t, founder.ID, v.Counterpart.ID)
		if v.IdeaID == gone.ID {
			assert.True(t, v.Idea.Deleted)
		}
	}

	passed, err := PassedBy(ctx, db, investor.ID)
	require.NoError(t, err)
	require.Len(t, passed, 1)
	assert.Equal(t, blocked.ID, passed[0].IdeaID)
}

func TestInterestedInMe(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	ben := testutil.Investor(t, db, "ben")
	cat := testutil.Investor(t, db, "cat")
	idea := testutil.Idea(t, db, founder, "idea")

	testutil.Connection(t, db, ben, idea, models.StatusCurious)
	testutil.Connection(t, db, cat, idea, models.StatusPending)

	interested, err := InterestedInMe(ctx, db, founder.ID)
	require.NoError(t, err)
	require.Len(t, interested, 1)
	assert.Equal(t, ben.ID, interested[0].InvestorID)
	require.NotNil(t, interested[0].Counterpart)
	assert.Equal(t, "ben", interested[0].Counterpart.Name)
	assert.Equal(t, ben.PhotoURL, interested[0].Counterpart.PhotoURL)
	assert.True(t, interested[0].AwaitingMe)
}

func TestConnectionsForOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "ben")

	a := testutil.Idea(t, db, founder, "a")
	b := testutil.Idea(t, db, founder, "b")
	c := testutil.Idea(t, db, founder, "c")
	d := testutil.Idea(t, db, founder, "d")
	e := testutil.Idea(t, db, founder, "e")

	connected := testutil.Connection(t, db, investor, a, models.StatusConnected)
	requested := testutil.Connection(t, db, investor, b, models.StatusRequested)
	curious := testutil.Connection(t, db, investor, c, models.StatusCurious)
	pending := testutil.Connection(t, db, investor, d, models.StatusPending)
	testutil.Connection(t, db, investor, e, models.StatusBlocked)

	views, err := ConnectionsFor(ctx, db, founder.ID, models.RoleFounder)
	require.NoError(t, err)
	require.Len(t, views, 4)

	// awaiting group newest first, then requested, then connected
	assert.Equal(t, pending.ID, views[0].ID)
	assert.Equal(t, curious.ID, views[1].ID)
	assert.Equal(t, requested.ID, views[2].ID)
	assert.Equal(t, connected.ID, views[3].ID)

	for _, v := range views {
		require.NotNil(t, v.Counterpart)
		assert.Equal(t, "ben", v.Counterpart.Name)
		assert.Equal(t, investor.Link, v.Counterpart.Link)
	}

	// founder acts on curious and requested
	assert.False(t, views[0].AwaitingMe)
	assert.True(t, views[1].AwaitingMe)
	assert.True(t, views[2].AwaitingMe)
	assert.False(t, views[3].AwaitingMe)

	asInvestor, err := ConnectionsFor(ctx, db, investor.ID, "")
	require.NoError(t, err)
	require.Len(t, asInvestor, 4)
	assert.True(t, asInvestor[0].AwaitingMe)
	assert.Equal(t, "ada", asInvestor[0].Counterpart.Name)

	wrongSide, err := ConnectionsFor(ctx, db, investor.ID, models.RoleFounder)
	require.NoError(t, err)
	assert.Empty(t, wrongSide)
}

func TestLikedIdeasByInvestorAndRequests(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	founder := testutil.Founder(t, db, "ada")
	ben := testutil.Investor(t, db, "ben")
	cat := testutil.Investor(t, db, "cat")

	one := testutil.Idea(t, db, founder, "one")
	two := testutil.Idea(t, db, founder, "two")

	testutil.Connection(t, db, ben, one, models.StatusPending)
	benTwo := testutil.Connection(t, db, ben, two, models.StatusRequested)
	testutil.Connection(t, db, cat, one, models.StatusCurious)

	_, err := AppendMessage(ctx, db, benTwo.ID, ben.ID, "let's meet", "")
	require.NoError(t, err)

	groups, err := LikedIdeasByInvestor(ctx, db, founder.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, ben.ID, groups[0].Investor.ID)
	assert.Len(t, groups[0].Ideas, 2)
	assert.Len(t, groups[0].Connections, 2)

	requests, err := RequestsFor(ctx, db, founder.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	for _, r := range requests {
		assert.NotNil(t, r.Messages)
		if r.ID == benTwo.ID {
			require.Len(t, r.Messages, 1)
			assert.Equal(t, "let's meet", r.Messages[0].Content)
		} else {
			assert.Empty(t, r.Messages)
		}
	}
}
