// projections.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"sort"
	"time"

	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/observability"
	"github.com/localnerve/napkins/internal/types"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// IdeaCard is an idea in an investor's feed with its founder
type IdeaCard struct {
	models.Idea
	Founder *models.ProfileSummary `json:"founder"`
}

// ConnectionView is a connection as one of its parties sees it
type ConnectionView struct {
	models.Connection
	Idea        *models.Idea           `json:"idea"`
	Counterpart *models.ProfileSummary `json:"counterpart"`
	AwaitingMe  bool                   `json:"awaitingMe"`
	Messages    []models.Message       `json:"messages,omitempty"`
}

// InvestorLikes groups the ideas of one founder an investor has liked
type InvestorLikes struct {
	Investor    *models.ProfileSummary `json:"investor"`
	Ideas       []models.Idea          `json:"ideas"`
	Connections []models.Connection    `json:"connections"`
}

var (
	liveStatuses    = []models.Status{models.StatusCurious, models.StatusPending, models.StatusRequested, models.StatusConnected}
	engagedStatuses = []models.Status{models.StatusPending, models.StatusRequested, models.StatusConnected}
	forwardActions  = []Action{ActionReciprocate, ActionSendRequest, ActionAccept}
)

// view tags a projection query so it can be found in the database's query log
func view(ctx context.Context, db *gorm.DB, name string) *gorm.DB {
	return quiet(ctx, db).Clauses(hints.CommentBefore("select", "view:"+name))
}

// FeedFor returns the live ideas an investor has not acted on yet, newest
// first. Only ideas of current founders other than the investor appear.
func FeedFor(ctx context.Context, db *gorm.DB, investorID string) ([]IdeaCard, error) {
	defer observability.ObserveProjection("feed", time.Now())

	seen := quiet(ctx, db).Model(&models.Connection{}).
		Select("idea_id").Where("investor_id = ?", investorID)
	founders := quiet(ctx, db).Model(&models.Profile{}).
		Select("id").Where("is_looking = ?", models.RoleFounder.Looking())

	var ideas []models.Idea
	if err := view(ctx, db, "feed").
		Where("deleted = ?", false).
		Where("owner_id <> ?", investorID).
		Where("owner_id IN (?)", founders).
		Where("id NOT IN (?)", seen).
		Order(newestFirst).Find(&ideas).Error; err != nil {
		return nil, types.RemoteUnavailable("feed", err)
	}

	owners := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		owners = append(owners, idea.OwnerID)
	}
	profiles, err := profilesByID(ctx, db, unique(owners))
	if err != nil {
		return nil, err
	}

	cards := make([]IdeaCard, 0, len(ideas))
	for _, idea := range ideas {
		cards = append(cards, IdeaCard{Idea: idea, Founder: profiles[idea.OwnerID].Summary()})
	}
	return cards, nil
}

// LikedByMe returns an investor's live connections with idea and founder
func LikedByMe(ctx context.Context, db *gorm.DB, investorID string) ([]ConnectionView, error) {
	defer observability.ObserveProjection("liked", time.Now())

	conns, err := connectionsWhere(ctx, db, "liked",
		"investor_id = ? AND status IN ?", investorID, liveStatuses)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, db, investorID, conns, false)
}

// InterestedInMe returns the curious connections waiting on a founder
func InterestedInMe(ctx context.Context, db *gorm.DB, founderID string) ([]ConnectionView, error) {
	defer observability.ObserveProjection("interested", time.Now())

	conns, err := connectionsWhere(ctx, db, "interested",
		"founder_id = ? AND status = ?", founderID, models.StatusCurious)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, db, founderID, conns, false)
}

// PassedBy returns an investor's blocked connections
func PassedBy(ctx context.Context, db *gorm.DB, investorID string) ([]ConnectionView, error) {
	defer observability.ObserveProjection("passed", time.Now())

	conns, err := connectionsWhere(ctx, db, "passed",
		"investor_id = ? AND status = ?", investorID, models.StatusBlocked)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, db, investorID, conns, false)
}

// ConnectionsFor returns the non-blocked connections touching userID.
// roleHint restricts the side; an empty hint includes both. statuses, when
// given, keeps only those statuses. Items waiting on curious or pending come
// first, then requested, then connected, newest first within a group.
func ConnectionsFor(ctx context.Context, db *gorm.DB, userID string, roleHint models.Role, statuses ...models.Status) ([]ConnectionView, error) {
	defer observability.ObserveProjection("connections", time.Now())

	var conns []models.Connection
	var err error
	switch roleHint {
	case models.RoleInvestor:
		conns, err = connectionsWhere(ctx, db, "connections",
			"investor_id = ? AND status <> ?", userID, models.StatusBlocked)
	case models.RoleFounder:
		conns, err = connectionsWhere(ctx, db, "connections",
			"founder_id = ? AND status <> ?", userID, models.StatusBlocked)
	case "":
		conns, err = connectionsWhere(ctx, db, "connections",
			"(investor_id = ? OR founder_id = ?) AND status <> ?", userID, userID, models.StatusBlocked)
	default:
		return nil, types.Validation("unknown role %q", roleHint)
	}
	if err != nil {
		return nil, err
	}
	if len(statuses) > 0 {
		conns = withStatus(conns, statuses)
	}

	views, err := hydrate(ctx, db, userID, conns, false)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool {
		return statusRank(views[i].Status) < statusRank(views[j].Status)
	})
	return views, nil
}

// LikedIdeasByInvestor groups a founder's engaged connections per investor
func LikedIdeasByInvestor(ctx context.Context, db *gorm.DB, founderID string) ([]InvestorLikes, error) {
	defer observability.ObserveProjection("investors", time.Now())

	conns, err := connectionsWhere(ctx, db, "investors",
		"founder_id = ? AND status IN ?", founderID, engagedStatuses)
	if err != nil {
		return nil, err
	}
	views, err := hydrate(ctx, db, founderID, conns, false)
	if err != nil {
		return nil, err
	}

	groups := []InvestorLikes{}
	index := map[string]int{}
	for _, v := range views {
		i, ok := index[v.InvestorID]
		if !ok {
			i = len(groups)
			index[v.InvestorID] = i
			groups = append(groups, InvestorLikes{
				Investor:    v.Counterpart,
				Ideas:       []models.Idea{},
				Connections: []models.Connection{},
			})
		}
		if v.Idea != nil {
			groups[i].Ideas = append(groups[i].Ideas, *v.Idea)
		}
		groups[i].Connections = append(groups[i].Connections, v.Connection)
	}
	return groups, nil
}

// RequestsFor returns a founder's engaged connections with their messages
func RequestsFor(ctx context.Context, db *gorm.DB, founderID string) ([]ConnectionView, error) {
	defer observability.ObserveProjection("requests", time.Now())

	conns, err := connectionsWhere(ctx, db, "requests",
		"founder_id = ? AND status IN ?", founderID, engagedStatuses)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, db, founderID, conns, true)
}

func connectionsWhere(ctx context.Context, db *gorm.DB, name string, query string, args ...interface{}) ([]models.Connection, error) {
	var conns []models.Connection
	if err := view(ctx, db, name).Where(query, args...).
		Order(newestFirst).Find(&conns).Error; err != nil {
		return nil, types.RemoteUnavailable(name, err)
	}
	return conns, nil
}

// hydrate joins ideas, counterpart profiles and optionally messages onto
// connections. The lookups are independent reads and run concurrently.
func hydrate(ctx context.Context, db *gorm.DB, userID string, conns []models.Connection, withMessages bool) ([]ConnectionView, error) {
	views := make([]ConnectionView, 0, len(conns))
	if len(conns) == 0 {
		return views, nil
	}

	ideaIDs := make([]uint64, 0, len(conns))
	counterparts := make([]string, 0, len(conns))
	connIDs := make([]uint64, 0, len(conns))
	for i := range conns {
		ideaIDs = append(ideaIDs, conns[i].IdeaID)
		counterparts = append(counterparts, conns[i].Counterpart(userID))
		connIDs = append(connIDs, conns[i].ID)
	}

	var (
		ideas    = map[uint64]*models.Idea{}
		profiles map[string]*models.Profile
		messages = map[uint64][]models.Message{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rows []models.Idea
		if err := quiet(gctx, db).Where("id IN ?", uniqueIDs(ideaIDs)).Find(&rows).Error; err != nil {
			return types.RemoteUnavailable("load ideas", err)
		}
		for i := range rows {
			ideas[rows[i].ID] = &rows[i]
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profiles, err = profilesByID(gctx, db, unique(counterparts))
		return err
	})
	if withMessages {
		g.Go(func() error {
			var rows []models.Message
			if err := quiet(gctx, db).Where("connection_id IN ?", connIDs).
				Order(oldestFirst).Find(&rows).Error; err != nil {
				return types.RemoteUnavailable("load messages", err)
			}
			for _, m := range rows {
				messages[m.ConnectionID] = append(messages[m.ConnectionID], m)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, conn := range conns {
		v := ConnectionView{
			Connection:  conn,
			Idea:        ideas[conn.IdeaID],
			Counterpart: profiles[conn.Counterpart(userID)].Summary(),
			AwaitingMe:  awaiting(userID, &conn),
		}
		if withMessages {
			v.Messages = messages[conn.ID]
			if v.Messages == nil {
				v.Messages = []models.Message{}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// awaiting reports whether userID can move the connection forward
func awaiting(userID string, conn *models.Connection) bool {
	actor := Actor{ID: userID, Role: models.RoleFounder}
	if conn.InvestorID == userID {
		actor.Role = models.RoleInvestor
	}
	for _, action := range forwardActions {
		if Allowed(action, actor, conn) {
			return true
		}
	}
	return false
}

// withStatus filters conns in place to the given statuses
func withStatus(conns []models.Connection, statuses []models.Status) []models.Connection {
	kept := conns[:0]
	for _, conn := range conns {
		for _, s := range statuses {
			if conn.Status == s {
				kept = append(kept, conn)
				break
			}
		}
	}
	return kept
}

func statusRank(s models.Status) int {
	switch s {
	case models.StatusCurious, models.StatusPending:
		return 0
	case models.StatusRequested:
		return 1
	case models.StatusConnected:
		return 2
	}
	return 3
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
