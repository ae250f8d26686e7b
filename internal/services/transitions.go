// transitions.go
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
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/types"
)

// Action names a connection lifecycle action
type Action string

// Connection lifecycle actions
const (
	ActionExpressInterest Action = "express_interest"
	ActionReciprocate     Action = "reciprocate"
	ActionSendRequest     Action = "send_request"
	ActionAccept          Action = "accept"
	ActionPass            Action = "pass"
	ActionPassIdea        Action = "pass_idea"
	ActionDisconnect      Action = "disconnect"
	ActionWithdraw        Action = "withdraw"
	ActionUnpass          Action = "unpass"
)

// side is the party of a connection an actor must be to take an action
type side int

const (
	sideInvestor side = iota
	sideFounder
	sideEither
	sideBlocker
)

// transition is one row of the lifecycle table. A from entry of StatusNone
// means no row exists for the triple; a to of StatusNone removes the row.
type transition struct {
	roles []models.Role
	side  side
	from  []models.Status
	to    models.Status
}

var (
	investorOnly = []models.Role{models.RoleInvestor}
	founderOnly  = []models.Role{models.RoleFounder}
	anyRole      = []models.Role{models.RoleInvestor, models.RoleFounder}
	undecided    = []models.Status{models.StatusCurious, models.StatusPending, models.StatusRequested}
)

var transitions = map[Action]transition{
	ActionExpressInterest: {investorOnly, sideInvestor, []models.Status{models.StatusNone}, models.StatusCurious},
	ActionReciprocate:     {founderOnly, sideFounder, []models.Status{models.StatusCurious}, models.StatusPending},
	ActionSendRequest:     {investorOnly, sideInvestor, []models.Status{models.StatusPending}, models.StatusRequested},
	ActionAccept:          {founderOnly, sideFounder, []models.Status{models.StatusRequested}, models.StatusConnected},
	ActionPass:            {anyRole, sideEither, undecided, models.StatusBlocked},
	ActionPassIdea:        {investorOnly, sideInvestor, append([]models.Status{models.StatusNone}, undecided...), models.StatusBlocked},
	ActionDisconnect:      {anyRole, sideEither, []models.Status{models.StatusConnected}, models.StatusNone},
	ActionWithdraw:        {investorOnly, sideInvestor, undecided, models.StatusNone},
	ActionUnpass:          {anyRole, sideBlocker, []models.Status{models.StatusBlocked}, models.StatusNone},
}

// authorize checks the actor's role against an action before any store call
func authorize(action Action, actor Actor) (transition, error) {
	t, ok := transitions[action]
	if !ok {
		return transition{}, types.Validation("unknown action %q", action)
	}
	if actor.ID == "" {
		return transition{}, types.Forbidden("%s requires an identity", action)
	}
	for _, r := range t.roles {
		if r == actor.Role {
			return t, nil
		}
	}
	return transition{}, types.Forbidden("%s is not allowed for role %q", action, actor.Role)
}

// permits checks the actor's side and the observed status of conn.
// A nil conn is the no-row state.
func (t transition) permits(action Action, actor Actor, conn *models.Connection) error {
	current := models.StatusNone
	if conn != nil {
		current = conn.Status
		if !t.isSide(actor, conn) {
			return types.Forbidden("%s is not allowed for this party", action)
		}
	}
	for _, s := range t.from {
		if s == current {
			return nil
		}
	}
	if current == models.StatusNone {
		return types.NotFound("connection not found")
	}
	return types.Conflict("cannot %s a %s connection", action, current)
}

func (t transition) isSide(actor Actor, conn *models.Connection) bool {
	switch t.side {
	case sideInvestor:
		return actor.Role == models.RoleInvestor && conn.InvestorID == actor.ID
	case sideFounder:
		return actor.Role == models.RoleFounder && conn.FounderID == actor.ID
	case sideEither:
		if actor.Role == models.RoleInvestor {
			return conn.InvestorID == actor.ID
		}
		return conn.FounderID == actor.ID
	case sideBlocker:
		return conn.BlockedBy != nil && *conn.BlockedBy == actor.ID
	}
	return false
}

// removes reports whether the action deletes the row
func (t transition) removes() bool {
	return t.to == models.StatusNone
}

// Allowed reports whether actor may take action on conn in its current state.
// Views use it to annotate connections that wait on the caller.
func Allowed(action Action, actor Actor, conn *models.Connection) bool {
	t, err := authorize(action, actor)
	if err != nil {
		return false
	}
	return t.permits(action, actor, conn) == nil
}
