// common.go
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

package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/middleware"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/types"
	"github.com/localnerve/napkins/internal/utils"
	"gorm.io/gorm"
)

// Routes mounts every API route on router. limit guards the connection
// actions and may be nil.
func Routes(router fiber.Router, db *gorm.DB, limit fiber.Handler) {
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	ideas := &IdeaHandler{DB: db}
	profiles := &ProfileHandler{DB: db}
	conns := &ConnectionHandler{DB: db}
	views := &ViewHandler{DB: db}

	router.Get("/ideas", ideas.ListIdeas)
	router.Get("/ideas/mine", ideas.ListMyIdeas)
	router.Post("/ideas", ideas.CreateIdea)
	router.Patch("/ideas/:id", ideas.EditIdea)
	router.Delete("/ideas/:id", ideas.DeleteIdea)
	router.Post("/ideas/:id/pass", limit, conns.PassIdea)

	router.Get("/profiles/me", profiles.GetMyProfile)
	router.Put("/profiles/me", profiles.PutMyProfile)
	router.Get("/profiles", profiles.ListProfiles)
	router.Get("/profiles/:id", profiles.GetProfile)

	router.Post("/connections", limit, conns.ExpressInterest)
	router.Get("/connections/:id", conns.GetConnection)
	router.Delete("/connections/:id", limit, conns.Disconnect)
	router.Post("/connections/:id/reciprocate", limit, conns.Reciprocate)
	router.Post("/connections/:id/request", limit, conns.SendRequest)
	router.Post("/connections/:id/accept", limit, conns.Accept)
	router.Post("/connections/:id/pass", limit, conns.Pass)
	router.Post("/connections/:id/unpass", limit, conns.Unpass)
	router.Post("/connections/:id/withdraw", limit, conns.Withdraw)
	router.Get("/connections/:id/messages", conns.ListMessages)
	router.Post("/connections/:id/messages", limit, conns.PostMessage)
	router.Post("/messages/read", conns.MarkRead)

	router.Get("/views/feed", views.Feed)
	router.Get("/views/liked", views.Liked)
	router.Get("/views/interested", views.Interested)
	router.Get("/views/connections", views.Connections)
	router.Get("/views/passed", views.Passed)
	router.Get("/views/investors", views.Investors)
	router.Get("/views/requests", views.Requests)
}

// actor resolves the authenticated caller and the role of their profile.
// Callers without a profile cannot act yet.
func actor(c *fiber.Ctx, db *gorm.DB) (services.Actor, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return services.Actor{}, types.Forbidden("no authenticated user")
	}
	profile, err := services.GetProfile(c.UserContext(), db, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return services.Actor{}, types.Forbidden("complete your profile first")
		}
		return services.Actor{}, err
	}
	return services.Actor{ID: userID, Role: profile.Role}, nil
}

// actorAs resolves the caller and requires a role
func actorAs(c *fiber.Ctx, db *gorm.DB, role models.Role) (services.Actor, error) {
	a, err := actor(c, db)
	if err != nil {
		return a, err
	}
	if a.Role != role {
		return a, types.Forbidden("only a %s may do this", role)
	}
	return a, nil
}

// idParam parses a positive numeric route parameter
func idParam(c *fiber.Ctx, name string) (uint64, error) {
	id, err := types.ParseID(c.Params(name))
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// parseBody decodes a JSON body and applies its validate tags
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return types.Validation("invalid request body: %v", err)
	}
	if err := services.Validator().Struct(out); err != nil {
		return types.Validation("invalid request body: %v", err)
	}
	return nil
}

// respondError writes the error envelope for an operation error
func respondError(c *fiber.Ctx, err error, op string) error {
	var partial *types.PartialFailureError
	if errors.As(err, &partial) {
		log.Printf("%s: partial failure: %v", op, err)
		return utils.PartialFailureResponse(c, partial.Error(), op, partial.Committed)
	}

	message := err.Error()
	var kindErr *types.KindError
	if errors.As(err, &kindErr) {
		message = kindErr.Message
	}

	switch {
	case errors.Is(err, types.ErrValidation):
		return utils.ErrorResponse(c, message, fiber.StatusBadRequest, op)
	case errors.Is(err, types.ErrForbidden):
		return utils.ErrorResponse(c, message, fiber.StatusForbidden, op)
	case errors.Is(err, types.ErrNotFound):
		return utils.NotFoundResponse(c, message)
	case errors.Is(err, types.ErrConflict):
		return utils.ErrorResponse(c, message, fiber.StatusConflict, op)
	case errors.Is(err, types.ErrRemoteUnavailable):
		log.Printf("%s: data service unavailable: %v", op, err)
		return utils.ErrorResponse(c, "Data service unavailable, retry later", fiber.StatusServiceUnavailable, op)
	}

	log.Printf("%s: unexpected error: %v", op, err)
	return utils.ErrorResponse(c, message, fiber.StatusInternalServerError, op)
}

// ErrorHandler handles errors that escape handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return utils.ErrorResponse(c, fe.Message, fe.Code, "unknown")
	}

	if types.KindOf(err) != nil {
		return respondError(c, err, "unknown")
	}

	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "unknown")
}

// NotFound is the catch-all for unmatched routes
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}
