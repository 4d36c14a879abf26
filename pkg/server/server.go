// Copyright (C) 2026 TinyFedi Project
//
// This file is part of fedcore.
//
// fedcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fedcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fedcore.  If not, see <https://www.gnu.org/licenses/>.

package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/config"
	"github.com/tinyfedi/fedcore/pkg/dispatch"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
	"github.com/tinyfedi/fedcore/pkg/metrics"
	"github.com/tinyfedi/fedcore/pkg/queue"
)

// InboxNamespace is the store namespace for accepted inbound activities.
const InboxNamespace = "inbox"

// OutboxNamespace is the store namespace for published activities.
const OutboxNamespace = "outbox"

// Server wires the federation routes to the stores and the queue.
type Server struct {
	cfg       config.Config
	store     queue.BlobStore
	followers *dispatch.FollowerStore
	queue     *queue.InboxQueue
	verifier  RequestVerifier
	logger    *zap.Logger

	actor  activitypub.Actor
	finger activitypub.WebFinger
}

// New creates a Server. publicKeyPEM is embedded into the served actor
// document so remote servers can verify our signatures.
func New(cfg config.Config, store queue.BlobStore, followers *dispatch.FollowerStore,
	q *queue.InboxQueue, v RequestVerifier, publicKeyPEM string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	actorID := cfg.ActorID()
	actor := activitypub.Actor{
		Context: []string{
			activitypub.ContextActivityStreams,
			activitypub.ContextSecurity,
		},
		ID:                actorID,
		Type:              "Person",
		PreferredUsername: cfg.Actor.Username,
		Name:              cfg.Actor.Name,
		Summary:           cfg.Actor.Summary,
		Inbox:             actorID + "/inbox",
		Outbox:            actorID + "/outbox",
		Followers:         actorID + "/followers",
		URL:               cfg.Server.Scheme + "://" + cfg.Server.Domain + "/",
		PublicKey: activitypub.PublicKey{
			ID:           cfg.KeyID(),
			Owner:        actorID,
			PublicKeyPem: publicKeyPEM,
		},
	}

	finger := activitypub.WebFinger{
		Subject: "acct:" + cfg.Actor.Username + "@" + cfg.Server.Domain,
		Links: []activitypub.Link{
			{
				Rel:  "self",
				Type: activitypub.ContentTypeActivityJSON,
				Href: actorID,
			},
		},
	}

	return &Server{
		cfg:       cfg,
		store:     store,
		followers: followers,
		queue:     q,
		verifier:  v,
		logger:    logger,
		actor:     actor,
		finger:    finger,
	}
}

// Register mounts the federation routes on an echo instance.
func (s *Server) Register(e *echo.Echo) {
	prefix := "/" + s.cfg.Actor.Namespace

	e.GET("/.well-known/webfinger", s.handleWebFinger)
	e.GET(prefix+"/actor", s.handleActor)
	e.GET(prefix+"/actor/outbox", s.handleOutbox)
	e.GET(prefix+"/actor/followers", s.handleFollowers)
	e.GET(prefix+"/posts/:id", s.handlePost)
	e.GET(prefix+"/activities/:id", s.handleActivity)
	e.POST(prefix+"/actor/inbox", s.handleInbox,
		SignatureMiddleware(s.verifier, s.logger))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// activityJSON writes v with the ActivityPub media type.
func activityJSON(c echo.Context, code int, v any) error {
	data, err := jsonx.Marshal(v)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "encode failed")
	}
	return c.Blob(code, activitypub.ContentTypeActivityJSON, data)
}

func (s *Server) handleWebFinger(c echo.Context) error {
	resource := c.QueryParam("resource")
	if resource == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "resource parameter required")
	}
	if resource != s.finger.Subject {
		return echo.NewHTTPError(http.StatusNotFound, "unknown resource")
	}
	return c.JSON(http.StatusOK, s.finger)
}

// wantsActivityPub accepts the short and long ActivityPub media types,
// and the bare Accept some crawlers send.
func wantsActivityPub(accept string) bool {
	return strings.Contains(accept, "activity+json") ||
		strings.Contains(accept, "ld+json") ||
		strings.Contains(accept, "application/json") ||
		strings.Contains(accept, "*/*")
}

func (s *Server) handleActor(c echo.Context) error {
	if !wantsActivityPub(c.Request().Header.Get("Accept")) {
		return echo.NewHTTPError(http.StatusNotAcceptable, "actor document is ActivityPub only")
	}
	return activityJSON(c, http.StatusOK, s.actor)
}

func (s *Server) handleOutbox(c echo.Context) error {
	names, err := s.store.List(OutboxNamespace)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "outbox unavailable")
	}

	items := make([]any, 0, len(names))
	for _, name := range names {
		data, err := s.store.Get(OutboxNamespace + "/" + name)
		if err != nil {
			continue
		}
		var activity map[string]any
		if err := jsonx.Unmarshal(data, &activity); err != nil {
			s.logger.Warn("skipping unreadable outbox entry", zap.String("name", name))
			continue
		}
		items = append(items, activity)
	}

	outbox := map[string]any{
		"@context":     activitypub.ContextActivityStreams,
		"id":           s.actor.Outbox,
		"type":         "OrderedCollection",
		"totalItems":   len(items),
		"orderedItems": items,
	}
	return activityJSON(c, http.StatusOK, outbox)
}

func (s *Server) handleFollowers(c echo.Context) error {
	followers, err := s.followers.Load()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "followers unavailable")
	}
	return activityJSON(c, http.StatusOK, followers)
}

func (s *Server) serveBlob(c echo.Context, namespace string) error {
	id := c.Param("id")
	data, err := s.store.Get(namespace + "/" + id + ".json")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.Blob(http.StatusOK, activitypub.ContentTypeActivityJSON, data)
}

func (s *Server) handlePost(c echo.Context) error {
	return s.serveBlob(c, "posts")
}

func (s *Server) handleActivity(c echo.Context) error {
	return s.serveBlob(c, dispatch.ActivitiesNamespace)
}

// handleInbox persists a verified activity and enqueues it. The
// signature middleware runs before this handler; dispatch happens on a
// later queue drain, so the route answers 202.
func (s *Server) handleInbox(c echo.Context) error {
	contentType := c.Request().Header.Get("Content-Type")
	if !strings.Contains(contentType, "activity+json") && !strings.Contains(contentType, "ld+json") {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "ActivityPub media type required")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read body")
	}

	var activity activitypub.Activity
	if err := jsonx.Unmarshal(body, &activity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body is not a JSON object")
	}
	if activity.Type() == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "activity has no type")
	}

	name := InboxNamespace + "/" + activitypub.GenerateActivityID(activity.Type()) + ".json"
	if err := s.store.Put(name, body); err != nil {
		s.logger.Error("could not persist inbound activity", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failed")
	}
	if err := s.queue.Enqueue(name); err != nil {
		s.logger.Error("could not enqueue inbound activity",
			zap.String("name", name), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "enqueue failed")
	}

	s.logger.Info("activity accepted",
		zap.String("type", activity.Type()),
		zap.String("actor", activity.Actor()),
		zap.String("name", name))
	return c.NoContent(http.StatusAccepted)
}
