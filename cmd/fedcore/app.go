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

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tinyfedi/fedcore/pkg/client"
	"github.com/tinyfedi/fedcore/pkg/config"
	"github.com/tinyfedi/fedcore/pkg/delivery"
	"github.com/tinyfedi/fedcore/pkg/dispatch"
	"github.com/tinyfedi/fedcore/pkg/httpsig"
	"github.com/tinyfedi/fedcore/pkg/metrics"
	"github.com/tinyfedi/fedcore/pkg/queue"
	"github.com/tinyfedi/fedcore/pkg/resolver"
	"github.com/tinyfedi/fedcore/pkg/verifier"
)

// app holds the wired federation core shared by the serve, drain, and
// post commands.
type app struct {
	cfg          config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	store        *queue.FSStore
	followers    *dispatch.FollowerStore
	queue        *queue.InboxQueue
	engine       *delivery.Engine
	registry     *dispatch.Registry
	verifier     *verifier.RequestVerifier
	publicKeyPEM string
}

// newApp loads the configuration and wires every component. The
// private key must exist; run keygen first.
func newApp(logger *zap.Logger) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	privateKeyPEM, err := os.ReadFile(cfg.Security.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key (run keygen?): %w", err)
	}
	publicKeyPEM, err := os.ReadFile(cfg.Security.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key (run keygen?): %w", err)
	}

	store, err := queue.NewFSStore(cfg.Storage.DataDir, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New(nil)
	codec := httpsig.NewCodec(logger)

	// Resolution is short-fuse; delivery gets the longer timeout.
	resolveClient := client.New(cfg.Server.UserAgent, cfg.Timeouts.Resolve, logger)
	deliverClient := client.New(cfg.Server.UserAgent, cfg.Timeouts.Deliver, logger)

	keys := resolver.New(resolveClient, cfg.Policy.KeyCacheTTL, logger, m)
	v := verifier.New(codec, keys, verifier.Policy{
		RequireDigest: cfg.Policy.RequireDigest,
		RequireDate:   cfg.Policy.RequireDate,
		MaxClockSkew:  cfg.Policy.MaxClockSkew,
	}, logger, m)

	followers := dispatch.NewFollowerStore(store, cfg.ActorID()+"/followers", logger)
	engine := delivery.New(deliverClient, codec, followers,
		cfg.KeyID(), string(privateKeyPEM), logger, m)

	registry := dispatch.NewRegistry(logger)
	registry.Register("Follow", dispatch.NewFollowHandler(
		followers, store, engine, cfg.BaseURL(), cfg.ActorID(),
		cfg.Policy.AutoAcceptFollows, logger))

	undo := dispatch.NewUndoHandler(logger)
	undo.RegisterInner("Follow", dispatch.NewUndoFollowHandler(followers, logger))
	registry.Register("Undo", undo)

	return &app{
		cfg:          cfg,
		logger:       logger,
		metrics:      m,
		store:        store,
		followers:    followers,
		queue:        queue.New(store, logger, m),
		engine:       engine,
		registry:     registry,
		verifier:     v,
		publicKeyPEM: string(publicKeyPEM),
	}, nil
}
