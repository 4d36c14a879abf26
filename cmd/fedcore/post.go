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
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyfedi/fedcore/pkg/activitypub"
	"github.com/tinyfedi/fedcore/pkg/jsonx"
)

func postCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "post [content]",
		Short: "Publish a post and broadcast it to followers",
		Long: `Post persists a Note, wraps it in a Create activity, stores the
activity in the outbox, and delivers it to every follower. Failed
deliveries are reported per follower and not retried.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(verbose)
			defer logger.Sync()

			a, err := newApp(logger)
			if err != nil {
				return err
			}

			postID := activitypub.GeneratePostID(title)
			postURL := a.cfg.BaseURL() + "/posts/" + postID

			note := activitypub.Activity{
				"@context":     activitypub.ContextActivityStreams,
				"id":           postURL,
				"type":         "Note",
				"attributedTo": a.cfg.ActorID(),
				"content":      args[0],
				"published":    time.Now().UTC().Format(time.RFC3339),
				"to":           []any{activitypub.ContextActivityStreams + "#Public"},
			}
			if title != "" {
				note["name"] = title
			}

			noteData, err := jsonx.MarshalIndent(note, "", "  ")
			if err != nil {
				return err
			}
			if err := a.store.Put("posts/"+postID+".json", noteData); err != nil {
				return err
			}

			create, localID := activitypub.NewCreate(a.cfg.BaseURL(), a.cfg.ActorID(), note)
			createData, err := jsonx.MarshalIndent(create, "", "  ")
			if err != nil {
				return err
			}
			if err := a.store.Put("outbox/"+localID+".json", createData); err != nil {
				return err
			}

			results, err := a.engine.BroadcastToFollowers(context.Background(), create)
			if err != nil {
				return err
			}

			fmt.Printf("post:   %s\n", postURL)
			fmt.Printf("create: %s\n", create.ID())
			for actor, ok := range results {
				status := "delivered"
				if !ok {
					status = "FAILED"
				}
				fmt.Printf("  %-9s %s\n", status, actor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "post title, used in the post id")
	return cmd
}
