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

	"github.com/spf13/cobra"
)

func drainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drain",
		Short: "Run one pass over the inbox queue",
		Long: `Drain runs a single pass over the queued inbound activities and
dispatches them. Entries that fail or have no handler stay queued;
running drain again retries them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(verbose)
			defer logger.Sync()

			a, err := newApp(logger)
			if err != nil {
				return err
			}

			res, err := a.queue.Drain(context.Background(), a.registry)
			if err != nil {
				return err
			}

			fmt.Printf("processed: %d\nfailed:    %d\nunknown:   %d\n",
				res.Processed, res.Failed, res.Unknown)
			return nil
		},
	}
}
