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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tinyfedi/fedcore/pkg/config"
	"github.com/tinyfedi/fedcore/pkg/httpsig"
)

func keygenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the actor's RSA keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(cfg.Security.PrivateKeyFile); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite",
						cfg.Security.PrivateKeyFile)
				}
			}

			priv, err := httpsig.GenerateKeyPair()
			if err != nil {
				return err
			}
			publicPEM, err := httpsig.EncodePublicKeyPEM(&priv.PublicKey)
			if err != nil {
				return err
			}

			if err := writeKeyFile(cfg.Security.PrivateKeyFile,
				[]byte(httpsig.EncodePrivateKeyPEM(priv)), 0o600); err != nil {
				return err
			}
			if err := writeKeyFile(cfg.Security.PublicKeyFile,
				[]byte(publicPEM), 0o644); err != nil {
				return err
			}

			fmt.Printf("wrote %s\nwrote %s\n",
				cfg.Security.PrivateKeyFile, cfg.Security.PublicKeyFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing keys")
	return cmd
}

func writeKeyFile(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
