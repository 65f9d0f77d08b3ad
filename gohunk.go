// This file is part of Gohunk.
//
// Gohunk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gohunk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gohunk.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jetsetilly/gohunk/config"
	"github.com/jetsetilly/gohunk/logger"
	"github.com/jetsetilly/gohunk/statsview"
	"github.com/jetsetilly/gohunk/version"
)

// options shared by all commands
type options struct {
	configFile    string
	log           bool
	statsview     bool
	statsviewAddr string

	// valid after the root command's PersistentPreRunE
	cfg config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "* error: %v\n", err)
		os.Exit(10)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "gohunk",
		Short:         "Read, write and relocate Amiga hunk files",
		Version:       version.Current().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			opts.cfg, err = config.Load(opts.configFile)
			if err != nil {
				return err
			}

			// set debugging log echo
			if opts.log || opts.cfg.EchoLog {
				logger.SetEcho(logger.NewColorizer(cmd.ErrOrStderr()), false)
			} else {
				logger.SetEcho(nil, false)
			}

			if opts.statsview {
				url, err := statsview.Launch(opts.statsviewAddr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "stats server available at %s\n", url)
			}

			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", config.ResourceFile(), "configuration file")
	root.PersistentFlags().BoolVar(&opts.log, "log", false, "echo debugging log to stderr")
	root.PersistentFlags().BoolVar(&opts.statsview, "statsview", false, "run stats server")
	root.PersistentFlags().StringVar(&opts.statsviewAddr, "statsview-addr", statsview.DefaultAddress, "address of stats server")

	root.AddCommand(
		newInfoCommand(opts),
		newBlocksCommand(opts),
		newDumpCommand(opts),
		newRelocCommand(opts),
		newConvertCommand(opts),
		newGraphCommand(opts),
		newListCommand(opts),
		newTagsCommand(),
	)

	return root
}
