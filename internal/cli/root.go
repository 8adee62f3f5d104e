// Copyright 2026 The jotdown Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the Cobra command structure for the jotdown tool.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/clbarnes/jotdown"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type renderFlags struct {
	events    bool
	ignoreRaw bool
	output    string
}

// NewRootCommand creates the root jotdown command.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	flags := &renderFlags{}

	rootCmd := &cobra.Command{
		Use:   "jotdown [file]",
		Short: "Convert Djot documents to HTML",
		Long: `jotdown parses documents written in the Djot light markup language
and renders them to HTML.

With no file argument, jotdown reads from standard input.
Pass --events to print the parser's event stream instead of HTML,
which is useful for debugging documents and the parser itself.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flags.events, "events", false, "print the event stream instead of HTML")
	rootCmd.Flags().BoolVar(&flags.ignoreRaw, "ignore-raw", false, "drop raw HTML content from the output")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "", "write output to file instead of stdout")

	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

func runRender(cmd *cobra.Command, args []string, flags *renderFlags) error {
	source, name, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	log.Debug("parsing input", "name", name, "bytes", len(source))

	out := cmd.OutOrStdout()
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer f.Close()
		out = f
	}

	p := jotdown.Parse(source)
	if flags.events {
		return dumpEvents(out, p)
	}
	r := &jotdown.HTMLRenderer{IgnoreRaw: flags.ignoreRaw}
	return r.Render(out, p)
}

func readInput(cmd *cobra.Command, args []string) (source []byte, name string, err error) {
	if len(args) == 0 {
		source, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return source, "<stdin>", nil
	}
	source, err = os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return source, args[0], nil
}

// dumpEvents prints one line per event:
// the position marker, the kind, the source span,
// and any text payload.
func dumpEvents(w io.Writer, p *jotdown.Parser) error {
	for {
		ev, ok := p.Next()
		if !ok {
			return nil
		}
		marker := "@"
		switch ev.Pos {
		case jotdown.PosStart:
			marker = "+"
		case jotdown.PosEnd:
			marker = "-"
		}
		_, err := fmt.Fprintf(w, "%s%s [%d,%d)", marker, ev.Kind, ev.Span.Start, ev.Span.End)
		if err != nil {
			return err
		}
		if len(ev.Text) > 0 {
			if _, err := fmt.Fprintf(w, " %q", ev.Text); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
}
