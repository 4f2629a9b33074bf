// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gogpu/ggedit/draft"
	"github.com/spf13/cobra"
)

var errNoDrafts = errors.New("no draft store configured (set drafts.url or GGEDIT_DRAFTS_URL)")

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDraftsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage stored drafts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List drafts, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrafts(cmd, func(s *draft.Store) error {
				printDrafts(cmd.OutOrStdout(), s.List(cmd.Context()))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrafts(cmd, func(s *draft.Store) error {
				return s.Rename(cmd.Context(), args[0], args[1])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete drafts; unknown ids are ignored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDrafts(cmd, func(s *draft.Store) error {
				for _, id := range args {
					if err := s.Delete(cmd.Context(), id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})
	return cmd
}

func (a *app) withDrafts(cmd *cobra.Command, fn func(*draft.Store) error) error {
	s, closeFn, err := a.openDrafts(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()
	if s == nil {
		return errNoDrafts
	}
	return fn(s)
}

func printDrafts(w io.Writer, drafts []draft.Draft) {
	if len(drafts) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no drafts"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "SAVED", "LAYERS", "SIZE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, d := range drafts {
		t.Row(
			d.ID,
			d.Name,
			d.Time().Format("2006-01-02 15:04"),
			strconv.Itoa(len(d.TextLayers)+len(d.MediaLayers)),
			fmt.Sprintf("%gx%g", d.CanvasWidth, d.CanvasHeight),
		)
	}
	fmt.Fprintln(w, t.Render())
}
