package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sidebar-toolkit/internal/notice"
	"sidebar-toolkit/internal/noticeclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest announcements",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	items, err := s.admin.List(ctx, token)
	if err != nil {
		return s.checkAuth(ctx, err)
	}
	return printItems(cmd.OutOrStdout(), items, time.Local)
}

// printItems writes one row per announcement, newest first as received.
func printItems(w io.Writer, items []notice.Item, loc *time.Location) error {
	if len(items) == 0 {
		fprintf(w, "No announcements.\n")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fprintf(tw, "PUBLISHED\tTITLE\tCONTENT\n")
	for _, it := range items {
		when := ""
		if !it.CreatedAt.IsZero() {
			when = it.CreatedAt.In(loc).Format(noticeclient.MetaLayout)
		}
		title := it.Title
		if title == "" {
			title = noticeclient.DefaultTitle
		}
		fprintf(tw, "%s\t%s\t%s\n", when, title, preview(it.Content, 60))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	return nil
}

// preview flattens content to one line of at most n runes.
func preview(content string, n int) string {
	line := strings.Join(strings.Fields(content), " ")
	r := []rune(line)
	if len(r) <= n {
		return line
	}
	return string(r[:n-1]) + "…"
}
