package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"metrodoc/internal/client"
	"metrodoc/internal/model"
)

func newNotificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "Read and manage notifications",
	}
	cmd.AddCommand(
		newNotificationsListCmd(a),
		newNotificationsReadCmd(a),
		newNotificationsReadAllCmd(a),
		newNotificationsDeleteCmd(a),
	)
	return cmd
}

func newNotificationsListCmd(a *app) *cobra.Command {
	var past bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List current notifications, or older ones with --past",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.Refresh(cmd.Context()); err != nil {
				return err
			}
			now := time.Now()
			items := ws.CurrentNotifications(now)
			if past {
				items = ws.PastNotifications(now)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d unread\n", ws.UnreadCount())
			return printNotifications(out, ws, items, now)
		},
	}
	cmd.Flags().BoolVar(&past, "past", false, "List notifications older than the window")
	return cmd
}

func printNotifications(w io.Writer, ws *client.Workspace, items []model.Notification, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t \tPRIORITY\tTYPE\tTITLE\tDOCUMENT\tAGE")
	for _, n := range items {
		mark := "*"
		if n.IsRead {
			mark = " "
		}
		doc := "-"
		if d, ok := ws.ResolveDocument(n); ok {
			doc = d.Title
		} else if n.DocumentTitle != nil {
			doc = *n.DocumentTitle + " (removed)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s ago\n",
			n.ID, mark, n.Priority, n.Type, n.Title, doc, units.HumanDuration(now.Sub(n.Timestamp)))
	}
	return tw.Flush()
}

func newNotificationsReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read ID",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %s read\n", args[0])
			return nil
		},
	}
}

func newNotificationsReadAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all notifications marked read")
			return nil
		},
	}
}

func newNotificationsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := ws.DeleteNotification(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
