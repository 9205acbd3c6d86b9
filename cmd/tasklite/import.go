package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/tasklite/internal/source/remote"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge tasks from the remote collection",
		Long: `Fetch the remote task collection and add every task whose title is
not already in the local list. Titles are compared case-insensitively
after trimming whitespace. Nothing is written if the fetch fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			e, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if url == "" {
				url = e.cfg.Remote.URL
			}
			client := remote.NewClient(url, remote.WithMaxRetries(e.cfg.Remote.MaxRetries))

			e.log.WithField("url", url).Debug("starting remote import")
			result, err := e.session.Import(ctx, client)
			if err != nil {
				if result.Inserted > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d task(s) were imported before the failure\n", result.Inserted)
				}
				return err
			}

			printNotifications(cmd.OutOrStdout(), e.session)
			last := e.session.LastSync()
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s at %s\n", client.URL(), last.LastSync.Format(time.DateTime))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "remote collection URL (overrides remote.url)")
	cmd.Flags().DurationVar(&opts.fetchTimeout, "timeout", 0, "fetch timeout (overrides remote.timeout_sec)")
	return cmd
}
