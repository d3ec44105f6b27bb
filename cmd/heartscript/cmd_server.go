package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/heartscript/internal/kernel"
	"github.com/shashiranjanraj/heartscript/internal/server"
	"github.com/shashiranjanraj/heartscript/pkg/database"
	"github.com/shashiranjanraj/heartscript/pkg/ws"
)

var serveOpts = server.DefaultOptions()

// heartscript serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(serveOpts)
	},
}

// heartscript route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The kernel needs a database handle to build; nothing is queried.
		db, err := database.Open("sqlite", ":memory:")
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		k, err := kernel.New(kernel.Deps{DB: db, SessionSecret: "route-list", Hub: ws.NewHub()})
		if err != nil {
			return err
		}
		return printRoutes(cmd.OutOrStdout(), k)
	},
}

func printRoutes(out io.Writer, k *kernel.Kernel) error {
	infos := k.Router.Routes()
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}

func init() {
	serveCmd.Flags().IntVar(&serveOpts.Workers, "workers", serveOpts.Workers, "goroutines running async event listeners")
	serveCmd.Flags().IntVar(&serveOpts.Queue, "queue", serveOpts.Queue, "pending listener jobs before submitters block")
	serveCmd.Flags().IntVar(&serveOpts.LoginAttempts, "login-attempts", serveOpts.LoginAttempts, "login attempts per minute and IP (0 disables)")
}
