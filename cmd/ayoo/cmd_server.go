package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/internal/kernel"
	"github.com/shashiranjanraj/ayoo/internal/server"
	"github.com/shashiranjanraj/ayoo/pkg/database"
	"github.com/shashiranjanraj/ayoo/pkg/storage"
)

var (
	serveWorkers    int
	serveNoSchedule bool
	serveNoGRPC     bool
)

// ayoo serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP API, gRPC health service and realtime hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		opts := server.Options{
			Port:         config.AppPort(),
			GRPCPort:     config.GRPCPort(),
			QueueWorkers: serveWorkers,
			Scheduler:    !serveNoSchedule,
		}
		if serveNoGRPC {
			opts.GRPCPort = ""
		}
		return server.Run(ctx, c, opts)
	},
}

// ayoo route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		// Routes come from a fully wired kernel on a throwaway database so
		// the listing needs no configuration.
		db, err := database.Open(ctx, "sqlite", "file:route_list?mode=memory&cache=shared")
		if err != nil {
			return err
		}
		disk, err := storage.NewLocal(os.TempDir(), "")
		if err != nil {
			return err
		}
		c, err := kernel.New(kernel.Deps{DB: db, Disk: disk})
		if err != nil {
			return err
		}
		defer c.Close()

		infos := c.Router.Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("METHOD", "PATH", "NAME")
		for _, ri := range infos {
			if err := table.Append([]string{ri.Method, ri.Path, ri.Name}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Printf("%d routes\n", len(infos))
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 4, "In-process queue workers (0 when running queue:work separately)")
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "Do not run scheduled tasks in this process")
	serveCmd.Flags().BoolVar(&serveNoGRPC, "no-grpc", false, "Do not start the gRPC health service")
}
