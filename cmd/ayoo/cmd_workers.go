package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/internal/kernel"
	"github.com/shashiranjanraj/ayoo/pkg/stream"
)

var (
	queueWorkersFlag int
	tailGroupFlag    string
)

// ayoo queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}
		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		c.Queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

// ayoo queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		c, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		failed, err := c.Queue.ListFailed(ctx)
		if err != nil {
			return err
		}
		if len(failed) == 0 {
			fmt.Println("No failed jobs.")
			return nil
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "JOB", "ATTEMPTS", "FAILED AT", "ERROR")
		for _, f := range failed {
			row := []string{
				strconv.FormatUint(uint64(f.ID), 10),
				f.JobType,
				strconv.Itoa(f.Attempts),
				f.FailedAt.Format(time.DateTime),
				f.Error,
			}
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	},
}

// ayoo queue:retry <id>...|all
var queueRetryCmd = &cobra.Command{
	Use:   "queue:retry <id>... | all",
	Short: "Push failed jobs back onto the queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if config.QueueDriver() != "redis" {
			return errors.New("queue:retry needs QUEUE_DRIVER=redis; the memory queue belongs to the server process")
		}
		c, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		var ids []uint
		if len(args) == 1 && args[0] == "all" {
			failed, err := c.Queue.ListFailed(ctx)
			if err != nil {
				return err
			}
			for _, f := range failed {
				ids = append(ids, f.ID)
			}
		} else {
			for _, a := range args {
				id, err := strconv.ParseUint(a, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid job id %q", a)
				}
				ids = append(ids, uint(id))
			}
		}

		for _, id := range ids {
			if err := c.Queue.Retry(ctx, id); err != nil {
				return fmt.Errorf("retry %d: %w", id, err)
			}
			fmt.Printf("Job %d pushed back onto the queue.\n", id)
		}
		return nil
	},
}

// ayoo schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Start the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		s, err := c.Schedule()
		if err != nil {
			return err
		}
		fmt.Println("Registered scheduled tasks:")
		for _, t := range s.List() {
			fmt.Println("  -", t)
		}
		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		s.Start(ctx)
		return nil
	},
}

// ayoo events:tail
var eventsTailCmd = &cobra.Command{
	Use:   "events:tail",
	Short: "Print order events from the Kafka order log",
	RunE: func(cmd *cobra.Command, args []string) error {
		brokers := config.KafkaBrokers()
		if len(brokers) == 0 {
			return errors.New("KAFKA_BROKERS is not set")
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		topic := config.KafkaOrderTopic()
		r := stream.NewKafkaReader(brokers, topic, tailGroupFlag)
		defer r.Close()

		fmt.Printf("Tailing %s. Press Ctrl+C to stop.\n", topic)
		return stream.Tail(ctx, r, func(ev stream.Event) error {
			fmt.Printf("%s  %-26s order=%s status=%s\n",
				ev.Occurred.Format("2006-01-02T15:04:05.000Z07:00"), ev.Name, ev.OrderID, ev.Status)
			return nil
		})
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
	eventsTailCmd.Flags().StringVarP(&tailGroupFlag, "group", "g", "ayoo-tail", "Kafka consumer group")
}
