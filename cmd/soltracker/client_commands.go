package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brojonat/soltracker/client"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func activitiesCommand() *cli.Command {
	return &cli.Command{
		Name:      "activities",
		Aliases:   []string{"act"},
		Usage:     "Fetch recent activity for a wallet address",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLTRACKER_SERVER_URL"},
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output activities as JSON",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "Apply a jq filter to the JSON result (implies --json)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Show at most this many records (0 = all the server returns)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}

			address := c.Args().Get(0)
			serverURL := c.String("server")
			jsonOutput := c.Bool("json")
			jqFilter := c.String("jq")

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError, // Only errors to stderr
			}))

			cl := client.NewClient(serverURL, nil, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			activities, err := cl.Activities(ctx, address)
			if err != nil {
				return fmt.Errorf("failed to fetch activities: %w", err)
			}

			if limit := c.Int("limit"); limit > 0 && limit < len(activities) {
				activities = activities[:limit]
			}

			if jqFilter != "" {
				return printFiltered(activities, jqFilter)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(activities)
			}

			printActivityTable(activities)
			return nil
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check service health",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLTRACKER_SERVER_URL"},
			},
		},
		Action: func(c *cli.Context) error {
			cl := client.NewClient(c.String("server"), nil, nil)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := cl.Health(ctx); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
}

// printFiltered applies a jq filter to the activity list and prints each
// result on its own line.
func printFiltered(activities []client.Activity, filter string) error {
	query, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}

	// Round-trip through JSON so gojq sees plain maps and slices.
	raw, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("failed to marshal activities: %w", err)
	}
	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("failed to unmarshal activities: %w", err)
	}

	iter := code.Run(input)
	enc := json.NewEncoder(os.Stdout)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq filter failed: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// printActivityTable renders activities in a human-readable table.
func printActivityTable(activities []client.Activity) {
	if len(activities) == 0 {
		fmt.Println("No recent activity.")
		return
	}

	fmt.Printf("%-24s %-12s %-23s %-12s %-12s %-8s\n",
		"SIGNATURE", "SLOT", "BLOCK TIME", "SOL", "FEE", "STATUS")
	for _, a := range activities {
		sig := a.Signature
		if len(sig) > 20 {
			sig = sig[:20] + "..."
		}

		blockTime := "-"
		if a.BlockTime != nil {
			blockTime = *a.BlockTime
		}

		sol := "-"
		if a.SolAmount != nil {
			sol = fmt.Sprintf("%+.9f", *a.SolAmount)
		}

		fee := "-"
		if a.Fee != nil {
			fee = fmt.Sprintf("%d", *a.Fee)
		}

		fmt.Printf("%-24s %-12d %-23s %-12s %-12s %-8s\n",
			sig, a.Slot, blockTime, sol, fee, a.Status)
	}
}
