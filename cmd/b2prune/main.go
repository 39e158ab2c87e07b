package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dev-tams/b2prune/internal/app"
	"github.com/dev-tams/b2prune/internal/config"
	"github.com/dev-tams/b2prune/internal/notify"
	"github.com/dev-tams/b2prune/internal/store"
)

func main() {
	cliApp := &cli.App{
		Name:  "b2prune",
		Usage: "delete old object versions from a bucket, keeping the newest",
		Commands: []*cli.Command{
			{
				Name:      "prune",
				Usage:     "delete all but the newest version of each file",
				ArgsUsage: "<bucket_name>",
				Flags: append(
					commonFlags(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "preview deletions without performing them",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "skip the confirmation prompt (for scripted use)",
					},
					&cli.IntFlag{
						Name:  "keep",
						Value: 1,
						Usage: "number of newest versions to keep per file",
					},
				),
				Action: pruneAction,
			},
			{
				Name:      "list",
				Usage:     "show the version inventory of a bucket, newest first",
				ArgsUsage: "<bucket_name>",
				Flags:     commonFlags(),
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("usage: b2prune list <bucket_name>")
					}
					bucket := c.Args().First()

					cfg, err := loadOptionalConfig(c.String("config"))
					if err != nil {
						return err
					}
					st, err := store.FromConfig(c.Context, cfg, c.String("backend"), bucket)
					if err != nil {
						return err
					}
					return app.RunList(c.Context, st, bucket, os.Stdout)
				},
			},
			{
				Name:      "check",
				Usage:     "verify the configured backend is usable",
				ArgsUsage: "<bucket_name>",
				Flags:     commonFlags(),
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return fmt.Errorf("usage: b2prune check <bucket_name>")
					}
					bucket := c.Args().First()

					cfg, err := loadOptionalConfig(c.String("config"))
					if err != nil {
						return err
					}
					st, err := store.FromConfig(c.Context, cfg, c.String("backend"), bucket)
					if err != nil {
						return err
					}
					if err := st.Check(c.Context); err != nil {
						return fmt.Errorf("check failed: %w", err)
					}
					fmt.Printf("check OK: bucket=%s backend=%s\n", bucket, st.Name())
					return nil
				},
			},
			{
				Name:  "daemon",
				Usage: "prune configured buckets on a schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "path to config yaml",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "enable verbose output",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadValidatedConfig(c.String("config"))
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					return app.RunDaemon(ctx, cfg, c.Bool("verbose"))
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func pruneAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: b2prune prune <bucket_name> [--dry-run]")
	}
	bucket := c.Args().First()

	cfg, err := loadOptionalConfig(c.String("config"))
	if err != nil {
		return err
	}

	st, err := store.FromConfig(c.Context, cfg, c.String("backend"), bucket)
	if err != nil {
		return err
	}

	dryRun := c.Bool("dry-run")
	if dryRun {
		fmt.Println("Running in dry run mode. No files will be actually deleted.")
	} else if !c.Bool("yes") {
		if !app.Confirm(os.Stdin, os.Stdout) {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	var dispatcher *notify.Dispatcher
	if cfg != nil && len(cfg.Notifications) > 0 {
		dispatcher, err = notify.NewDispatcher(cfg.Notifications)
		if err != nil {
			return err
		}
	}

	res, runErr := app.RunPrune(c.Context, st, app.PruneOptions{
		Bucket:  bucket,
		DryRun:  dryRun,
		Keep:    c.Int("keep"),
		Verbose: c.Bool("verbose"),
	})
	app.NotifyResult(c.Context, dispatcher, res, runErr, c.Bool("verbose"))
	return runErr
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to config yaml (optional; defaults to the b2 CLI backend)",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "backend name from config (defaults to the first one)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose output",
		},
	}
}

func loadOptionalConfig(cfgPath string) (*config.Config, error) {
	if cfgPath == "" {
		return nil, nil
	}
	return loadValidatedConfig(cfgPath)
}

func loadValidatedConfig(cfgPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
