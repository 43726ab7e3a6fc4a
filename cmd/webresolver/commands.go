package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/webresolver-client/internal/app"
	"github.com/samvad-hq/webresolver-client/internal/config"
	"github.com/samvad-hq/webresolver-client/internal/logger"
	"github.com/samvad-hq/webresolver-client/internal/render"
	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// errRejected signals that the lookup was rejected locally; the message has
// already been printed.
var errRejected = errors.New("lookup rejected")

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "webresolver",
		Short:         "Query the webresolver lookup API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "configs/.env", "dotenv file to load before reading the environment")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.LoadFrom(envFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newQueryCmd(loadConfig), newRunCmd(loadConfig), newActionsCmd())
	return root
}

func newQueryCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		port       int
		loggerName string
	)

	cmd := &cobra.Command{
		Use:   "query <action> [value]",
		Short: "Run a single lookup and print the response",
		Long: `Run a single lookup and print the response body.

Examples:
  webresolver query dns example.com
  webresolver query ip2skype 8.8.8.8
  webresolver query portscan example.com --port 443
  webresolver query iplogger 1234 --logger youtube`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := webresolver.ParseAction(args[0])
			if err != nil {
				return err
			}
			req := webresolver.Request{Action: action, Logger: loggerName}
			if len(args) == 2 {
				req.Query = args[1]
			}
			if cmd.Flags().Changed("port") {
				req.Port = &port
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := logger.InitWriter(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Close()

			res, err := app.NewClient(cfg, log).Do(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Result(res))
			if res.Invalid() {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to scan (portscan only)")
	cmd.Flags().StringVar(&loggerName, "logger", "", "logger name (iplogger only)")
	return cmd
}

func newRunCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the configured lookups once, or on run_interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := logger.Init(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Close()

			log.InfoObj("webresolver runner starting", "config", map[string]any{
				"app_env":      cfg.Env,
				"endpoint":     cfg.Endpoint,
				"lookups_file": cfg.LookupsFile,
				"sinks_file":   cfg.SinksFile,
				"run_interval": cfg.RunInterval.String(),
				"storage_type": cfg.StorageType,
				"api_key_set":  strings.TrimSpace(cfg.APIKey) != "",
			})

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				log.ErrorObj("failed to initialize runner", "error", err.Error())
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					log.ErrorObj("shutdown failed", "error", cerr.Error())
				}
			}()

			if err := a.Run(cmd.Context()); err != nil {
				return fmt.Errorf("lookup run: %w", err)
			}
			return nil
		},
	}
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the supported actions and the input each expects",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, a := range webresolver.Actions() {
				input := a.Field()
				if input == "" {
					input = "id (--logger name)"
				}
				fmt.Fprintf(out, "%-18s %s\n", a, input)
			}
		},
	}
}
