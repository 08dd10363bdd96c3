package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/api"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	"github.com/luispater/seleniumKeywordAPI/internal/library"
	"github.com/luispater/seleniumKeywordAPI/internal/runner"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultVersion = "1.0.0"

type rootOptions struct {
	configPath string
	cfg        *config.AppConfig
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "seleniumKeywordAPI",
		Short:         "Browser automation keywords over HTTP and YAML suites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.loadConfig(cmd.Flags().Changed("config"))
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "configuration file")

	cmd.AddCommand(newServeCommand(opts), newRunCommand(opts), newKeywordsCommand(opts))
	return cmd
}

// loadConfig reads the configuration file. A missing default file falls back
// to the built-in defaults; a missing explicit file is an error.
func (o *rootOptions) loadConfig(explicit bool) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			log.Debugf("Configuration file %s not found, using defaults", o.configPath)
			cfg = config.Default()
		} else {
			log.Errorf("Load configuare error: %v", err)
			return err
		}
	}
	if !cfg.Debug {
		log.SetLevel(log.InfoLevel)
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	o.cfg = cfg
	return nil
}

func (o *rootOptions) newLibrary() (*library.Library, error) {
	opener, err := library.NewOpener(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create browser opener: %w", err)
	}
	return library.New(o.cfg, opener)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the keyword library over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				opts.cfg.ApiPort = port
			}
			lib, err := opts.newLibrary()
			if err != nil {
				return err
			}
			defer func() {
				log.Debugf("Closing browsers...")
				if errClose := lib.Shutdown(); errClose != nil {
					log.Warnf("Error closing browsers: %v", errClose)
				}
			}()

			log.Info("Starting Selenium Keyword API application...")
			apiConfig := &api.ServerConfig{
				Port:    opts.cfg.ApiPort,
				Debug:   opts.cfg.Debug,
				Version: opts.cfg.Version,
			}
			apiServer := api.NewServer(apiConfig, lib)

			errChan := make(chan error, 1)
			go func() {
				log.Infof("Starting API server on port %s", apiConfig.Port)
				errChan <- apiServer.Start()
			}()

			// Set up graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case err = <-errChan:
				if err != nil {
					log.Errorf("API server failed to start: %v", err)
				}
				return err
			case <-sigChan:
				log.Debugf("Received shutdown signal. Cleaning up...")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err = apiServer.Stop(ctx); err != nil {
				log.Debugf("Error stopping API server: %v", err)
			}
			log.Debugf("Cleanup completed. Exiting...")
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "API port, overrides api-port from the configuration")
	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var variables []string
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "run <suite.yaml|dir>...",
		Short: "Run keyword suites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suites, err := loadSuites(args)
			if err != nil {
				return err
			}
			lib, err := opts.newLibrary()
			if err != nil {
				return err
			}
			defer func() {
				if errClose := lib.Shutdown(); errClose != nil {
					log.Warnf("Error shutting down browser driver: %v", errClose)
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rm := runner.NewRunnerManager(lib)
			for _, v := range variables {
				name, value, ok := strings.Cut(v, "=")
				if !ok {
					return fmt.Errorf("variable '%s' must be name=value", v)
				}
				rm.SetVariable(name, value)
			}

			results := make([]*runner.SuiteResult, 0, len(suites))
			failed := 0
			for _, suite := range suites {
				result := rm.Run(ctx, suite)
				results = append(results, result)
				if !result.Passed() {
					failed++
				}
				if ctx.Err() != nil {
					break
				}
			}

			if jsonOutput {
				data, errMarshal := json.MarshalIndent(results, "", "  ")
				if errMarshal != nil {
					return errMarshal
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				printResults(cmd, results)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d suite(s) failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&variables, "variable", "v", nil, "set a suite variable, name=value (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

func loadSuites(paths []string) ([]*runner.Suite, error) {
	suites := make([]*runner.Suite, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			dirSuites, errLoad := runner.LoadSuites(p)
			if errLoad != nil {
				return nil, errLoad
			}
			suites = append(suites, dirSuites...)
			continue
		}
		suite, err := runner.LoadSuite(p)
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

func printResults(cmd *cobra.Command, results []*runner.SuiteResult) {
	out := cmd.OutOrStdout()
	for _, result := range results {
		fmt.Fprintf(out, "%s  %s (%s)\n", result.Status, result.Name, result.Elapsed.Round(time.Millisecond))
		for _, step := range result.Steps {
			line := fmt.Sprintf("  %s  [%s] %s", step.Status, step.Phase, step.Keyword)
			if len(step.Args) > 0 {
				line += "  " + strings.Join(step.Args, "  ")
			}
			if step.Error != "" {
				line += "\n        " + step.Error
			}
			fmt.Fprintln(out, line)
		}
	}
}

func newKeywordsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords [name]",
		Short: "List keywords or show the documentation of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.newLibrary()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range lib.KeywordNames() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			info, ok := lib.KeywordInfo(args[0])
			if !ok {
				return fmt.Errorf("%w '%s' found", library.ErrUnknownKeyword, args[0])
			}
			fmt.Fprintf(out, "%s\n  Arguments: %s\n\n  %s\n", info.Name, strings.Join(info.Args, ", "), info.Doc)
			return nil
		},
	}
}
