package main

import (
	"errors"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"heatopt/config"
	"heatopt/store"
)

var (
	cfgPath  string
	logLevel string
	dbPath   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "heatopt",
	Short: "Sweep the inclusion radius of a heated square plate",
	Long: `heatopt solves one heat conduction problem per inclusion radius,
takes the mean temperature along the bottom edge and plots it against the
radius to find the radius that heats the edge most.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("heatopt failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath, "ini configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override [log] Level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite run store, overrides [store] Path")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		log.WithField("path", cfgPath).Warn("no config file, using defaults")
		c, err = config.Default(), nil
	}
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dbPath != "" {
		c.StorePath = dbPath
	}
	if err := c.SetupLogging(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// openStore opens the configured run store, or returns nil when none is set.
func openStore() (*store.Store, error) {
	if cfg.StorePath == "" {
		return nil, nil
	}
	return store.Open(cfg.StorePath)
}

func requireStore() (*store.Store, error) {
	st, err := openStore()
	if err == nil && st == nil {
		err = errors.New("no run store: pass --db or set [store] Path")
	}
	return st, err
}
