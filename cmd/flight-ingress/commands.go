package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/config"
	"github.com/skylens/flight-ingress/pkg/connector"
	"github.com/skylens/flight-ingress/pkg/extract"
	"github.com/skylens/flight-ingress/pkg/loader"
)

var (
	flagConfig            string
	flagMapping           string
	flagDataDir           string
	flagFile              string
	flagAll               bool
	flagGlob              string
	flagIndex             string
	flagBatchSize         int
	flagRefresh           bool
	flagAirportsFile      string
	flagCancellationsFile string
	flagDeleteAll         bool
	flagOutDir            string
)

var rootCmd = &cobra.Command{
	Use:           "flight-ingress",
	Short:         "Bulk-load flight performance extracts into a search store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "config/elasticsearch.yml", "Path to store connection YAML")

	importCmd.Flags().StringVarP(&flagMapping, "mapping", "m", "", "Path to index mapping JSON")
	importCmd.Flags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory containing data files")
	importCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Only import the specified file")
	importCmd.Flags().BoolVarP(&flagAll, "all", "a", false, "Import all files found in the data directory")
	importCmd.Flags().StringVarP(&flagGlob, "glob", "g", "", "Import files matching the glob pattern")
	importCmd.Flags().StringVar(&flagIndex, "index", "", "Override index name prefix")
	importCmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "Documents per bulk request")
	importCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Request an index refresh after each bulk request")
	importCmd.Flags().StringVar(&flagAirportsFile, "airports-file", "", "Path to airports reference CSV")
	importCmd.Flags().StringVar(&flagCancellationsFile, "cancellations-file", "", "Path to cancellations reference CSV")

	sampleCmd.Flags().StringVarP(&flagMapping, "mapping", "m", "", "Path to index mapping JSON")
	sampleCmd.Flags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory containing data files")
	sampleCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Sample the specified file")
	sampleCmd.Flags().StringVar(&flagAirportsFile, "airports-file", "", "Path to airports reference CSV")
	sampleCmd.Flags().StringVar(&flagCancellationsFile, "cancellations-file", "", "Path to cancellations reference CSV")

	deleteIndexCmd.Flags().StringVar(&flagIndex, "index", "", "Index name pattern to delete")
	deleteIndexCmd.Flags().BoolVar(&flagDeleteAll, "all", false, "Delete all indices under the configured prefix")

	extractCmd.Flags().StringVar(&flagOutDir, "out-dir", "out", "Directory for extracted per-year artifacts")
	extractCmd.Flags().StringVar(&flagIndex, "prefix", "", "Output artifact name prefix")

	rootCmd.AddCommand(importCmd, sampleCmd, statusCmd, deleteIndexCmd, extractCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import flight data files",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := connector.NewFactory(cfg, logger).CreateStore()
		if err != nil {
			return err
		}

		mapping, err := config.LoadMapping(cfg.MappingFile)
		if err != nil {
			return err
		}

		ldr, err := loader.NewFlightLoader(
			store,
			mapping,
			cfg.IndexPrefix,
			cfg.BatchSize,
			cfg.Refresh,
			cfg.AirportsFile,
			cfg.CancellationsFile,
			logger,
		)
		if err != nil {
			return err
		}

		files, err := filesToProcess(cfg)
		if err != nil {
			return err
		}

		if err := ldr.ImportFiles(context.Background(), files); err != nil {
			return err
		}

		logger.Info("Total time", zap.Duration("elapsed", time.Since(start)))
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the first transformed document and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		// Sample mode never touches the store.
		ldr, err := loader.NewFlightLoader(
			nil, nil,
			cfg.IndexPrefix, 1, false,
			cfg.AirportsFile, cfg.CancellationsFile,
			logger,
		)
		if err != nil {
			return err
		}

		files, err := filesToProcess(cfg)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no files found to sample")
		}

		doc, err := ldr.SampleDocument(files[0])
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("no document found in %s", files[0])
		}

		pretty, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(pretty))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Test the connection and print cluster health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := connector.NewFactory(cfg, logger).CreateStore()
		if err != nil {
			return err
		}

		health, err := store.ClusterHealth(context.Background())
		if err != nil {
			return fmt.Errorf("failed to retrieve cluster status: %w", err)
		}

		status, _ := health["status"].(string)
		activeShards, _ := health["active_shards"].(float64)
		nodes, _ := health["number_of_nodes"].(float64)

		logger.Info("Cluster status",
			zap.String("status", status),
			zap.Int("activeShards", int(activeShards)),
			zap.Int("nodes", int(nodes)))
		return nil
	},
}

var deleteIndexCmd = &cobra.Command{
	Use:   "delete-index",
	Short: "Delete indices matching the index pattern",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := connector.NewFactory(cfg, logger).CreateStore()
		if err != nil {
			return err
		}

		pattern := cfg.IndexPrefix
		if flagDeleteAll || pattern == "" {
			pattern = cfg.IndexPrefix + "-*"
		}
		if !strings.HasSuffix(pattern, "*") {
			pattern += "-*"
		}

		logger.Info("Searching for indices", zap.String("pattern", pattern))

		deleted, err := connector.DeleteIndicesByPattern(context.Background(), store, pattern)
		if err != nil {
			return fmt.Errorf("failed to delete indices matching %s: %w", pattern, err)
		}

		if len(deleted) == 0 {
			logger.Info("No indices matched", zap.String("pattern", pattern))
		} else {
			logger.Info("Indices deleted", zap.Strings("indices", deleted))
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract reference archives into per-year artifacts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		prefix := cfg.IndexPrefix
		if flagIndex != "" {
			prefix = flagIndex
		}

		ex := extract.NewExtractor(flagOutDir, prefix, logger)
		_, err = ex.Run(context.Background(), args)
		return err
	},
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagMapping != "" {
		cfg.MappingFile = flagMapping
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagIndex != "" {
		cfg.IndexPrefix = flagIndex
	}
	if flagBatchSize > 0 {
		cfg.BatchSize = flagBatchSize
	}
	if flagRefresh {
		cfg.Refresh = true
	}
	if flagAirportsFile != "" {
		cfg.AirportsFile = flagAirportsFile
	}
	if flagCancellationsFile != "" {
		cfg.CancellationsFile = flagCancellationsFile
	}

	return cfg, nil
}

// filesToProcess resolves the input file set from --file, --glob, or the
// data directory.
func filesToProcess(cfg *config.Config) ([]string, error) {
	if flagFile != "" {
		return []string{resolveFile(flagFile, cfg.DataDir)}, nil
	}

	if flagGlob != "" {
		files, err := globFiles(flagGlob)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			files, err = globFiles(filepath.Join(cfg.DataDir, flagGlob))
			if err != nil {
				return nil, err
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no files found matching pattern: %s", flagGlob)
		}
		return files, nil
	}

	// Default: every data file in the data directory.
	var all []string
	for _, pattern := range []string{"*.zip", "*.csv", "*.csv.gz"} {
		matches, err := globFiles(filepath.Join(cfg.DataDir, pattern))
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no .zip, .csv, or .csv.gz files found in %s", cfg.DataDir)
	}

	return all, nil
}

func globFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	return files, nil
}

func resolveFile(path, dataDir string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}

	candidate := filepath.Join(dataDir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return path
}
