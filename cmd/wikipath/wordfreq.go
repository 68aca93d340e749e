package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/wikipath-mcp/internal/storage"
)

var wordfreqFormat string

var wordfreqCmd = &cobra.Command{
	Use:   "wordfreq",
	Short: "Manage the word frequency table used for word uniqueness",
}

var wordfreqImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load word frequencies into the page cache database",
	Long: `Load word frequencies (0 to 1, fraction of corpus words) into the page
cache database. The Wikipedia source reads them to weight rare title words.

Accepted formats:
  json  {"the": 0.05, "strawberry": 0.000004}
  csv   word,frequency rows; a header row is skipped`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open word frequency file: %w", err)
		}
		defer func() { _ = f.Close() }()

		format := wordfreqFormat
		if format == "" {
			format = strings.TrimPrefix(strings.ToLower(filepath.Ext(args[0])), ".")
		}

		frequencies, err := parseFrequencies(f, format)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		n, err := storage.ImportWordFrequencies(cmd.Context(), store, frequencies)
		if err != nil {
			return err
		}
		logger.Info("imported word frequencies", "count", n, "db", cfg.Cache.DBPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d word frequencies\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wordfreqCmd)
	wordfreqCmd.AddCommand(wordfreqImportCmd)

	wordfreqImportCmd.Flags().StringVar(&wordfreqFormat, "format", "", "input format, json or csv (default from file extension)")
}

// parseFrequencies reads a word to frequency table in the given format
func parseFrequencies(r io.Reader, format string) (map[string]float64, error) {
	switch format {
	case "json":
		frequencies := make(map[string]float64)
		if err := json.NewDecoder(r).Decode(&frequencies); err != nil {
			return nil, fmt.Errorf("failed to decode word frequencies: %w", err)
		}
		return frequencies, nil
	case "csv", "tsv":
		return parseFrequencyRows(r, format == "tsv")
	default:
		return nil, fmt.Errorf("unsupported word frequency format %q", format)
	}
}

func parseFrequencyRows(r io.Reader, tabs bool) (map[string]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	if tabs {
		reader.Comma = '\t'
	}

	frequencies := make(map[string]float64)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read word frequencies: %w", err)
		}

		freq, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			if line == 1 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: invalid frequency %q", line, record[1])
		}
		frequencies[record[0]] = freq
	}
	return frequencies, nil
}
