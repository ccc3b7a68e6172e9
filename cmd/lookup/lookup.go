package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ville-ideale-api/internal/config"
	"ville-ideale-api/internal/logger"
	"ville-ideale-api/internal/models"
	"ville-ideale-api/internal/repository"
	"ville-ideale-api/internal/scraper"
	"ville-ideale-api/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// TownQuery is one row of the input file.
type TownQuery struct {
	Name string
	Code string
}

// TownLookup is the part of the town service the command needs.
type TownLookup interface {
	GetTownInfo(ctx context.Context, name, code string) (*models.TownRecord, bool)
}

func newRootCmd(out io.Writer) *cobra.Command {
	var file, configPath string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up ville-ideale.fr scores for the towns listed in a CSV file",
		Long: "Reads a CSV file with a header row and the columns town,cog_code, " +
			"and writes town,cog_code,postal_code,score for every town found.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}

			queries, err := parseCSV(file)
			if err != nil {
				return fmt.Errorf("error parsing CSV: %w", err)
			}
			log.Info().Int("towns", len(queries)).Str("file", file).Msg("parsed input")

			client := scraper.NewClient(scraper.Options{
				BaseURL:        cfg.BaseURL,
				UserAgent:      cfg.UserAgent,
				RateLimit:      cfg.RateLimit,
				RequestTimeout: cfg.RequestTimeout,
			})
			svc := service.NewTownService(client, repository.NewTownCache(cfg.CacheMaxSize, cfg.CacheTTL))

			missing, err := lookupAll(cmd.Context(), svc, queries, out)
			if err != nil {
				return err
			}
			log.Info().Int("found", len(queries)-missing).Int("missing", missing).Msg("lookup finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the CSV file of towns")
	cmd.Flags().StringVar(&configPath, "config", "./configs", "directory holding app.env")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseCSV(filePath string) ([]TownQuery, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readQueries(file)
}

func readQueries(r io.Reader) ([]TownQuery, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var queries []TownQuery
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(record) < 2 {
			return nil, fmt.Errorf("invalid record length: %d, expected at least 2 columns", len(record))
		}

		// The town name is passed on verbatim: its spacing is part of what the
		// normalizer sees. Only the numeric code is trimmed.
		name, code := record[0], strings.TrimSpace(record[1])
		if strings.TrimSpace(name) == "" || code == "" {
			return nil, fmt.Errorf("empty town or code in record %q", record)
		}
		queries = append(queries, TownQuery{Name: name, Code: code})
	}

	return queries, nil
}

// lookupAll resolves every query in order and writes the found ones to out.
// It returns the number of towns that were not found.
func lookupAll(ctx context.Context, svc TownLookup, queries []TownQuery, out io.Writer) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"town", "cog_code", "postal_code", "score"}); err != nil {
		return 0, err
	}

	missing := 0
	for _, q := range queries {
		town, ok := svc.GetTownInfo(ctx, q.Name, q.Code)
		if !ok {
			log.Warn().Str("town", q.Name).Str("code", q.Code).Msg("unable to find information")
			missing++
			continue
		}
		err := w.Write([]string{
			town.Name,
			town.Code,
			town.PostalCode,
			strconv.FormatFloat(town.Score, 'f', 1, 64),
		})
		if err != nil {
			return missing, err
		}
	}

	w.Flush()
	return missing, w.Error()
}
