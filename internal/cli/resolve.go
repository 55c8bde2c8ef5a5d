package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-twin/internal/config"
	"github.com/nguyentantai21042004/meeting-twin/internal/entity"
	"github.com/nguyentantai21042004/meeting-twin/internal/failure"
	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

func NewResolveCmd(deps *Dependencies) *cobra.Command {
	var (
		noFuzzy   bool
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "resolve <text>",
		Short: "Show the people, projects and terms found in a piece of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(deps.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			log := logger.New(cfg.Logging.Level)
			registry := entity.NewRegistry(log, failure.NewSink(log), 0, cfg.Entities.FuzzyThreshold)
			src := entity.FileSource{
				PeopleFile:   cfg.Entities.PeopleFile,
				ProjectsFile: cfg.Entities.ProjectsFile,
				GlossaryFile: cfg.Entities.GlossaryFile,
			}
			if err := registry.Reload(context.Background(), src); err != nil {
				return fmt.Errorf("loading entities: %w", err)
			}

			text := strings.Join(args, " ")
			opts := []entity.ResolveOption{entity.WithFuzzy(!noFuzzy)}
			if threshold > 0 {
				opts = append(opts, entity.WithThreshold(threshold))
			}

			out := newFormatter(os.Stdout)
			out.Resolution(registry.Resolve(text, opts...))
			out.Glossary(registry.FindGlossaryTerms(text))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noFuzzy, "no-fuzzy", false, "only report exact alias matches")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "fuzzy score threshold (default from config)")

	return cmd
}
