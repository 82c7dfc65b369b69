package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"ethicscore/internal/app"
	"ethicscore/internal/catalog"
	"ethicscore/internal/config"
	"ethicscore/internal/model"
	"ethicscore/internal/scoring"
	"ethicscore/internal/service"
)

var errUnmappedLabels = errors.New("catalog has unmapped principle labels")

func connect(ctx context.Context) (*app.App, *slog.Logger, error) {
	cfg := config.Load()
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	a, err := app.New(ctx, cfg, logger)
	return a, logger, err
}

func newAuditCmd() *cobra.Command {
	var builtin bool
	cmd := &cobra.Command{
		Use:   "audit-principles",
		Short: "Check that every catalog question maps to a canonical principle",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if builtin {
				cfg := config.Load()
				aliases, err := config.LoadAliases(cfg.PrincipleAliasesFile)
				if err != nil {
					return err
				}
				canon, err := scoring.NewCanonicalizer(aliases)
				if err != nil {
					return err
				}
				return auditQuestions(cmd.OutOrStdout(), canon, catalog.Questions())
			}

			a, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			questions, err := a.CatalogRepo.GetAllQuestions(ctx)
			if err != nil {
				return err
			}
			return auditQuestions(cmd.OutOrStdout(), a.Canonicalizer, questions)
		},
	}
	cmd.Flags().BoolVar(&builtin, "builtin", false, "audit the built-in sample catalog instead of the database")
	return cmd
}

// auditQuestions prints one line per unmapped label and fails when any exist
func auditQuestions(out io.Writer, canon *scoring.Canonicalizer, questions []model.Question) error {
	issues := canon.Audit(questions)
	for _, issue := range issues {
		fmt.Fprintf(out, "%s\t%s\t%s\n", issue.QuestionnaireKey, issue.QuestionCode, issue.Detail)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %d of %d questions", errUnmappedLabels, len(issues), len(questions))
	}
	fmt.Fprintf(out, "all %d questions map to a canonical principle\n", len(questions))
	return nil
}

func newRecomputeCmd() *cobra.Command {
	var filter service.RecomputeFilter
	var projectID string
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute stored Scores, combined Scores and the project rollup",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, logger, err := connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			summary, err := a.ScoreService.RecomputeProject(ctx, projectID, filter)
			if err != nil {
				return err
			}
			logger.Info("recompute finished", "project_id", projectID, "scores", summary.Scores, "combined", summary.Combined)
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d scores and %d combined scores for %s\n", summary.Scores, summary.Combined, projectID)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id (required)")
	cmd.Flags().StringVar(&filter.UserID, "user", "", "only this evaluator")
	cmd.Flags().StringVar(&filter.QuestionnaireKey, "questionnaire", "", "only this questionnaire")
	cmd.Flags().StringVar(&filter.Role, "role", "", "only this role")
	cmd.MarkFlagRequired("project")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the sample general and role questionnaires",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, logger, err := connect(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			questionnaires := catalog.Questionnaires()
			for i := range questionnaires {
				if err := a.CatalogRepo.UpsertQuestionnaire(ctx, &questionnaires[i]); err != nil {
					return fmt.Errorf("seed questionnaire %s: %w", questionnaires[i].Key, err)
				}
			}
			questions := catalog.Questions()
			for i := range questions {
				if err := a.CatalogRepo.UpsertQuestion(ctx, &questions[i]); err != nil {
					return fmt.Errorf("seed question %s: %w", questions[i].ID, err)
				}
			}
			logger.Info("catalog seeded", "questionnaires", len(questionnaires), "questions", len(questions))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d questionnaires and %d questions\n", len(questionnaires), len(questions))
			return nil
		},
	}
}
