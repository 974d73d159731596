package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/questionbank"
	pgRepo "github.com/yourusername/examprep-api/internal/repository/postgres"
	"github.com/yourusername/examprep-api/pkg/database"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Validate and import question documents",
}

var questionsValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check question documents against the document schema",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := questionbank.ReadDocuments(args...)
		if err != nil {
			return err
		}
		failed := 0
		for _, doc := range docs {
			if err := questionbank.ValidateDocument(doc.Data); err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", doc.Name, err)
				continue
			}
			raws, _ := questionbank.ParseDocument(doc.Data)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d questions\n", doc.Name, len(raws))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents are invalid", failed, len(docs))
		}
		return nil
	},
}

var questionsImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Upsert questions from documents into the database",
	Long: "import normalizes the documents the same way the service does for static files and upserts the result. " +
		"Questions marked is_active=false are stored deactivated.",
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	questionsImportCmd.Flags().Bool("skip-validation", false, "Import documents that do not pass schema validation")
	questionsImportCmd.Flags().Bool("dry-run", false, "Normalize and report without writing to the database")
	questionsImportCmd.Flags().Duration("timeout", 2*time.Minute, "Import timeout")

	questionsCmd.AddCommand(questionsValidateCmd)
	questionsCmd.AddCommand(questionsImportCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	skipValidation, _ := cmd.Flags().GetBool("skip-validation")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	questions, err := collectQuestions(args, skipValidation)
	if err != nil {
		return err
	}
	inactive := inactiveIDs(questions)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Prepared %d questions (%d inactive)\n", len(questions), len(inactive))
	if dryRun || len(questions) == 0 {
		return nil
	}

	dsn, err := resolveDSN(cmd)
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(dsn, false)
	if err != nil {
		return err
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	repo := pgRepo.NewQuestionRepo(db)
	upserted, err := repo.UpsertBatch(ctx, questions)
	if err != nil {
		return fmt.Errorf("upsert questions: %w", err)
	}
	// Колонка is_active имеет default true, поэтому false выставляем отдельным запросом
	deactivated, err := repo.Deactivate(ctx, inactive)
	if err != nil {
		return fmt.Errorf("deactivate questions: %w", err)
	}
	fmt.Fprintf(out, "Upserted %d rows, deactivated %d\n", upserted, deactivated)
	return nil
}

// collectQuestions читает документы по порядку и нормализует их как единый список
func collectQuestions(paths []string, skipValidation bool) ([]entity.Question, error) {
	docs, err := questionbank.ReadDocuments(paths...)
	if err != nil {
		return nil, err
	}
	var merged []questionbank.RawQuestion
	for _, doc := range docs {
		if !skipValidation {
			if err := questionbank.ValidateDocument(doc.Data); err != nil {
				return nil, fmt.Errorf("%s: %w", doc.Name, err)
			}
		}
		raws, err := questionbank.ParseDocument(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Name, err)
		}
		merged = append(merged, raws...)
	}
	questions := questionbank.Dedupe(questionbank.NormalizeAll(merged))
	if len(questions) == 0 && len(docs) > 0 {
		return nil, errors.New("documents contain no questions")
	}
	return questions, nil
}

func inactiveIDs(questions []entity.Question) []string {
	var ids []string
	for _, q := range questions {
		if !q.IsActive {
			ids = append(ids, q.ID)
		}
	}
	return ids
}
