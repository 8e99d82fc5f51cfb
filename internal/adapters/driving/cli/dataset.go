package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

var (
	datasetListMode    string
	datasetCreateMode  string
	datasetDescription string
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage text datasets",
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets in the active workspace",
	RunE:  runDatasetList,
}

var datasetCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetCreate,
}

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete [dataset-id]",
	Short: "Delete a dataset and its texts",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetDelete,
}

var datasetTextsCmd = &cobra.Command{
	Use:   "texts [dataset-id]",
	Short: "List the texts of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetTexts,
}

var datasetImportCmd = &cobra.Command{
	Use:   "import [dataset-id] [files...]",
	Short: "Import files as texts",
	Long: `Extract the text of each file and add it to the dataset.

Supported formats: plain text, CSV, JSON, XML, Markdown, HTML, Word (.docx)
and email (.eml). Files that cannot be read are reported and skipped.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDatasetImport,
}

func init() {
	datasetListCmd.Flags().StringVarP(&datasetListMode, "mode", "m", "", "only list datasets of this mode")
	datasetCreateCmd.Flags().StringVarP(&datasetCreateMode, "mode", "m", "extraction", "annotation mode: extraction or segmentation")
	datasetCreateCmd.Flags().StringVarP(&datasetDescription, "description", "d", "", "dataset description")

	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetCreateCmd)
	datasetCmd.AddCommand(datasetDeleteCmd)
	datasetCmd.AddCommand(datasetTextsCmd)
	datasetCmd.AddCommand(datasetImportCmd)
	rootCmd.AddCommand(datasetCmd)
}

func runDatasetList(cmd *cobra.Command, _ []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	mode, err := parseMode(datasetListMode)
	if err != nil {
		return err
	}

	datasets, err := dataService.ListDatasets(cmd.Context(), mode)
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}
	if len(datasets) == 0 {
		cmd.Println("No datasets.")
		return nil
	}

	rows := make([][]string, len(datasets))
	for i, d := range datasets {
		rows[i] = []string{d.ID, d.Name, d.Mode.String(), truncate(d.Description, 40)}
	}
	printTable(cmd, []string{"ID", "NAME", "MODE", "DESCRIPTION"}, rows)
	return nil
}

func runDatasetCreate(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	mode, err := parseMode(datasetCreateMode)
	if err != nil {
		return err
	}

	dataset, err := dataService.CreateDataset(cmd.Context(), domain.Dataset{
		Name:        args[0],
		Description: datasetDescription,
		Mode:        mode,
	})
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	cmd.Printf("Created dataset %s (%s)\n", dataset.Name, dataset.ID)
	return nil
}

func runDatasetDelete(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	if err := dataService.DeleteDataset(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	cmd.Printf("Deleted dataset %s\n", args[0])
	return nil
}

func runDatasetTexts(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	texts, err := dataService.ListTexts(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list texts: %w", err)
	}
	if len(texts) == 0 {
		cmd.Println("No texts.")
		return nil
	}

	rows := make([][]string, len(texts))
	for i, t := range texts {
		rows[i] = []string{t.ID, t.Filename, truncate(t.Text, 50)}
	}
	printTable(cmd, []string{"ID", "FILENAME", "TEXT"}, rows)
	return nil
}

func runDatasetImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	files := make([]domain.RawFile, 0, len(args)-1)
	for _, path := range args[1:] {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, domain.RawFile{Filename: filepath.Base(path), Content: content})
	}

	result, err := importService.ImportTexts(cmd.Context(), args[0], files)
	if result != nil {
		for _, t := range result.Imported {
			cmd.Printf("  %s %s\n", outputStyles.Success.Render("imported"), t.Filename)
		}
		for _, f := range result.Failed {
			cmd.Printf("  %s %s: %v\n", outputStyles.Warning.Render("skipped "), f.Filename, f.Err)
		}
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d of %d files\n", len(result.Imported), len(files))
	return nil
}
