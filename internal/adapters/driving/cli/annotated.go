package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

var (
	annotatedListMode    string
	annotatedCreateMode  string
	annotatedDataset     string
	annotatedProfile     string
	annotatedDescription string
)

var annotatedCmd = &cobra.Command{
	Use:     "annotated",
	Aliases: []string{"run"},
	Short:   "Manage annotated datasets",
	Long: `An annotated dataset applies a profile to a dataset. Each of its texts
holds the data points extracted for that text.`,
}

var annotatedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List annotated datasets in the active workspace",
	RunE:  runAnnotatedList,
}

var annotatedCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an annotated dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotatedCreate,
}

var annotatedDeleteCmd = &cobra.Command{
	Use:   "delete [annotated-dataset-id]",
	Short: "Delete an annotated dataset and its annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotatedDelete,
}

var annotatedTextsCmd = &cobra.Command{
	Use:   "texts [annotated-dataset-id]",
	Short: "List the annotated texts of an annotated dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotatedTexts,
}

var annotatedPointsCmd = &cobra.Command{
	Use:   "points [annotated-text-id]",
	Short: "List the data points of an annotated text",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotatedPoints,
}

func init() {
	annotatedListCmd.Flags().StringVarP(&annotatedListMode, "mode", "m", "", "only list annotated datasets of this mode")
	annotatedCreateCmd.Flags().StringVarP(&annotatedCreateMode, "mode", "m", "extraction", "annotation mode: extraction or segmentation")
	annotatedCreateCmd.Flags().StringVar(&annotatedDataset, "dataset", "", "dataset to annotate")
	annotatedCreateCmd.Flags().StringVar(&annotatedProfile, "profile", "", "profile to annotate with")
	annotatedCreateCmd.Flags().StringVarP(&annotatedDescription, "description", "d", "", "description")
	_ = annotatedCreateCmd.MarkFlagRequired("dataset")
	_ = annotatedCreateCmd.MarkFlagRequired("profile")

	annotatedCmd.AddCommand(annotatedListCmd)
	annotatedCmd.AddCommand(annotatedCreateCmd)
	annotatedCmd.AddCommand(annotatedDeleteCmd)
	annotatedCmd.AddCommand(annotatedTextsCmd)
	annotatedCmd.AddCommand(annotatedPointsCmd)
	rootCmd.AddCommand(annotatedCmd)
}

func runAnnotatedList(cmd *cobra.Command, _ []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	mode, err := parseMode(annotatedListMode)
	if err != nil {
		return err
	}

	ads, err := dataService.ListAnnotatedDatasets(cmd.Context(), mode)
	if err != nil {
		return fmt.Errorf("failed to list annotated datasets: %w", err)
	}
	if len(ads) == 0 {
		cmd.Println("No annotated datasets.")
		return nil
	}

	rows := make([][]string, len(ads))
	for i, ad := range ads {
		rows[i] = []string{ad.ID, ad.Name, ad.Mode.String(), ad.DatasetID, ad.ProfileID}
	}
	printTable(cmd, []string{"ID", "NAME", "MODE", "DATASET", "PROFILE"}, rows)
	return nil
}

func runAnnotatedCreate(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	mode, err := parseMode(annotatedCreateMode)
	if err != nil {
		return err
	}

	ad, err := dataService.CreateAnnotatedDataset(cmd.Context(), domain.AnnotatedDataset{
		Name:        args[0],
		Description: annotatedDescription,
		DatasetID:   annotatedDataset,
		ProfileID:   annotatedProfile,
		Mode:        mode,
	})
	if err != nil {
		return fmt.Errorf("failed to create annotated dataset: %w", err)
	}

	cmd.Printf("Created annotated dataset %s (%s)\n", ad.Name, ad.ID)
	return nil
}

func runAnnotatedDelete(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	if err := dataService.DeleteAnnotatedDataset(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete annotated dataset: %w", err)
	}

	cmd.Printf("Deleted annotated dataset %s\n", args[0])
	return nil
}

func runAnnotatedTexts(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	ats, err := dataService.ListAnnotatedTexts(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list annotated texts: %w", err)
	}
	if len(ats) == 0 {
		cmd.Println("No annotated texts.")
		return nil
	}

	rows := make([][]string, len(ats))
	for i, at := range ats {
		rows[i] = []string{at.ID, at.TextID, yesNo(at.Verified), yesNo(at.AIFaulty)}
	}
	printTable(cmd, []string{"ID", "TEXT", "VERIFIED", "AI FAULTY"}, rows)
	return nil
}

func runAnnotatedPoints(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	dps, err := dataService.ListDataPoints(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list data points: %w", err)
	}
	if len(dps) == 0 {
		cmd.Println("No data points.")
		return nil
	}

	rows := make([][]string, len(dps))
	for i, dp := range dps {
		match := ""
		if len(dp.Match) == 2 {
			match = strconv.Itoa(dp.Match[0]) + "-" + strconv.Itoa(dp.Match[1])
		}
		rows[i] = []string{dp.ID, dp.Name, truncate(dp.Value, 40), match, yesNo(dp.Verified)}
	}
	printTable(cmd, []string{"ID", "NAME", "VALUE", "MATCH", "VERIFIED"}, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
