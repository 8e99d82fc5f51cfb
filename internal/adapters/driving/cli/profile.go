package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

var (
	profileListMode    string
	profileCreateMode  string
	profileDescription string
)

// Flags for point add and point move.
var (
	pointExplanation string
	pointDatatype    string
	pointSynonyms    string
	pointValueset    string
	pointUnit        string
	pointAfter       string
	pointFirst       bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage extraction profiles",
	Long: `Create and inspect profiles. A profile is an ordered list of points to
extract from each text.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles in the active workspace",
	RunE:  runProfileList,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCreate,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [profile-id]",
	Short: "Show a profile and its points in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete [profile-id]",
	Short: "Delete a profile and its points",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var pointCmd = &cobra.Command{
	Use:   "point",
	Short: "Manage the points of a profile",
}

var pointAddCmd = &cobra.Command{
	Use:   "add [profile-id] [name]",
	Short: "Append a point to a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runPointAdd,
}

var pointMoveCmd = &cobra.Command{
	Use:   "move [point-id]",
	Short: "Move a point within its profile",
	Long: `Move a point after another point of the same profile, or to the front
with --first.

Examples:
  annotate profile point move <point-id> --after <other-point-id>
  annotate profile point move <point-id> --first`,
	Args: cobra.ExactArgs(1),
	RunE: runPointMove,
}

var pointRemoveCmd = &cobra.Command{
	Use:   "remove [point-id]",
	Short: "Remove a point",
	Args:  cobra.ExactArgs(1),
	RunE:  runPointRemove,
}

func init() {
	profileListCmd.Flags().StringVarP(&profileListMode, "mode", "m", "", "only list profiles of this mode")
	profileCreateCmd.Flags().StringVarP(&profileCreateMode, "mode", "m", "extraction", "annotation mode: extraction or segmentation")
	profileCreateCmd.Flags().StringVarP(&profileDescription, "description", "d", "", "profile description")

	pointAddCmd.Flags().StringVarP(&pointExplanation, "explanation", "e", "", "what the point captures")
	pointAddCmd.Flags().StringVarP(&pointDatatype, "datatype", "t", "text", "value type")
	pointAddCmd.Flags().StringVar(&pointSynonyms, "synonyms", "", "comma-separated synonyms")
	pointAddCmd.Flags().StringVar(&pointValueset, "valueset", "", "comma-separated allowed values")
	pointAddCmd.Flags().StringVar(&pointUnit, "unit", "", "unit of measurement")

	pointMoveCmd.Flags().StringVar(&pointAfter, "after", "", "place the point after this point")
	pointMoveCmd.Flags().BoolVar(&pointFirst, "first", false, "place the point first")

	pointCmd.AddCommand(pointAddCmd)
	pointCmd.AddCommand(pointMoveCmd)
	pointCmd.AddCommand(pointRemoveCmd)

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	profileCmd.AddCommand(pointCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, _ []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	mode, err := parseMode(profileListMode)
	if err != nil {
		return err
	}

	profiles, err := dataService.ListProfiles(cmd.Context(), mode)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if len(profiles) == 0 {
		cmd.Println("No profiles.")
		return nil
	}

	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		rows[i] = []string{p.ID, p.Name, p.Mode.String(), truncate(p.Description, 40)}
	}
	printTable(cmd, []string{"ID", "NAME", "MODE", "DESCRIPTION"}, rows)
	return nil
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	mode, err := parseMode(profileCreateMode)
	if err != nil {
		return err
	}

	profile, err := dataService.CreateProfile(cmd.Context(), domain.Profile{
		Name:        args[0],
		Description: profileDescription,
		Mode:        mode,
	})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	cmd.Printf("Created profile %s (%s)\n", profile.Name, profile.ID)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	ctx := cmd.Context()

	profile, err := dataService.GetProfile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return fmt.Errorf("profile %s: %w", args[0], domain.ErrNotFound)
	}

	points, err := dataService.ListPoints(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("failed to list points: %w", err)
	}

	cmd.Println(outputStyles.Title.Render(profile.Name))
	cmd.Printf("  ID:   %s\n", profile.ID)
	cmd.Printf("  Mode: %s\n", profile.Mode)
	if profile.Description != "" {
		cmd.Printf("  %s\n", profile.Description)
	}
	cmd.Println()

	if len(points) == 0 {
		cmd.Println("No points. Add one with 'annotate profile point add'.")
		return nil
	}

	rows := make([][]string, len(points))
	for i, p := range points {
		unit := ""
		if p.Unit != nil {
			unit = *p.Unit
		}
		rows[i] = []string{fmt.Sprintf("%d", i+1), p.ID, p.Name, p.Datatype, unit, truncate(p.Explanation, 40)}
	}
	printTable(cmd, []string{"#", "ID", "NAME", "TYPE", "UNIT", "EXPLANATION"}, rows)
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	if err := dataService.DeleteProfile(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	cmd.Printf("Deleted profile %s\n", args[0])
	return nil
}

func runPointAdd(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	point := domain.ProfilePoint{
		ProfileID:   args[0],
		Name:        args[1],
		Explanation: pointExplanation,
		Synonyms:    splitList(pointSynonyms),
		Datatype:    pointDatatype,
		Valueset:    splitList(pointValueset),
	}
	if pointUnit != "" {
		point.Unit = domain.StringPtr(pointUnit)
	}

	created, err := dataService.AddPoint(cmd.Context(), point)
	if err != nil {
		return fmt.Errorf("failed to add point: %w", err)
	}

	cmd.Printf("Added point %s (%s)\n", created.Name, created.ID)
	return nil
}

func runPointMove(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}
	if pointAfter == "" && !pointFirst {
		return errors.New("either --after or --first is required")
	}
	if pointAfter != "" && pointFirst {
		return errors.New("--after and --first cannot be combined")
	}
	ctx := cmd.Context()

	point, err := dataService.GetPoint(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get point: %w", err)
	}
	if point == nil {
		return fmt.Errorf("point %s: %w", args[0], domain.ErrNotFound)
	}

	chain, err := dataService.ListPoints(ctx, point.ProfileID)
	if err != nil {
		return fmt.Errorf("failed to list points: %w", err)
	}

	prevID, nextID, err := neighbours(chain, point.ID, pointAfter)
	if err != nil {
		return err
	}

	moved, err := dataService.MovePoint(ctx, point.ID, prevID, nextID)
	if err != nil {
		return fmt.Errorf("failed to move point: %w", err)
	}

	cmd.Printf("Moved point %s\n", moved.Name)
	return nil
}

// neighbours returns the points a moved point lands between when placed
// after afterID, or first when afterID is empty.
func neighbours(chain []domain.ProfilePoint, pointID, afterID string) (prevID, nextID string, err error) {
	rest := slices.DeleteFunc(slices.Clone(chain), func(p domain.ProfilePoint) bool { return p.ID == pointID })

	if afterID == "" {
		if len(rest) > 0 {
			nextID = rest[0].ID
		}
		return "", nextID, nil
	}

	i := slices.IndexFunc(rest, func(p domain.ProfilePoint) bool { return p.ID == afterID })
	if i < 0 {
		return "", "", fmt.Errorf("%w: point %s is not in the same profile", domain.ErrInvalidInput, afterID)
	}
	if i+1 < len(rest) {
		nextID = rest[i+1].ID
	}
	return afterID, nextID, nil
}

func runPointRemove(cmd *cobra.Command, args []string) error {
	if dataService == nil {
		return errors.New("data service not configured")
	}

	if err := dataService.DeletePoint(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove point: %w", err)
	}

	cmd.Printf("Removed point %s\n", args[0])
	return nil
}
