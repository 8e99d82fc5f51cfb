package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

var (
	workspaceRemote      bool
	workspaceDescription string
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
	Long: `List, create and switch workspaces.

A local workspace keeps its data in the database on this device. A remote
workspace keeps it in the remote store and needs 'annotate auth login'.`,
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE:  runWorkspaceList,
}

var workspaceCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active workspace",
	RunE:  runWorkspaceCurrent,
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a workspace",
	Long: `Create a workspace. Local by default; pass --remote to create it in the
remote store.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkspaceCreate,
}

var workspaceSwitchCmd = &cobra.Command{
	Use:   "switch [workspace-id]",
	Short: "Make a workspace active",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceSwitch,
}

var workspaceRenameCmd = &cobra.Command{
	Use:   "rename [workspace-id] [name]",
	Short: "Rename a workspace",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorkspaceRename,
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete [workspace-id]",
	Short: "Delete a workspace and its data",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceDelete,
}

func init() {
	workspaceCreateCmd.Flags().BoolVar(&workspaceRemote, "remote", false, "create the workspace in the remote store")
	workspaceCreateCmd.Flags().StringVarP(&workspaceDescription, "description", "d", "", "workspace description")
	workspaceRenameCmd.Flags().StringVarP(&workspaceDescription, "description", "d", "", "new description")

	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceCurrentCmd)
	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceSwitchCmd)
	workspaceCmd.AddCommand(workspaceRenameCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
	rootCmd.AddCommand(workspaceCmd)
}

func runWorkspaceList(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}
	ctx := cmd.Context()

	workspaces, err := workspaceService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}
	if len(workspaces) == 0 {
		cmd.Println("No workspaces. Create one with 'annotate workspace create <name>'.")
		return nil
	}

	activeID := ""
	if active, err := workspaceService.Active(ctx); err == nil {
		activeID = active.ID
	}

	rows := make([][]string, len(workspaces))
	for i, ws := range workspaces {
		marker := " "
		if ws.ID == activeID {
			marker = outputStyles.Active.Render("*")
		}
		rows[i] = []string{marker, ws.ID, ws.Name, outputStyles.Storage(ws.StorageKind), truncate(ws.Description, 40)}
	}
	printTable(cmd, []string{"", "ID", "NAME", "STORAGE", "DESCRIPTION"}, rows)
	return nil
}

func runWorkspaceCurrent(cmd *cobra.Command, _ []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := workspaceService.Active(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get active workspace: %w", err)
	}

	cmd.Printf("Workspace: %s\n", ws.Name)
	cmd.Printf("  ID:      %s\n", ws.ID)
	cmd.Printf("  Storage: %s\n", ws.StorageKind.Description())
	if ws.Description != "" {
		cmd.Printf("  About:   %s\n", ws.Description)
	}
	return nil
}

func runWorkspaceCreate(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	kind := domain.StorageLocal
	if workspaceRemote {
		kind = domain.StorageRemote
	}

	ws, err := workspaceService.Create(cmd.Context(), domain.Workspace{
		Name:        args[0],
		Description: workspaceDescription,
		StorageKind: kind,
	})
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	cmd.Printf("Created %s workspace %s (%s)\n", ws.StorageKind, ws.Name, ws.ID)
	return nil
}

func runWorkspaceSwitch(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws, err := workspaceService.Switch(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to switch workspace: %w", err)
	}

	cmd.Printf("Switched to %s (%s)\n", ws.Name, ws.StorageKind.Description())
	return nil
}

func runWorkspaceRename(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	if err := workspaceService.Rename(cmd.Context(), args[0], args[1], workspaceDescription); err != nil {
		return fmt.Errorf("failed to rename workspace: %w", err)
	}

	cmd.Printf("Renamed workspace %s to %s\n", args[0], args[1])
	return nil
}

func runWorkspaceDelete(cmd *cobra.Command, args []string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	if err := workspaceService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	cmd.Printf("Deleted workspace %s\n", args[0])
	return nil
}
