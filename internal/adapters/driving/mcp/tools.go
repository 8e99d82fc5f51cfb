package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driving"
)

// ListInput filters a listing by annotation mode.
type ListInput struct {
	Mode string `json:"mode,omitempty" jsonschema:"annotation mode: extraction or segmentation (default both)"`
}

// RecordOutput is a top-level record of the active workspace.
type RecordOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
}

// ListOutput is the output schema of the listing tools.
type ListOutput struct {
	Records []RecordOutput `json:"records"`
	Count   int            `json:"count"`
}

// MigrateInput is the input schema for the migration tool.
type MigrateInput struct {
	TargetWorkspaceID string `json:"target_workspace_id,omitempty" jsonschema:"existing remote workspace to copy into"`
	TargetName        string `json:"target_name,omitempty" jsonschema:"name of the remote workspace to create"`
}

// MigrateOutput summarises a migration.
type MigrateOutput struct {
	TargetWorkspaceID string   `json:"target_workspace_id"`
	Succeeded         int      `json:"succeeded"`
	Skipped           int      `json:"skipped"`
	Failed            int      `json:"failed"`
	Warnings          []string `json:"warnings,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_profiles",
		Description: "List extraction profiles in the active workspace",
	}, s.handleListProfiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_datasets",
		Description: "List text datasets in the active workspace",
	}, s.handleListDatasets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_annotated_datasets",
		Description: "List annotation runs in the active workspace",
	}, s.handleListAnnotatedDatasets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "migrate_workspace",
		Description: "Copy the active local workspace into the remote store",
	}, s.handleMigrate)
}

func parseMode(raw string) (domain.Mode, error) {
	mode := domain.Mode(raw)
	if mode != "" && !mode.IsValid() {
		return "", fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, raw)
	}
	return mode, nil
}

func (s *Server) handleListProfiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	mode, err := parseMode(input.Mode)
	if err != nil {
		return nil, ListOutput{}, err
	}
	profiles, err := s.ports.Data.ListProfiles(ctx, mode)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{Records: make([]RecordOutput, len(profiles)), Count: len(profiles)}
	for i, p := range profiles {
		output.Records[i] = RecordOutput{ID: p.ID, Name: p.Name, Description: p.Description, Mode: p.Mode.String()}
	}
	return nil, output, nil
}

func (s *Server) handleListDatasets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	mode, err := parseMode(input.Mode)
	if err != nil {
		return nil, ListOutput{}, err
	}
	datasets, err := s.ports.Data.ListDatasets(ctx, mode)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{Records: make([]RecordOutput, len(datasets)), Count: len(datasets)}
	for i, d := range datasets {
		output.Records[i] = RecordOutput{ID: d.ID, Name: d.Name, Description: d.Description, Mode: d.Mode.String()}
	}
	return nil, output, nil
}

func (s *Server) handleListAnnotatedDatasets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	mode, err := parseMode(input.Mode)
	if err != nil {
		return nil, ListOutput{}, err
	}
	ads, err := s.ports.Data.ListAnnotatedDatasets(ctx, mode)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{Records: make([]RecordOutput, len(ads)), Count: len(ads)}
	for i, ad := range ads {
		output.Records[i] = RecordOutput{ID: ad.ID, Name: ad.Name, Description: ad.Description, Mode: ad.Mode.String()}
	}
	return nil, output, nil
}

// handleMigrate runs a migration without progress reporting.
func (s *Server) handleMigrate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MigrateInput,
) (*mcp.CallToolResult, MigrateOutput, error) {
	if s.ports.Migration == nil {
		return nil, MigrateOutput{}, ErrMigrationUnavailable
	}

	summary, err := s.ports.Migration.Migrate(ctx, driving.MigrationRequest{
		TargetWorkspaceID: input.TargetWorkspaceID,
		TargetName:        input.TargetName,
	}, nil)
	if err != nil {
		return nil, MigrateOutput{}, err
	}

	output := MigrateOutput{
		TargetWorkspaceID: summary.TargetWorkspaceID,
		Succeeded:         summary.Succeeded(),
		Skipped:           summary.Skipped(),
		Failed:            summary.Failed(),
	}
	for _, w := range summary.Warnings {
		output.Warnings = append(output.Warnings, fmt.Sprintf("%s %s: %s", w.Kind, w.LocalID, w.Message))
	}
	return nil, output, nil
}
