package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Annotate resources.
	uriScheme = "annotate://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "workspace",
		Name:        "workspace",
		Description: "The active workspace and where its data lives",
		MIMEType:    "application/json",
	}, s.handleWorkspaceResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "profiles/{profileId}/points",
		Name:        "profile-points",
		Description: "Points of a profile in display order",
		MIMEType:    "application/json",
	}, s.handlePointsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "datasets/{datasetId}/texts",
		Name:        "dataset-texts",
		Description: "Texts of a dataset",
		MIMEType:    "application/json",
	}, s.handleTextsResource)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleWorkspaceResource returns the active workspace.
func (s *Server) handleWorkspaceResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Workspace == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	ws, err := s.ports.Workspace.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting active workspace: %w", err)
	}

	type workspaceInfo struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Storage string `json:"storage"`
	}
	return jsonResult(req.Params.URI, workspaceInfo{ID: ws.ID, Name: ws.Name, Storage: ws.StorageKind.String()})
}

// handlePointsResource returns the points of a profile.
func (s *Server) handlePointsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	profileID := extractID(req.Params.URI, "profiles", "points")
	if profileID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	points, err := s.ports.Data.ListPoints(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("listing points: %w", err)
	}

	type pointInfo struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Explanation string   `json:"explanation,omitempty"`
		Datatype    string   `json:"datatype"`
		Valueset    []string `json:"valueset,omitempty"`
		Unit        string   `json:"unit,omitempty"`
	}

	infos := make([]pointInfo, len(points))
	for i, p := range points {
		infos[i] = pointInfo{
			ID:          p.ID,
			Name:        p.Name,
			Explanation: p.Explanation,
			Datatype:    p.Datatype,
			Valueset:    p.Valueset,
		}
		if p.Unit != nil {
			infos[i].Unit = *p.Unit
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleTextsResource returns the texts of a dataset.
func (s *Server) handleTextsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	datasetID := extractID(req.Params.URI, "datasets", "texts")
	if datasetID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	texts, err := s.ports.Data.ListTexts(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("listing texts: %w", err)
	}

	type textInfo struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		Text     string `json:"text"`
	}

	infos := make([]textInfo, len(texts))
	for i, t := range texts {
		infos[i] = textInfo{ID: t.ID, Filename: t.Filename, Text: t.Text}
	}
	return jsonResult(req.Params.URI, infos)
}

// extractID extracts the id from a URI like annotate://{collection}/{id}/{child}.
func extractID(uri, collection, child string) string {
	prefix := uriScheme + collection + "/"
	suffix := "/" + child

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, suffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
