package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/annotate/internal/core/domain"
)

func TestProfileCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(profileCmd.Commands()))
	for _, c := range profileCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"list", "create", "show", "delete", "point"}, names)
}

func TestProfileCreateAndList(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "profile", "create", "Vitals", "-d", "blood pressure and pulse")
	require.NoError(t, err)
	assert.Contains(t, out, "Created profile Vitals")

	_, err = execute(t, "profile", "create", "Sections", "--mode", "segmentation")
	require.NoError(t, err)

	out, err = execute(t, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Vitals")
	assert.Contains(t, out, "Sections")

	out, err = execute(t, "profile", "list", "--mode", "segmentation")
	require.NoError(t, err)
	assert.Contains(t, out, "Sections")
	assert.NotContains(t, out, "Vitals")
}

func TestProfileListCmd_UnknownMode(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "profile", "list", "--mode", "summary")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProfileListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "profile", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No profiles.")
}

func TestPointCommands_OrderAndMove(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	profile, err := env.data.CreateProfile(ctx, domain.Profile{Name: "Vitals", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	for _, name := range []string{"pulse", "systolic", "weight"} {
		_, err := execute(t, "profile", "point", "add", profile.ID, name, "--unit", "x")
		require.NoError(t, err)
	}
	points, err := env.data.ListPoints(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, points, 3)

	out, err := execute(t, "profile", "point", "move", points[2].ID, "--first")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved point weight")

	out, err = execute(t, "profile", "point", "move", points[0].ID, "--after", points[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Moved point pulse")

	out, err = execute(t, "profile", "show", profile.ID)
	require.NoError(t, err)
	weight := strings.Index(out, "weight")
	systolic := strings.Index(out, "systolic")
	pulse := strings.Index(out, "pulse")
	assert.True(t, weight < systolic && systolic < pulse, "want weight, systolic, pulse in:\n%s", out)
}

func TestPointAddCmd_Fields(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	profile, err := env.data.CreateProfile(ctx, domain.Profile{Name: "Vitals", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	_, err = execute(t, "profile", "point", "add", profile.ID, "smoker",
		"-e", "does the patient smoke", "-t", "valueset", "--valueset", "yes, no", "--synonyms", "smoking,tobacco")
	require.NoError(t, err)

	points, err := env.data.ListPoints(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "does the patient smoke", points[0].Explanation)
	assert.Equal(t, "valueset", points[0].Datatype)
	assert.Equal(t, []string{"yes", "no"}, points[0].Valueset)
	assert.Equal(t, []string{"smoking", "tobacco"}, points[0].Synonyms)
	assert.Nil(t, points[0].Unit)
}

func TestPointMoveCmd_RequiresTarget(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "profile", "point", "move", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--after or --first")

	_, err = execute(t, "profile", "point", "move", "p1", "--first", "--after", "p2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestPointRemoveCmd(t *testing.T) {
	env := setupTestServices(t)
	ctx := context.Background()

	profile, err := env.data.CreateProfile(ctx, domain.Profile{Name: "Vitals", Mode: domain.ModeExtraction})
	require.NoError(t, err)
	point, err := env.data.AddPoint(ctx, domain.ProfilePoint{ProfileID: profile.ID, Name: "pulse", Datatype: "number"})
	require.NoError(t, err)

	out, err := execute(t, "profile", "point", "remove", point.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed point")

	out, err = execute(t, "profile", "show", profile.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "No points.")
}

func TestProfileDeleteCmd(t *testing.T) {
	env := setupTestServices(t)

	profile, err := env.data.CreateProfile(context.Background(), domain.Profile{Name: "Vitals", Mode: domain.ModeExtraction})
	require.NoError(t, err)

	out, err := execute(t, "profile", "delete", profile.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted profile")

	out, err = execute(t, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No profiles.")
}

func TestNeighbours(t *testing.T) {
	chain := []domain.ProfilePoint{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		name     string
		pointID  string
		afterID  string
		wantPrev string
		wantNext string
		wantErr  bool
	}{
		{name: "first", pointID: "c", wantNext: "a"},
		{name: "already first", pointID: "a", wantNext: "b"},
		{name: "middle", pointID: "a", afterID: "b", wantPrev: "b", wantNext: "c"},
		{name: "tail", pointID: "a", afterID: "c", wantPrev: "c"},
		{name: "point outside chain", pointID: "x", wantNext: "a"},
		{name: "after itself", pointID: "b", afterID: "b", wantErr: true},
		{name: "unknown", pointID: "a", afterID: "z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next, err := neighbours(chain, tt.pointID, tt.afterID)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrev, prev)
			assert.Equal(t, tt.wantNext, next)
		})
	}
}
