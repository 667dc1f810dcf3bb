package boarddef

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
	"github.com/thenoetrevino/propboard/internal/workflow"
)

const captureYAML = `
organization_id: org-1
board_type: capture
name: Capture pipeline
columns:
  - id: intake
    label: Intake
    type: default_status
    default_status_mapping: new
  - id: qualify
    label: Qualification
    type: locked_phase
    phase_mapping: qualification
    is_locked: true
    checklist_items:
      - id: contract_value
        label: Contract value
        type: system_check
        required: true
      - id: big_deal
        type: system_check
        expression: proposal.contract_value > 1000000.0
  - id: red-team
    type: custom_stage
    can_drag_to_here_roles: [capture_manager, admin]
view_settings:
  card_width: 28
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ============================================================================
// PARSE
// ============================================================================

func TestParse_Valid(t *testing.T) {
	b, err := Parse([]byte(captureYAML))
	require.NoError(t, err)

	assert.Equal(t, "org-1", b.OrganizationID)
	assert.Equal(t, "capture", b.BoardType)
	require.Len(t, b.Columns, 3)

	qualify := b.Columns[1]
	assert.Equal(t, types.ColumnID("qualify"), qualify.ID)
	assert.Equal(t, models.ColumnTypeLockedPhase, qualify.Type)
	assert.True(t, qualify.IsLocked)
	require.Len(t, qualify.ChecklistItems, 2)
	assert.True(t, qualify.ChecklistItems[0].Required)
	assert.Equal(t, "proposal.contract_value > 1000000.0", qualify.ChecklistItems[1].Expression)

	assert.Equal(t, []types.Role{"capture_manager", "admin"}, b.Columns[2].CanDragToHereRoles)
	assert.EqualValues(t, 28, b.ViewSettings["card_width"])
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		problem string
	}{
		{
			name:    "not yaml",
			doc:     "columns: [",
			problem: "",
		},
		{
			name:    "empty document",
			doc:     "",
			problem: "",
		},
		{
			name:    "missing columns",
			doc:     "organization_id: org-1\nboard_type: capture\n",
			problem: "columns",
		},
		{
			name: "locked phase without mapping",
			doc: `organization_id: org-1
board_type: capture
columns:
  - id: qualify
    type: locked_phase
`,
			problem: "phase_mapping",
		},
		{
			name: "unknown item type",
			doc: `organization_id: org-1
board_type: capture
columns:
  - id: intake
    type: default_status
    default_status_mapping: new
    checklist_items:
      - id: a
        type: checkbox
`,
			problem: "/columns/0/checklist_items/0/type",
		},
		{
			name: "unknown field",
			doc: `organization_id: org-1
board_type: capture
colour: red
columns:
  - id: intake
    type: custom_stage
`,
			problem: "colour",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidDefinition)
			if tt.problem != "" {
				assert.Contains(t, err.Error(), tt.problem)
			}
		})
	}
}

func TestParse_SchemaErrorListsProblems(t *testing.T) {
	doc := `organization_id: ""
board_type: capture
columns:
  - id: "bad id"
    type: nope
`
	_, err := Parse([]byte(doc))
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.GreaterOrEqual(t, len(serr.Problems), 3)
}

// ============================================================================
// FILES
// ============================================================================

func TestLoadFile_AttachesIssues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.yaml", `organization_id: org-1
board_type: capture
columns:
  - id: a
    type: default_status
    default_status_mapping: new
  - id: b
    type: default_status
    default_status_mapping: new
`)

	def, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, def.Path)
	assert.False(t, def.Valid())
	assert.True(t, workflow.HasErrors(def.Issues))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", captureYAML)
	writeFile(t, dir, "a.yml", `organization_id: org-2
board_type: capture
columns:
  - id: intake
    type: custom_stage
`)
	writeFile(t, dir, "broken.yaml", "organization_id: org-3\n")
	writeFile(t, dir, "notes.txt", "not a board")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	defs, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")

	require.Len(t, defs, 2)
	assert.Equal(t, "org-2", defs[0].Board.OrganizationID)
	assert.Equal(t, "org-1", defs[1].Board.OrganizationID)
	assert.True(t, defs[1].Valid())
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncode_ParsesBack(t *testing.T) {
	original, err := Parse([]byte(captureYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, original))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, original.Columns, again.Columns)
	assert.Equal(t, original.Name, again.Name)
}

func TestIsDefinitionFile(t *testing.T) {
	assert.True(t, IsDefinitionFile("boards/capture.yaml"))
	assert.True(t, IsDefinitionFile("capture.YML"))
	assert.False(t, IsDefinitionFile("capture.json"))
	assert.False(t, IsDefinitionFile(".capture.yaml.swp"))
}
