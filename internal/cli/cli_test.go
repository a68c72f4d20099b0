package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/rules"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/store"
)

const testContent = `
id: ancestry-elf
kind: ancestry
name: Elf
hp: 6
speed: 30
operations:
  - id: elf-dex
    kind: adjValue
    variable: ATTRIBUTE_DEX
    amount: 1
---
id: class-rogue
kind: class
name: Rogue
hp: 8
operations:
  - id: rogue-stealth
    kind: createValue
    variable: SKILL_STEALTH
    variant: proficiency
    value:
      rank: T
      attribute: ATTRIBUTE_DEX
---
id: feat-flexible-training
kind: feat
name: Flexible Training
operations:
  - id: flexible-boost
    kind: select
    prompt: Choose an attribute boost
    options:
      - key: str
        label: Strength
        operations:
          - id: flexible-str
            kind: adjValue
            variable: ATTRIBUTE_STR
            amount: 1
      - key: dex
        label: Dexterity
        operations:
          - id: flexible-dex
            kind: adjValue
            variable: ATTRIBUTE_DEX
            amount: 1
`

// runCLI executes the root command with a fresh flag set.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// testWorkspace writes the test content dir and seeds one character.
func testWorkspace(t *testing.T, ch *entity.Character) (contentDir, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	contentDir = filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "core.yaml"), []byte(testContent), 0o644))

	dbPath = filepath.Join(dir, "wg.db")
	if ch != nil {
		st, err := store.Open(dbPath)
		require.NoError(t, err)
		require.NoError(t, st.SaveCharacter(context.Background(), ch))
		require.NoError(t, st.Close())
	}
	return contentDir, dbPath
}

func merisiel() *entity.Character {
	return &entity.Character{
		ID:         "char-merisiel",
		Name:       "Merisiel",
		Level:      3,
		ClassID:    "class-rogue",
		AncestryID: "ancestry-elf",
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, nil)
	_, _, err := runCLI(t, "validate", contentDir, "--db", dbPath, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateCommand_Valid(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, nil)

	out, _, err := runCLI(t, "validate", contentDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 3 record(s) valid")
}

func TestValidateCommand_SemanticErrors(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "broken.yaml"), []byte(`
id: feat-broken
kind: feat
name: Broken
operations:
  - id: broken-grant
    kind: giveAbilityBlock
    ability: ability-gone
`), 0o644))

	out, _, err := runCLI(t, "validate", contentDir, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E205")
}

func TestBuildCommand(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, merisiel())

	out, _, err := runCLI(t, "build", "char-merisiel", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built char-merisiel in 2 pass(es)")

	// The settled entity and one snapshot were persisted.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ch, err := st.GetCharacter(context.Background(), "char-merisiel")
	require.NoError(t, err)
	assert.Equal(t, 30, ch.HPCurrent)

	n, err := st.SnapshotCount(context.Background(), "char-merisiel")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBuildCommand_CharacterNotFound(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, nil)

	_, _, err := runCLI(t, "build", "char-gone", "--db", dbPath, "--content", contentDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBuildCommand_StrictPending(t *testing.T) {
	ch := merisiel()
	ch.Feats = []entity.FeatRef{{ID: "feat-flexible-training", Level: 1}}
	contentDir, dbPath := testWorkspace(t, ch)

	out, _, err := runCLI(t, "build", "char-merisiel", "--strict", "--db", dbPath, "--content", contentDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 selection(s) pending")
}

func TestSheetCommand(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, merisiel())

	out, _, err := runCLI(t, "sheet", "char-merisiel", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Merisiel (level 3)")
	assert.Contains(t, out, "HP 30/30   AC 11   Speed 30")
	assert.Contains(t, out, "SKILL_STEALTH")

	// Read-only: nothing persisted.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	got, err := st.GetCharacter(context.Background(), "char-merisiel")
	require.NoError(t, err)
	assert.Zero(t, got.HPCurrent)
}

func TestBreakdownCommand(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, merisiel())

	out, _, err := runCLI(t, "breakdown", "char-merisiel", "SKILL_STEALTH", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "SKILL_STEALTH = +6")
	assert.Contains(t, out, "rank (Trained)")
	assert.Contains(t, out, "level")
}

func TestBreakdownCommand_UnknownVariable(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, merisiel())

	out, _, err := runCLI(t, "breakdown", "char-merisiel", "NO_SUCH", "--db", dbPath, "--content", contentDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E104")
}

func TestChooseCommand_Flow(t *testing.T) {
	ch := merisiel()
	ch.Feats = []entity.FeatRef{{ID: "feat-flexible-training", Level: 1}}
	contentDir, dbPath := testWorkspace(t, ch)

	path := rules.SelectionPath{
		SourceKind:  rules.SourceFeat,
		SourceID:    "feat-flexible-training",
		OperationID: "flexible-boost",
	}.MustHash()

	// List mode shows the pending choice with its options.
	out, _, err := runCLI(t, "choose", "char-merisiel", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "- str (Strength)")

	// Setting the choice persists it and rebuilds.
	out, _, err = runCLI(t, "choose", "char-merisiel", path, "str", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Built char-merisiel")

	out, _, err = runCLI(t, "choose", "char-merisiel", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, "No pending selections")

	// Clearing reverts it to pending.
	_, _, err = runCLI(t, "choose", "char-merisiel", path, "--clear", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	out, _, err = runCLI(t, "choose", "char-merisiel", "--db", dbPath, "--content", contentDir)
	require.NoError(t, err)
	assert.Contains(t, out, path)
}

func TestChooseCommand_ValueRequired(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, merisiel())

	_, _, err := runCLI(t, "choose", "char-merisiel", "some-path", "--db", dbPath, "--content", contentDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCharacterCommands(t *testing.T) {
	contentDir, dbPath := testWorkspace(t, nil)

	out, _, err := runCLI(t, "character", "new", "Valeros",
		"--level", "2", "--class", "class-rogue",
		"--db", dbPath, "--content", contentDir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   entity.Character `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Valeros", resp.Data.Name)
	assert.Equal(t, 2, resp.Data.Level)
	require.NotEmpty(t, resp.Data.ID)

	out, _, err = runCLI(t, "character", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Valeros (level 2)")

	_, _, err = runCLI(t, "character", "delete", resp.Data.ID, "--db", dbPath)
	require.NoError(t, err)

	out, _, err = runCLI(t, "character", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No characters")
}
