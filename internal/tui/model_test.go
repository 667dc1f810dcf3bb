package tui

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/propboard/internal/app"
	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/config"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/testutil"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/types"
)

// setupTestModel seeds the pipeline board and opens it at 80x30, which shows
// the first two of its four columns
func setupTestModel(t *testing.T, role types.Role, seed func(repo *database.Repository)) (Model, *database.Repository) {
	t.Helper()
	repo := testutil.SetupTestDB(t)
	testutil.SeedBoard(t, repo, testutil.PipelineBoard())
	if seed != nil {
		seed(repo)
	}

	a, err := app.New(repo)
	require.NoError(t, err)

	m, err := InitialModel(context.Background(), a, config.Default(), Options{
		BoardID: "board-1",
		Role:    role,
		Actor:   "dana",
	})
	require.NoError(t, err)
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30}), repo
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Text: string(r), Code: r})
}

func lastNotification(t *testing.T, m Model) state.Notification {
	t.Helper()
	all := m.notificationState.All()
	require.NotEmpty(t, all, "expected a notification")
	return all[len(all)-1]
}

func stored(t *testing.T, repo *database.Repository, id types.ProposalID) *models.Proposal {
	t.Helper()
	p, err := repo.GetProposal(context.Background(), id)
	require.NoError(t, err)
	return p
}

// qualifying is a proposal shown in the Qualification column only
func qualifying(p *models.Proposal) {
	p.Status = ""
	p.CurrentPhase = "qualification"
}

func TestInitialModel_LoadsBoard(t *testing.T) {
	m, _ := setupTestModel(t, "user", func(repo *database.Repository) {
		testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
		testutil.CreateTestProposal(t, repo, "board-1", "Quartz", qualifying)
		testutil.CreateTestProposal(t, repo, "board-1", "Lost", func(p *models.Proposal) {
			p.Status = "archived"
		})
	})

	assert.Len(t, m.appState.Columns(), 4)
	assert.Len(t, m.appState.Cards("intake"), 1)
	assert.Len(t, m.appState.Cards("qualify"), 1)
	assert.Len(t, m.appState.Unresolved(), 1)
	assert.Equal(t, 2, m.uiState.ViewportSize())
	assert.False(t, m.live, "no transport is configured")
	assert.Nil(t, m.Init())
}

func TestInitialModel_UnknownBoard(t *testing.T) {
	repo := testutil.SetupTestDB(t)
	a, err := app.New(repo)
	require.NoError(t, err)

	_, err = InitialModel(context.Background(), a, nil, Options{BoardID: "nope"})
	assert.ErrorIs(t, err, models.ErrBoardNotFound)
}

func TestKeyboard_Navigation(t *testing.T) {
	m, _ := setupTestModel(t, "user", func(repo *database.Repository) {
		testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
		testutil.CreateTestProposal(t, repo, "board-1", "Quartz", qualifying)
	})

	assert.Equal(t, "Alpha", m.currentCard().Name)

	m = update(t, m, keyPress('l'))
	assert.Equal(t, 1, m.uiState.SelectedColumn())
	assert.Equal(t, "Quartz", m.currentCard().Name)

	// the third column is off screen until selected
	m = update(t, m, keyPress('l'))
	assert.Equal(t, 2, m.uiState.SelectedColumn())
	assert.Equal(t, 1, m.uiState.ViewportOffset())
	assert.Nil(t, m.currentCard())

	m = update(t, m, keyPress('['))
	assert.Equal(t, 0, m.uiState.ViewportOffset())
	assert.Equal(t, 1, m.uiState.SelectedColumn(), "selection follows the viewport")

	m = update(t, m, keyPress('h'))
	m = update(t, m, keyPress('h'))
	assert.Equal(t, 0, m.uiState.SelectedColumn())
}

func TestKeyboard_MoveRight(t *testing.T) {
	var quartz *models.Proposal
	m, repo := setupTestModel(t, "capture_manager", func(repo *database.Repository) {
		quartz = testutil.CreateTestProposal(t, repo, "board-1", "Quartz", qualifying)
	})
	m = update(t, m, keyPress('l'))

	m = update(t, m, keyPress('L'))

	assert.Equal(t, "red-team", stored(t, repo, quartz.ID).CustomWorkflowStageID)
	n := lastNotification(t, m)
	assert.Equal(t, state.LevelWarning, n.Level)
	assert.Equal(t, "'Quartz' moved to Red team but is still shown in Qualification", n.Message)
}

func TestModes_HelpAndQuit(t *testing.T) {
	m, _ := setupTestModel(t, "user", nil)

	m = update(t, m, keyPress('?'))
	assert.Equal(t, state.HelpMode, m.uiState.Mode())
	assert.Contains(t, m.View().Content, "Keys")

	m = update(t, m, keyPress('x'))
	assert.Equal(t, state.NormalMode, m.uiState.Mode())

	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRefresh_ReloadsBoard(t *testing.T) {
	m, repo := setupTestModel(t, "user", nil)
	assert.Empty(t, m.appState.Cards("intake"))

	testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	m = update(t, m, refreshMsg{})
	assert.Len(t, m.appState.Cards("intake"), 1)

	m = update(t, m, eventsClosedMsg{})
	assert.False(t, m.live)
	assert.Equal(t, state.LevelWarning, lastNotification(t, m).Level)
}

func TestView_Board(t *testing.T) {
	m, _ := setupTestModel(t, "user", func(repo *database.Repository) {
		testutil.CreateTestProposal(t, repo, "board-1", "Alpha", func(p *models.Proposal) {
			p.ContractValue = testutil.FloatPtr(250000)
		})
	})

	content := m.View().Content
	assert.Contains(t, content, "Capture pipeline")
	assert.Contains(t, content, "Intake (1)")
	assert.Contains(t, content, "Alpha")
	assert.Contains(t, content, "$250,000")
	assert.Contains(t, content, "▶", "columns are hidden to the right")
	assert.NotContains(t, content, "Red team")
}

// ============================================================================
// MOUSE DRAG
// ============================================================================

// Cell coordinates at 80x30: column 0 spans x 2..31, column 1 x 33..62 and the
// hidden column 2 would start at x 64. The first card of a column covers
// rows 5..8.

func press(x, y int) tea.MouseClickMsg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func motion(x, y int) tea.MouseMotionMsg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func release(x, y int) tea.MouseReleaseMsg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func TestMouseDrag_Commits(t *testing.T) {
	var quartz *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		quartz = testutil.CreateTestProposal(t, repo, "board-1", "Quartz", qualifying)
	})

	m = update(t, m, press(45, 6))
	require.True(t, m.gesture.Dragging())
	assert.Equal(t, 1, m.uiState.SelectedColumn())

	m = update(t, m, motion(10, 10))
	assert.Equal(t, types.ColumnID("intake"), m.drag.Hover)
	assert.True(t, m.drag.Allowed)
	assert.Equal(t, collision.StrategyFast, m.drag.Strategy)
	assert.Contains(t, m.View().Content, "→ Intake")

	m = update(t, m, release(10, 10))
	assert.False(t, m.gesture.Dragging())
	assert.False(t, m.drag.Active)

	assert.Equal(t, "new", stored(t, repo, quartz.ID).Status)
	n := lastNotification(t, m)
	assert.Equal(t, state.LevelInfo, n.Level)
	assert.Equal(t, "Moved 'Quartz' to Intake", n.Message)
	assert.Equal(t, "Quartz", m.currentCard().Name, "selection follows the moved card")
}

func TestMouseDrag_ForbiddenOffscreenTarget(t *testing.T) {
	var alpha *models.Proposal
	m, repo := setupTestModel(t, "bid_manager", func(repo *database.Repository) {
		alpha = testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	})
	before := stored(t, repo, alpha.ID)

	m = update(t, m, press(10, 6))
	m = update(t, m, motion(70, 10))

	assert.Equal(t, types.ColumnID("red-team"), m.drag.Hover)
	assert.Equal(t, collision.StrategyScroll, m.drag.Strategy, "the hidden column is found in content space")
	assert.False(t, m.drag.Allowed)
	assert.Equal(t, 1, m.uiState.ViewportOffset(), "the target is scrolled into view")
	assert.Contains(t, m.View().Content, "not allowed for bid_manager")

	m = update(t, m, release(70, 10))

	n := lastNotification(t, m)
	assert.Equal(t, state.LevelWarning, n.Level)
	assert.Equal(t, "Role bid_manager cannot move proposals into Red team", n.Message)

	after := stored(t, repo, alpha.ID)
	assert.Equal(t, before.Version, after.Version, "a forbidden drop writes nothing")
	assert.Empty(t, after.CustomWorkflowStageID)
}

func TestMouseDrag_StalePointerWarning(t *testing.T) {
	var alpha *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		alpha = testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	})

	m = update(t, m, press(10, 6))
	m = update(t, m, motion(45, 10))
	m = update(t, m, release(45, 10))

	assert.Equal(t, "qualification", stored(t, repo, alpha.ID).CurrentPhase)
	n := lastNotification(t, m)
	assert.Equal(t, state.LevelWarning, n.Level)
	assert.Equal(t, "'Alpha' moved to Qualification but is still shown in Intake", n.Message)
}

func TestMouseDrag_ClickAndCancel(t *testing.T) {
	var alpha *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		alpha = testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	})
	before := stored(t, repo, alpha.ID)

	t.Run("press and release on the card is a click", func(t *testing.T) {
		m := update(t, m, press(10, 6))
		m = update(t, m, release(10, 6))
		assert.False(t, m.gesture.Dragging())
		assert.Empty(t, m.notificationState.All())
	})

	t.Run("escape abandons the drag", func(t *testing.T) {
		m := update(t, m, press(10, 6))
		m = update(t, m, motion(45, 10))
		m = update(t, m, tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape}))
		assert.False(t, m.gesture.Dragging())
		m = update(t, m, release(45, 10))
		assert.Empty(t, m.notificationState.All())
	})

	t.Run("press on a gap does not start a drag", func(t *testing.T) {
		m := update(t, m, press(32, 6))
		assert.False(t, m.gesture.Dragging())
	})

	assert.Equal(t, before.Version, stored(t, repo, alpha.ID).Version)
}

// ============================================================================
// JUMP SELECTOR
// ============================================================================

func TestJump_FromDrag(t *testing.T) {
	var quartz *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		quartz = testutil.CreateTestProposal(t, repo, "board-1", "Quartz", qualifying)
	})

	m = update(t, m, press(45, 6))
	m = update(t, m, motion(50, 12))
	m = update(t, m, keyPress('g'))

	assert.False(t, m.gesture.Dragging(), "opening the selector ends the drag")
	require.Equal(t, state.JumpMode, m.uiState.Mode())
	assert.Equal(t, 1, m.selector.Cursor(), "cursor starts on the current column")
	assert.Contains(t, m.View().Content, "(current)")

	m = update(t, m, keyPress('k'))
	m = update(t, m, tea.KeyPressMsg(tea.Key{Code: tea.KeyEnter}))

	assert.Equal(t, state.NormalMode, m.uiState.Mode())
	assert.Nil(t, m.selector)
	assert.Equal(t, "new", stored(t, repo, quartz.ID).Status)
	assert.Equal(t, "Moved 'Quartz' to Intake", lastNotification(t, m).Message)
}

func TestJump_Unreachable(t *testing.T) {
	var alpha *models.Proposal
	m, repo := setupTestModel(t, "bid_manager", func(repo *database.Repository) {
		alpha = testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	})
	before := stored(t, repo, alpha.ID)

	m = update(t, m, keyPress('g'))
	require.Equal(t, state.JumpMode, m.uiState.Mode())
	assert.Contains(t, m.View().Content, "(not allowed)")

	m = update(t, m, keyPress('4'))

	assert.Equal(t, state.NormalMode, m.uiState.Mode())
	assert.Equal(t, "Role bid_manager cannot move proposals into Submitted", lastNotification(t, m).Message)
	assert.Equal(t, before.Version, stored(t, repo, alpha.ID).Version)
}

func TestJump_Cancel(t *testing.T) {
	m, _ := setupTestModel(t, "user", func(repo *database.Repository) {
		testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	})

	m = update(t, m, keyPress('g'))
	m = update(t, m, tea.KeyPressMsg(tea.Key{Code: tea.KeyEscape}))
	assert.Equal(t, state.NormalMode, m.uiState.Mode())
	assert.Empty(t, m.notificationState.All())
}

// ============================================================================
// CHECKLIST
// ============================================================================

func TestChecklist_ToggleManualItem(t *testing.T) {
	var alpha *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		alpha = testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
	})

	m = update(t, m, keyPress('c'))
	require.Equal(t, state.ChecklistMode, m.uiState.Mode())
	assert.Contains(t, m.View().Content, "Kickoff call")

	m = update(t, m, tea.KeyPressMsg(tea.Key{Code: tea.KeySpace, Text: " "}))

	p := stored(t, repo, alpha.ID)
	entry, ok := p.CurrentStageChecklistStatus.Entry("intake", "kickoff")
	require.True(t, ok)
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.CompletedBy)
	assert.Equal(t, "dana", *entry.CompletedBy)
	assert.True(t, m.checklist.report.Items[0].Stored.Completed, "the panel shows the new state")

	m = update(t, m, keyPress('c'))
	assert.Equal(t, state.NormalMode, m.uiState.Mode())
}

func TestChecklist_SystemCheckIsReadOnly(t *testing.T) {
	var quartz *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		quartz = testutil.CreateTestProposal(t, repo, "board-1", "Quartz", qualifying)
	})
	before := stored(t, repo, quartz.ID)

	m = update(t, m, keyPress('l'))
	m = update(t, m, keyPress('c'))
	require.Equal(t, state.ChecklistMode, m.uiState.Mode())

	m = update(t, m, tea.KeyPressMsg(tea.Key{Code: tea.KeySpace, Text: " "}))

	n := lastNotification(t, m)
	assert.Equal(t, state.LevelWarning, n.Level)
	assert.Contains(t, n.Message, "is a system check")
	assert.Equal(t, before.Version, stored(t, repo, quartz.ID).Version)
}

func TestChecklist_NoCardSelected(t *testing.T) {
	m, _ := setupTestModel(t, "user", nil)
	m = update(t, m, keyPress('c'))
	assert.Equal(t, state.NormalMode, m.uiState.Mode())
}

func TestReconcileKey(t *testing.T) {
	var quartz *models.Proposal
	m, repo := setupTestModel(t, "user", func(repo *database.Repository) {
		quartz = testutil.CreateTestProposal(t, repo, "board-1", "Quartz", func(p *models.Proposal) {
			qualifying(p)
			p.ContractValue = testutil.FloatPtr(250000)
		})
	})

	m = update(t, m, keyPress('l'))
	m = update(t, m, keyPress('R'))

	assert.Contains(t, lastNotification(t, m).Message, "'Quartz'")
	assert.True(t, stored(t, repo, quartz.ID).CurrentStageChecklistStatus.Completed("qualify", types.ItemID(models.CheckContractValue)))
}
