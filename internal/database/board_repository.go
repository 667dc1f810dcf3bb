package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// BoardRepo handles all board-related database operations.
type BoardRepo struct {
	db *sql.DB
}

const boardColumns = `id, organization_id, board_type, name, columns, swimlane_config, view_settings, version, updated_at`

// boardRow is the encoded form of a board
type boardRow struct {
	columns  sql.NullString
	swimlane sql.NullString
	view     sql.NullString
}

func encodeBoard(board *models.BoardConfig) (boardRow, error) {
	var row boardRow
	var err error
	cols := board.Columns
	if cols == nil {
		cols = []*models.Column{}
	}
	if row.columns, err = encodeJSON(cols, false); err != nil {
		return row, fmt.Errorf("encode columns: %w", err)
	}
	if row.swimlane, err = encodeJSON(board.SwimlaneConfig, true); err != nil {
		return row, fmt.Errorf("encode swimlane config: %w", err)
	}
	if row.view, err = encodeJSON(board.ViewSettings, true); err != nil {
		return row, fmt.Errorf("encode view settings: %w", err)
	}
	return row, nil
}

func scanBoard(s scanner) (*models.BoardConfig, error) {
	var (
		board     models.BoardConfig
		row       boardRow
		updatedAt string
	)
	err := s.Scan(&board.ID, &board.OrganizationID, &board.BoardType, &board.Name,
		&row.columns, &row.swimlane, &row.view, &board.Version, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(row.columns, &board.Columns); err != nil {
		return nil, fmt.Errorf("decode columns of board %s: %w", board.ID, err)
	}
	if err := decodeJSON(row.swimlane, &board.SwimlaneConfig); err != nil {
		return nil, fmt.Errorf("decode swimlane config of board %s: %w", board.ID, err)
	}
	if err := decodeJSON(row.view, &board.ViewSettings); err != nil {
		return nil, fmt.Errorf("decode view settings of board %s: %w", board.ID, err)
	}
	if board.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of board %s: %w", board.ID, err)
	}
	return &board, nil
}

// GetBoard retrieves a board by id
func (r *BoardRepo) GetBoard(ctx context.Context, id types.BoardID) (*models.BoardConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	board, err := scanBoard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrBoardNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board %s: %w", id, err)
	}
	return board, nil
}

// GetBoardByType retrieves the board of an organization for a board type
func (r *BoardRepo) GetBoardByType(ctx context.Context, organizationID, boardType string) (*models.BoardConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE organization_id = ? AND board_type = ?`,
		organizationID, boardType)
	board, err := scanBoard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", models.ErrBoardNotFound, organizationID, boardType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board %s/%s: %w", organizationID, boardType, err)
	}
	return board, nil
}

// ListBoards returns every board ordered by organization and type
func (r *BoardRepo) ListBoards(ctx context.Context) ([]*models.BoardConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+boardColumns+` FROM boards ORDER BY organization_id, board_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var boards []*models.BoardConfig
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

// SaveBoard inserts or replaces a board definition, matching an existing row
// by id or by organization and board type. The version is bumped only when
// the stored definition actually changes. It returns the board as stored.
func (r *BoardRepo) SaveBoard(ctx context.Context, board *models.BoardConfig) (*models.BoardConfig, error) {
	encoded, err := encodeBoard(board)
	if err != nil {
		return nil, err
	}

	var saved *models.BoardConfig
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			existingID types.BoardID
			columns    sql.NullString
			swimlane   sql.NullString
			view       sql.NullString
			name       string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, columns, swimlane_config, view_settings FROM boards
			 WHERE id = ? OR (organization_id = ? AND board_type = ?) LIMIT 1`,
			board.ID, board.OrganizationID, board.BoardType,
		).Scan(&existingID, &name, &columns, &swimlane, &view)

		now := formatTime(time.Now())
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id := board.ID
			if id == "" {
				id = types.BoardID(uuid.NewString())
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO boards (id, organization_id, board_type, name, columns, swimlane_config, view_settings, version, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
				id, board.OrganizationID, board.BoardType, board.Name,
				encoded.columns, encoded.swimlane, encoded.view, now)
			if err != nil {
				return err
			}
			existingID = id
		case err != nil:
			return err
		default:
			unchanged := name == board.Name &&
				columns == encoded.columns &&
				swimlane == encoded.swimlane &&
				view == encoded.view
			if !unchanged {
				_, err = tx.ExecContext(ctx,
					`UPDATE boards SET organization_id = ?, board_type = ?, name = ?, columns = ?,
					 swimlane_config = ?, view_settings = ?, version = version + 1, updated_at = ?
					 WHERE id = ?`,
					board.OrganizationID, board.BoardType, board.Name, encoded.columns,
					encoded.swimlane, encoded.view, now, existingID)
				if err != nil {
					return err
				}
			}
		}

		saved, err = scanBoard(tx.QueryRowContext(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = ?`, existingID))
		return err
	})
	if err != nil {
		return nil, persistErr("save board", err)
	}
	return saved, nil
}

// DeleteBoard removes a board and, through the foreign key, its proposals
func (r *BoardRepo) DeleteBoard(ctx context.Context, id types.BoardID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete board", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("delete board", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrBoardNotFound, id)
	}
	return nil
}
