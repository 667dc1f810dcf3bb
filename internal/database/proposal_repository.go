package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ProposalRepo handles all proposal-related database operations.
type ProposalRepo struct {
	db *sql.DB
}

const proposalColumns = `id, board_id, organization_id, name, solicitation_number, agency,
	contract_value, due_date, current_phase, custom_workflow_stage_id, status,
	checklist_status, action_required, action_required_description, version, created_at, updated_at`

func scanProposal(s scanner) (*models.Proposal, error) {
	var (
		p             models.Proposal
		contractValue sql.NullFloat64
		dueDate       sql.NullString
		checklist     sql.NullString
		description   sql.NullString
		createdAt     string
		updatedAt     string
	)
	err := s.Scan(&p.ID, &p.BoardID, &p.OrganizationID, &p.Name, &p.SolicitationNumber, &p.Agency,
		&contractValue, &dueDate, &p.CurrentPhase, &p.CustomWorkflowStageID, &p.Status,
		&checklist, &p.ActionRequired, &description, &p.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.ContractValue = nullFloatToPtr(contractValue)
	p.ActionRequiredDescription = nullStringToPtr(description)
	if p.DueDate, err = nullStringToTimePtr(dueDate); err != nil {
		return nil, fmt.Errorf("parse due_date of proposal %s: %w", p.ID, err)
	}
	p.CurrentStageChecklistStatus = models.ChecklistStatus{}
	if err := decodeJSON(checklist, &p.CurrentStageChecklistStatus); err != nil {
		return nil, fmt.Errorf("decode checklist of proposal %s: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of proposal %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of proposal %s: %w", p.ID, err)
	}
	return &p, nil
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProposal(ctx context.Context, q rowQuerier, id types.ProposalID) (*models.Proposal, error) {
	p, err := scanProposal(q.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrProposalNotFound, id)
	}
	return p, err
}

// GetProposal retrieves a proposal by id
func (r *ProposalRepo) GetProposal(ctx context.Context, id types.ProposalID) (*models.Proposal, error) {
	p, err := getProposal(ctx, r.db, id)
	if err != nil && !errors.Is(err, models.ErrProposalNotFound) {
		return nil, fmt.Errorf("failed to get proposal %s: %w", id, err)
	}
	return p, err
}

// ListProposalsByBoard returns the proposals of a board, oldest first
func (r *ProposalRepo) ListProposalsByBoard(ctx context.Context, boardID types.BoardID) ([]*models.Proposal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE board_id = ? ORDER BY created_at, id`, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// CreateProposal inserts a proposal at version 1 and returns it as stored
func (r *ProposalRepo) CreateProposal(ctx context.Context, p *models.Proposal) (*models.Proposal, error) {
	id := p.ID
	if id == "" {
		id = types.ProposalID(uuid.NewString())
	}
	status := p.CurrentStageChecklistStatus
	if status == nil {
		status = models.ChecklistStatus{}
	}
	checklist, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("encode checklist: %w", err)
	}
	now := formatTime(time.Now())

	var created *models.Proposal
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO proposals (id, board_id, organization_id, name, solicitation_number, agency,
				contract_value, due_date, current_phase, custom_workflow_stage_id, status,
				checklist_status, action_required, action_required_description, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			id, p.BoardID, p.OrganizationID, p.Name, p.SolicitationNumber, p.Agency,
			floatPtrToNull(p.ContractValue), nullTime(p.DueDate),
			p.CurrentPhase, p.CustomWorkflowStageID, p.Status,
			string(checklist), p.ActionRequired, stringPtrToNull(p.ActionRequiredDescription),
			now, now)
		if err != nil {
			return err
		}
		created, err = getProposal(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, persistErr("create proposal", err)
	}
	return created, nil
}

// patchAssignments turns a patch into SET clauses. Only fields present in the
// patch are written.
func patchAssignments(patch *models.ProposalPatch) ([]string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.SolicitationNumber != nil {
		add("solicitation_number", *patch.SolicitationNumber)
	}
	if patch.Agency != nil {
		add("agency", *patch.Agency)
	}
	if patch.ContractValue.Set {
		add("contract_value", floatPtrToNull(patch.ContractValue.Value))
	}
	if patch.DueDate.Set {
		add("due_date", nullTime(patch.DueDate.Value))
	}
	if patch.CurrentPhase != nil {
		add("current_phase", *patch.CurrentPhase)
	}
	if patch.CustomWorkflowStageID != nil {
		add("custom_workflow_stage_id", *patch.CustomWorkflowStageID)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ChecklistStatus != nil {
		data, err := json.Marshal(patch.ChecklistStatus)
		if err != nil {
			return nil, nil, fmt.Errorf("encode checklist: %w", err)
		}
		add("checklist_status", string(data))
	}
	if patch.ActionRequired != nil {
		add("action_required", *patch.ActionRequired)
		add("action_required_description", stringPtrToNull(patch.ActionRequiredDescription))
	}
	return sets, args, nil
}

// UpdateProposal applies a partial patch, bumps the version and returns the
// proposal as stored after the write. An empty patch is a read. A patch with
// ExpectedVersion fails with ErrVersionConflict, wrapped as a recoverable
// PersistenceError, when another write landed first.
func (r *ProposalRepo) UpdateProposal(ctx context.Context, id types.ProposalID, patch *models.ProposalPatch) (*models.Proposal, error) {
	if patch.IsEmpty() {
		return r.GetProposal(ctx, id)
	}
	sets, args, err := patchAssignments(patch)
	if err != nil {
		return nil, err
	}
	sets = append(sets, "version = version + 1", "updated_at = ?")
	args = append(args, formatTime(time.Now()), id)
	query := `UPDATE proposals SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if patch.ExpectedVersion != 0 {
		query += ` AND version = ?`
		args = append(args, patch.ExpectedVersion)
	}

	var updated *models.Proposal
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return missedUpdate(ctx, tx, id, patch.ExpectedVersion)
		}
		updated, err = getProposal(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, persistErr("update proposal", err)
	}
	return updated, nil
}

// missedUpdate explains an UPDATE that matched no row
func missedUpdate(ctx context.Context, tx *sql.Tx, id types.ProposalID, expected int64) error {
	var current int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM proposals WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", models.ErrProposalNotFound, id)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s is at version %d, expected %d", models.ErrVersionConflict, id, current, expected)
}

// DeleteProposal removes a proposal
func (r *ProposalRepo) DeleteProposal(ctx context.Context, id types.ProposalID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = ?`, id)
	if err != nil {
		return persistErr("delete proposal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("delete proposal", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrProposalNotFound, id)
	}
	return nil
}
