package types

// ID type aliases provide semantic meaning for the string identifiers that flow
// between the store, the engine and the board UI.

// BoardID identifies a board configuration (one per organization + board type)
type BoardID string

// ProposalID identifies a proposal tracked on a board
type ProposalID string

// ColumnID identifies a column, unique within a board
type ColumnID string

// ItemID identifies a checklist item, unique within a column
type ItemID string

// Role identifies a user role used for drag permissions
type Role string

func (id BoardID) String() string {
	return string(id)
}

func (id ProposalID) String() string {
	return string(id)
}

func (id ColumnID) String() string {
	return string(id)
}

func (id ItemID) String() string {
	return string(id)
}

func (r Role) String() string {
	return string(r)
}
