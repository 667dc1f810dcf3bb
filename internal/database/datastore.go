package database

// DataStore defines the unified interface for all data operations.
// Consumers can depend on the smaller Reader/Writer interfaces instead.
type DataStore interface {
	BoardRepository
	ProposalRepository
}

var _ DataStore = (*Repository)(nil)
