package workspace

import "fmt"

// Operation is one step of a fix action, applied to a snapshot.
type Operation interface {
	Apply(s *Solution) (*Solution, error)
}

// ChangeContent replaces the full content of a document.
type ChangeContent struct {
	DocumentID string
	Content    []byte
}

// Apply implements Operation.
func (op ChangeContent) Apply(s *Solution) (*Solution, error) {
	return s.WithDocumentContent(op.DocumentID, op.Content)
}

// AddDocument adds an in-memory document to a project.
type AddDocument struct {
	ProjectID string
	Name      string
	Content   []byte
}

// Apply implements Operation.
func (op AddDocument) Apply(s *Solution) (*Solution, error) {
	next, _, err := s.WithAddedDocument(op.ProjectID, op.Name, op.Content)
	return next, err
}

// RemoveDocument removes a document from its project.
type RemoveDocument struct {
	DocumentID string
}

// Apply implements Operation.
func (op RemoveDocument) Apply(s *Solution) (*Solution, error) {
	return s.WithoutDocument(op.DocumentID)
}

// ApplyAll applies ops in order.
func ApplyAll(s *Solution, ops []Operation) (*Solution, error) {
	cur := s
	for i, op := range ops {
		next, err := op.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}
