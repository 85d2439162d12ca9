package workspace

import (
	"bytes"
	"fmt"
)

// ChangeSet is the difference between two snapshots. A document id appears
// in at most one of Added, Changed and Removed.
type ChangeSet struct {
	// Added holds documents present only in the after-snapshot.
	Added []*Document
	// Changed holds after-snapshot documents whose content differs.
	Changed []*Document
	// Removed holds before-snapshot documents missing from the after-snapshot.
	Removed []*Document
}

// IsEmpty reports whether the change set has no changes.
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.Added) == 0 && len(cs.Changed) == 0 && len(cs.Removed) == 0
}

// Len returns the total number of affected documents.
func (cs ChangeSet) Len() int {
	return len(cs.Added) + len(cs.Changed) + len(cs.Removed)
}

// Diff computes the change set that turns before into after. Documents
// shared by pointer between the snapshots are unchanged by construction.
func Diff(before, after *Solution) ChangeSet {
	var cs ChangeSet
	beforeDocs := before.Documents()
	afterDocs := after.Documents()
	prev := indexDocuments(beforeDocs)
	next := indexDocuments(afterDocs)
	for _, d := range afterDocs {
		old, ok := prev[d.ID]
		switch {
		case !ok:
			cs.Added = append(cs.Added, d)
		case old == d:
		case !bytes.Equal(old.Content, d.Content):
			cs.Changed = append(cs.Changed, d)
		}
	}
	for _, d := range beforeDocs {
		if _, ok := next[d.ID]; !ok {
			cs.Removed = append(cs.Removed, d)
		}
	}
	return cs
}

func indexDocuments(docs []*Document) map[string]*Document {
	idx := make(map[string]*Document, len(docs))
	for _, d := range docs {
		idx[d.ID] = d
	}
	return idx
}

// Apply replays the change set on before.
func (cs ChangeSet) Apply(before *Solution) (*Solution, error) {
	cur := before
	var err error
	for _, d := range cs.Changed {
		if cur, err = cur.WithDocumentContent(d.ID, d.Content); err != nil {
			return nil, fmt.Errorf("change %s: %w", d.ID, err)
		}
	}
	for _, d := range cs.Removed {
		if cur, err = cur.WithoutDocument(d.ID); err != nil {
			return nil, fmt.Errorf("remove %s: %w", d.ID, err)
		}
	}
	for _, d := range cs.Added {
		if cur, _, err = cur.WithAddedDocument(d.ProjectID, d.Name, d.Content); err != nil {
			return nil, fmt.Errorf("add %s: %w", d.ID, err)
		}
	}
	return cur, nil
}
