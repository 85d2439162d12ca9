// Package workspace models a loaded Go source corpus as immutable snapshots
// and computes the changes between them.
//
// A Solution holds ordered Projects (units), each holding ordered Documents.
// Snapshots are never mutated: every With* method returns a new Solution that
// shares unchanged projects and documents with its parent.
package workspace

import (
	"bytes"
	"fmt"
	"slices"
)

// Document is one source file in a snapshot.
type Document struct {
	// ID is stable across snapshots. Loaded documents use their cleaned
	// absolute path; added documents use "<project id>#<name>".
	ID string

	// ProjectID is the ID of the owning project.
	ProjectID string

	// Name is the file name (base name for loaded documents).
	Name string

	// Path is the storage path. Empty when the document only exists in memory.
	Path string

	// Content is the full document text.
	Content []byte
}

// HasPath reports whether the document is backed by storage.
func (d *Document) HasPath() bool {
	return d != nil && d.Path != ""
}

// DisplayPath returns Path, or Name for in-memory documents.
func (d *Document) DisplayPath() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Name
}

// Project is one unit of source files (a Go module, a go.work member,
// a directory, or a single file).
type Project struct {
	ID   string
	Name string
	Dir  string

	// Documents in sorted path order.
	Documents []*Document

	// StyleConfig is the style-configuration document attached to the unit.
	// It is opaque to the workspace; only the rule engine interprets it.
	StyleConfig *Document

	// SeverityOverrides are the unit's own rule severities, which win over
	// the global ruleset.
	SeverityOverrides map[string]string
}

// Document returns the project document with the given id, or nil.
func (p *Project) Document(id string) *Document {
	for _, d := range p.Documents {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (p *Project) clone() *Project {
	cp := *p
	cp.Documents = slices.Clone(p.Documents)
	return &cp
}

// Solution is an immutable snapshot of one or more projects.
type Solution struct {
	projects []*Project
}

// NewSolution builds a snapshot from projects. Project documents get their
// ProjectID set when missing.
func NewSolution(projects ...*Project) *Solution {
	out := make([]*Project, 0, len(projects))
	for _, p := range projects {
		cp := p.clone()
		for i, d := range cp.Documents {
			if d.ProjectID == "" {
				dc := *d
				dc.ProjectID = cp.ID
				cp.Documents[i] = &dc
			}
		}
		out = append(out, cp)
	}
	return &Solution{projects: out}
}

// Projects returns the projects in load order.
func (s *Solution) Projects() []*Project {
	return slices.Clone(s.projects)
}

// Project returns the project with the given id, or nil.
func (s *Solution) Project(id string) *Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Documents returns all documents, project-major.
func (s *Solution) Documents() []*Document {
	var out []*Document
	for _, p := range s.projects {
		out = append(out, p.Documents...)
	}
	return out
}

// Document returns the document with the given id, or nil.
func (s *Solution) Document(id string) *Document {
	for _, p := range s.projects {
		if d := p.Document(id); d != nil {
			return d
		}
	}
	return nil
}

// ProjectOf returns the project owning document id, or nil.
func (s *Solution) ProjectOf(id string) *Project {
	for _, p := range s.projects {
		if p.Document(id) != nil {
			return p
		}
	}
	return nil
}

// WithDocumentContent returns a snapshot where document id has new content.
func (s *Solution) WithDocumentContent(id string, content []byte) (*Solution, error) {
	pi, di := s.indexOf(id)
	if pi < 0 {
		return nil, fmt.Errorf("document %q not found", id)
	}
	old := s.projects[pi].Documents[di]
	if bytes.Equal(old.Content, content) {
		return s, nil
	}
	doc := *old
	doc.Content = bytes.Clone(content)

	p := s.projects[pi].clone()
	p.Documents[di] = &doc
	return s.withProject(pi, p), nil
}

// WithAddedDocument returns a snapshot with a new in-memory document named
// name appended to project projectID, along with the new document.
func (s *Solution) WithAddedDocument(projectID, name string, content []byte) (*Solution, *Document, error) {
	pi := slices.IndexFunc(s.projects, func(p *Project) bool { return p.ID == projectID })
	if pi < 0 {
		return nil, nil, fmt.Errorf("project %q not found", projectID)
	}
	if name == "" {
		return nil, nil, fmt.Errorf("added document in project %q has no name", projectID)
	}
	id := AddedDocumentID(projectID, name)
	if s.projects[pi].Document(id) != nil {
		return nil, nil, fmt.Errorf("document %q already exists", id)
	}
	doc := &Document{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		Content:   bytes.Clone(content),
	}

	p := s.projects[pi].clone()
	p.Documents = append(p.Documents, doc)
	return s.withProject(pi, p), doc, nil
}

// WithoutDocument returns a snapshot with document id removed.
func (s *Solution) WithoutDocument(id string) (*Solution, error) {
	pi, di := s.indexOf(id)
	if pi < 0 {
		return nil, fmt.Errorf("document %q not found", id)
	}
	p := s.projects[pi].clone()
	p.Documents = slices.Delete(p.Documents, di, di+1)
	return s.withProject(pi, p), nil
}

// AddedDocumentID returns the id given to an in-memory document.
func AddedDocumentID(projectID, name string) string {
	return projectID + "#" + name
}

func (s *Solution) indexOf(id string) (int, int) {
	for pi, p := range s.projects {
		for di, d := range p.Documents {
			if d.ID == id {
				return pi, di
			}
		}
	}
	return -1, -1
}

func (s *Solution) withProject(i int, p *Project) *Solution {
	projects := slices.Clone(s.projects)
	projects[i] = p
	return &Solution{projects: projects}
}
