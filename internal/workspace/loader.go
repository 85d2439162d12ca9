package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"

	"github.com/wharflab/stylist/internal/logging"
)

// Loader loads targets from storage into snapshots.
type Loader struct {
	// Concurrency bounds parallel file reads. Zero means GOMAXPROCS.
	Concurrency int

	// Exclude are doublestar patterns for files to leave out.
	Exclude []string
}

// unitSpec describes one unit before its files are read.
type unitSpec struct {
	id    string
	name  string
	dir   string
	files []string
}

// Load resolves target and reads it into a fresh snapshot. styleConfigPath
// selects the style-config document; when empty the nearest one above the
// target is used.
func (l *Loader) Load(ctx context.Context, target, styleConfigPath string) (*Solution, error) {
	t, err := ResolveTarget(target)
	if err != nil {
		return nil, err
	}
	return l.LoadTarget(ctx, t, styleConfigPath)
}

// LoadTarget is like Load for an already resolved target.
func (l *Loader) LoadTarget(ctx context.Context, t Target, styleConfigPath string) (*Solution, error) {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"target": t.Path, "kind": t.Kind.String()})

	units, err := l.plan(t)
	if err != nil {
		return nil, err
	}

	style, err := loadStyleConfig(styleConfigPath, t.Dir())
	if err != nil {
		return nil, err
	}

	docs, err := l.readUnits(ctx, units)
	if err != nil {
		return nil, err
	}

	projects := make([]*Project, 0, len(units))
	for i, u := range units {
		overrides, err := loadOverrides(u.dir)
		if err != nil {
			return nil, err
		}
		projects = append(projects, &Project{
			ID:                u.id,
			Name:              u.name,
			Dir:               u.dir,
			Documents:         docs[i],
			StyleConfig:       style,
			SeverityOverrides: overrides,
		})
		log.WithField("unit", u.name).Debugf("loaded %d documents", len(docs[i]))
	}
	return NewSolution(projects...), nil
}

// plan expands a target into units with their file lists.
func (l *Loader) plan(t Target) ([]unitSpec, error) {
	switch t.Kind {
	case TargetFile:
		return []unitSpec{{
			id:    t.Path,
			name:  filepath.Base(t.Path),
			dir:   filepath.Dir(t.Path),
			files: []string{t.Path},
		}}, nil

	case TargetDirectory:
		files, err := listSources(t.Path, walkOptions{exclude: l.Exclude})
		if err != nil {
			return nil, &ConfigurationError{Path: t.Path, Reason: "cannot list sources", Err: err}
		}
		return []unitSpec{{id: t.Path, name: filepath.Base(t.Path), dir: t.Path, files: files}}, nil

	case TargetModule:
		u, err := l.moduleUnit(t.Path)
		if err != nil {
			return nil, err
		}
		return []unitSpec{u}, nil

	case TargetWorkspace:
		return l.workspaceUnits(t.Path)
	}
	return nil, &ConfigurationError{Path: t.Path, Reason: "unsupported target type"}
}

// moduleUnit builds the unit for a go.mod file. Nested modules are left out.
func (l *Loader) moduleUnit(gomod string) (unitSpec, error) {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return unitSpec{}, &ConfigurationError{Path: gomod, Reason: "cannot read module file", Err: err}
	}
	mf, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return unitSpec{}, &ConfigurationError{Path: gomod, Reason: "invalid module file", Err: err}
	}
	dir := filepath.Dir(gomod)
	name := filepath.Base(dir)
	if mf.Module != nil && mf.Module.Mod.Path != "" {
		name = mf.Module.Mod.Path
	}
	files, err := listSources(dir, walkOptions{exclude: l.Exclude, skipNestedModules: true})
	if err != nil {
		return unitSpec{}, &ConfigurationError{Path: gomod, Reason: "cannot list sources", Err: err}
	}
	return unitSpec{id: gomod, name: name, dir: dir, files: files}, nil
}

// workspaceUnits builds one unit per use directive of a go.work file.
func (l *Loader) workspaceUnits(gowork string) ([]unitSpec, error) {
	data, err := os.ReadFile(gowork)
	if err != nil {
		return nil, &ConfigurationError{Path: gowork, Reason: "cannot read workspace file", Err: err}
	}
	wf, err := modfile.ParseWork(gowork, data, nil)
	if err != nil {
		return nil, &ConfigurationError{Path: gowork, Reason: "invalid workspace file", Err: err}
	}
	base := filepath.Dir(gowork)
	units := make([]unitSpec, 0, len(wf.Use))
	for _, use := range wf.Use {
		dir := use.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, filepath.FromSlash(dir))
		}
		gomod := filepath.Join(dir, "go.mod")
		if !fileExists(gomod) {
			return nil, &ConfigurationError{Path: gowork, Reason: "use directive without go.mod: " + use.Path}
		}
		u, err := l.moduleUnit(gomod)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// readUnits reads every file of every unit in parallel. Each worker fills
// only its own slot, so documents keep the unit's sorted file order.
func (l *Loader) readUnits(ctx context.Context, units []unitSpec) ([][]*Document, error) {
	jobs := l.Concurrency
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([][]*Document, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, u := range units {
		results[i] = make([]*Document, len(u.files))
		for k, path := range u.files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return &ConfigurationError{Path: path, Reason: "cannot read source", Err: err}
				}
				results[i][k] = &Document{
					ID:        path,
					ProjectID: u.id,
					Name:      filepath.Base(path),
					Path:      path,
					Content:   data,
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
