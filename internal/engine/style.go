package engine

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"

	"github.com/wharflab/stylist/internal/logging"
	"github.com/wharflab/stylist/internal/workspace"
)

// styleResolver answers .editorconfig property lookups for one project.
type styleResolver struct {
	config *editorconfig.Editorconfig
	root   string
}

func newStyleResolver(ctx context.Context, project *workspace.Project) *styleResolver {
	sc := project.StyleConfig
	if sc == nil || len(sc.Content) == 0 {
		return &styleResolver{}
	}
	cfg, err := editorconfig.Parse(bytes.NewReader(sc.Content))
	if err != nil {
		logging.FromContext(ctx).WithField("style_config", sc.DisplayPath()).
			Warnf("ignoring unreadable style config: %v", err)
		return &styleResolver{}
	}
	root := project.Dir
	if sc.HasPath() {
		root = filepath.Dir(sc.Path)
	}
	return &styleResolver{config: cfg, root: root}
}

// propertiesFor returns the lower-cased properties that apply to doc.
// Documents outside the style-config directory get no properties.
func (s *styleResolver) propertiesFor(project *workspace.Project, doc *workspace.Document) map[string]string {
	if s.config == nil {
		return map[string]string{}
	}
	path := doc.Path
	if path == "" {
		path = filepath.Join(project.Dir, doc.Name)
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return map[string]string{}
	}
	def, err := s.config.GetDefinitionForFilename(filepath.ToSlash(rel))
	if err != nil || def == nil {
		return map[string]string{}
	}
	return definitionProperties(def)
}

// StyleProperties resolves the style properties that apply to the document
// with the given id in sol. Fixers use it to honor the same settings the
// analyzer saw.
func StyleProperties(ctx context.Context, sol *workspace.Solution, docID string) map[string]string {
	project := sol.ProjectOf(docID)
	doc := sol.Document(docID)
	if project == nil || doc == nil {
		return map[string]string{}
	}
	return newStyleResolver(ctx, project).propertiesFor(project, doc)
}

// definitionProperties flattens a definition into a property map.
func definitionProperties(def *editorconfig.Definition) map[string]string {
	props := make(map[string]string, len(def.Raw)+6)
	for k, v := range def.Raw {
		props[strings.ToLower(k)] = strings.ToLower(v)
	}
	setIfMissing := func(key, value string) {
		if _, ok := props[key]; !ok && value != "" {
			props[key] = strings.ToLower(value)
		}
	}
	setIfMissing("indent_style", def.IndentStyle)
	setIfMissing("indent_size", def.IndentSize)
	setIfMissing("end_of_line", def.EndOfLine)
	setIfMissing("charset", def.Charset)
	if def.TabWidth > 0 {
		setIfMissing("tab_width", strconv.Itoa(def.TabWidth))
	}
	if def.TrimTrailingWhitespace != nil {
		setIfMissing("trim_trailing_whitespace", strconv.FormatBool(*def.TrimTrailingWhitespace))
	}
	if def.InsertFinalNewline != nil {
		setIfMissing("insert_final_newline", strconv.FormatBool(*def.InsertFinalNewline))
	}
	return props
}

// BoolProperty reads a boolean style property. Unset or unparsable values
// yield def.
func BoolProperty(style map[string]string, key string, def bool) bool {
	v, ok := style[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// IntProperty reads a positive integer style property. Unset, "off" or
// unparsable values yield def.
func IntProperty(style map[string]string, key string, def int) int {
	v, ok := style[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
