// Package project loads SQL Server database projects: the .sqlproj file, its
// build items and SQLCMD variables, and the script files they point at.
package project

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Properties are the project-level settings sqlforge consumes.
type Properties struct {
	Name          string
	Version       string
	DefaultSchema string
	Collation     string
	TargetVersion string // e.g. "Sql160", extracted from the DSP property
}

// Project is a loaded database project with its scripts discovered.
type Project struct {
	File      string // path to the .sqlproj, empty when loaded from a bare directory
	Root      string
	Props     Properties
	Scripts   []string // absolute paths, deterministic order
	Variables map[string]string
}

// sqlproj mirrors the MSBuild layout we care about. Everything else in the
// file is ignored.
type sqlproj struct {
	PropertyGroups []struct {
		Name          string `xml:"Name"`
		DSP           string `xml:"DSP"`
		DacVersion    string `xml:"DacVersion"`
		DefaultSchema string `xml:"DefaultSchema"`
		Collation     string `xml:"ModelCollation"`
	} `xml:"PropertyGroup"`
	ItemGroups []struct {
		Build []struct {
			Include string `xml:"Include,attr"`
		} `xml:"Build"`
		Variables []struct {
			Include      string `xml:"Include,attr"`
			DefaultValue string `xml:"DefaultValue"`
		} `xml:"SqlCmdVariable"`
	} `xml:"ItemGroup"`
}

// Load reads a project. path may be a .sqlproj file or a directory; a
// directory is scanned for a single .sqlproj, and when none exists every
// .sql file under it becomes a build item.
func Load(path string) (*Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	if info.IsDir() {
		if found, ok := findProjectFile(path); ok {
			return loadFile(found)
		}
		return loadDir(path)
	}
	return loadFile(path)
}

// findProjectFile looks for exactly one .sqlproj directly in dir.
func findProjectFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	var matches []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".sqlproj") {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

func loadFile(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var doc sqlproj
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	p := &Project{
		File:      abs,
		Root:      filepath.Dir(abs),
		Variables: make(map[string]string),
	}
	p.Props = propsFrom(doc)
	if p.Props.Name == "" {
		p.Props.Name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	if p.Props.DefaultSchema == "" {
		p.Props.DefaultSchema = "dbo"
	}
	if p.Props.Version == "" {
		p.Props.Version = "1.0.0.0"
	}

	var patterns []string
	for _, ig := range doc.ItemGroups {
		for _, b := range ig.Build {
			patterns = append(patterns, b.Include)
		}
		for _, v := range ig.Variables {
			p.Variables[v.Include] = v.DefaultValue
		}
	}

	p.Scripts, err = expandBuildItems(p.Root, patterns)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// propsFrom merges property groups first-value-wins, matching MSBuild's
// unconditional evaluation order closely enough for schema projects.
func propsFrom(doc sqlproj) Properties {
	var props Properties
	pick := func(dst *string, val string) {
		if *dst == "" && val != "" {
			*dst = strings.TrimSpace(val)
		}
	}
	for _, pg := range doc.PropertyGroups {
		pick(&props.Name, pg.Name)
		pick(&props.Version, pg.DacVersion)
		pick(&props.DefaultSchema, pg.DefaultSchema)
		pick(&props.Collation, pg.Collation)
		if props.TargetVersion == "" && pg.DSP != "" {
			props.TargetVersion = dspVersion(pg.DSP)
		}
	}
	return props
}

// dspVersion extracts the SqlNNN token from a DatabaseSchemaProvider name.
func dspVersion(dsp string) string {
	for _, part := range strings.Split(dsp, ".") {
		if strings.HasPrefix(part, "Sql") && strings.HasSuffix(part, "DatabaseSchemaProvider") {
			return strings.TrimSuffix(part, "DatabaseSchemaProvider")
		}
	}
	return "Sql160"
}

func loadDir(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	p := &Project{
		Root: abs,
		Props: Properties{
			Name:          filepath.Base(abs),
			Version:       "1.0.0.0",
			DefaultSchema: "dbo",
			TargetVersion: "Sql160",
		},
		Variables: make(map[string]string),
	}
	p.Scripts, err = expandBuildItems(abs, []string{"**/*.sql"})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// expandBuildItems turns Build Include patterns into a sorted, deduplicated
// list of absolute script paths. SSDT writes Windows separators; both kinds
// are accepted. Patterns containing ** walk the subtree.
func expandBuildItems(root string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var scripts []string
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		scripts = append(scripts, path)
	}

	for _, pat := range patterns {
		pat = filepath.ToSlash(strings.ReplaceAll(pat, `\`, "/"))
		matches, err := expandPattern(root, pat)
		if err != nil {
			return nil, fmt.Errorf("expanding build item %q: %w", pat, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	sort.Strings(scripts)
	return scripts, nil
}

func expandPattern(root, pat string) ([]string, error) {
	if !strings.Contains(pat, "**") {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pat)))
		if err != nil {
			return nil, err
		}
		// a literal item that globbed to nothing may still name a file the
		// glob syntax would reject; missing files are a caller problem later
		if len(matches) == 0 && !strings.ContainsAny(pat, "*?[") {
			candidate := filepath.Join(root, filepath.FromSlash(pat))
			if _, err := os.Stat(candidate); err == nil {
				matches = append(matches, candidate)
			}
		}
		return matches, nil
	}

	// **/suffix: walk everything under the prefix directory and match the
	// final path segment against the suffix pattern
	prefix, suffix, _ := strings.Cut(pat, "**")
	base := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(prefix, "/")))
	suffix = strings.TrimPrefix(suffix, "/")
	if _, err := os.Stat(base); err != nil {
		return nil, nil
	}

	var matches []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ok, merr := filepath.Match(suffix, d.Name())
		if merr != nil {
			return merr
		}
		if ok {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
