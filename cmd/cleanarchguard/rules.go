package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// importRule forbids packages under From from importing anything listed in
// Deny. Paths starting with "./" are relative to the module. A trailing "/..."
// on an Except entry exempts the whole subtree.
type importRule struct {
	Name   string   `yaml:"name"`
	From   string   `yaml:"from"`
	Deny   []string `yaml:"deny"`
	Except []string `yaml:"except"`
}

type violation struct {
	Rule   string
	File   string
	Import string
}

func (v violation) String() string {
	return fmt.Sprintf("%s: %s imports %s", v.Rule, v.File, v.Import)
}

func (r importRule) covers(pkgDir string) bool {
	if !underPath(pkgDir, r.From) {
		return false
	}
	for _, ex := range r.Except {
		if sub, ok := strings.CutSuffix(ex, "/..."); ok {
			if underPath(pkgDir, sub) {
				return false
			}
			continue
		}
		if pkgDir == ex {
			return false
		}
	}
	return true
}

func (r importRule) denies(module, importPath string) bool {
	for _, deny := range r.Deny {
		if underPath(importPath, resolve(module, deny)) {
			return true
		}
	}
	return false
}

func resolve(module, path string) string {
	if rel, ok := strings.CutPrefix(path, "./"); ok {
		return module + "/" + rel
	}
	return path
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// checkImports parses the import block of every Go file below root and
// reports each import a rule forbids. Directories starting with "." or "_"
// and testdata are skipped the way the go tool skips them.
func checkImports(root string, cfg *config) ([]violation, error) {
	if len(cfg.Rules) == 0 {
		return nil, nil
	}

	fset := token.NewFileSet()
	var out []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") {
			return nil
		}
		if cfg.IgnoreTests && strings.HasSuffix(name, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pkgDir := "./" + filepath.ToSlash(filepath.Dir(rel))
		if pkgDir == "./." {
			pkgDir = "."
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("parse %s: %w", rel, err)
		}
		for _, imp := range file.Imports {
			importPath, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				return fmt.Errorf("parse %s: %w", rel, err)
			}
			for _, rule := range cfg.Rules {
				if rule.covers(pkgDir) && rule.denies(cfg.Module, importPath) {
					out = append(out, violation{Rule: rule.Name, File: rel, Import: importPath})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Import < out[j].Import
	})
	return out, nil
}
