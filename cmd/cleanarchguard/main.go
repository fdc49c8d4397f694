// Command cleanarchguard enforces the layering of the miniapp module and the
// import rules listed in .gocleanarch.yml.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"gopkg.in/yaml.v3"
)

type config struct {
	Version     int          `yaml:"version"`
	Module      string       `yaml:"module"`
	Root        string       `yaml:"root"`
	IgnoreTests bool         `yaml:"ignore_tests"`
	Layers      layerConfig  `yaml:"layers"`
	Rules       []importRule `yaml:"rules"`
}

type layerConfig struct {
	Root              string              `yaml:"root"`
	IgnorePackages    []string            `yaml:"ignore_packages"`
	AllowedViolations []string            `yaml:"allow_violations"`
	Aliases           map[string][]string `yaml:"aliases"`
}

var layerNames = map[string]cleanarch.Layer{
	"domain":         cleanarch.LayerDomain,
	"application":    cleanarch.LayerApplication,
	"interfaces":     cleanarch.LayerInterfaces,
	"infrastructure": cleanarch.LayerInfrastructure,
}

func main() {
	var (
		configPath = flag.String("config", ".gocleanarch.yml", "path to the config file")
		debug      = flag.Bool("debug", false, "enable go-cleanarch debug logging")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to read config: %v\n", err)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		log.Fatalf("failed to resolve root: %v\n", err)
	}
	if *debug {
		cleanarch.Log.SetOutput(os.Stderr)
	}

	failed := false

	layerErrs, err := checkLayers(root, cfg)
	if err != nil {
		log.Fatalf("go-cleanarch failed: %v\n", err)
	}
	for _, msg := range layerErrs {
		log.Println(msg)
		failed = true
	}

	violations, err := checkImports(root, cfg)
	if err != nil {
		log.Fatalf("import scan failed: %v\n", err)
	}
	for _, v := range violations {
		log.Println(v.String())
		failed = true
	}

	if failed {
		log.Println("cleanarchguard: violations found")
		os.Exit(1)
	}
	log.Printf("cleanarchguard: ok (%d rules)\n", len(cfg.Rules))
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Module == "" {
		return nil, fmt.Errorf("module must be set")
	}
	for layer := range cfg.Layers.Aliases {
		if _, ok := layerNames[layer]; !ok {
			return nil, fmt.Errorf("unknown layer %q", layer)
		}
	}
	for i, rule := range cfg.Rules {
		if rule.Name == "" || rule.From == "" || len(rule.Deny) == 0 {
			return nil, fmt.Errorf("rule %d: name, from and deny are required", i)
		}
	}
	return cfg, nil
}

func layerAliases(custom map[string][]string) map[string]cleanarch.Layer {
	aliases := make(map[string]cleanarch.Layer)
	for name, dirs := range custom {
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			aliases[dir] = layerNames[name]
		}
	}
	return aliases
}

// checkLayers runs go-cleanarch below layers.root and returns the messages
// that are not covered by allow_violations.
func checkLayers(root string, cfg *config) ([]string, error) {
	if cfg.Layers.Root == "" {
		return nil, nil
	}
	validator := cleanarch.NewValidator(layerAliases(cfg.Layers.Aliases))
	ok, errs, err := validator.Validate(filepath.Join(root, cfg.Layers.Root), cfg.IgnoreTests, cfg.Layers.IgnorePackages)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	var out []string
	for _, validationErr := range errs {
		msg := validationErr.Error()
		if allowed(msg, cfg.Layers.AllowedViolations) {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func allowed(msg string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
