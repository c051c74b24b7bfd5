package lintcfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/headerlint/framework/cxxindex"
	"github.com/lexcodex/headerlint/framework/lint"
	"github.com/lexcodex/headerlint/framework/rewrite"
)

// Precondition failures. Any of them stops a run before a file is touched.
var (
	ErrNoProject          = errors.New("cannot find uproject file")
	ErrNoEngineVersion    = errors.New("uproject has no engine association")
	ErrPluginNotFound     = errors.New("cannot find plugin path")
	ErrBaseConfigMissing  = errors.New("cannot find base config file")
	ErrPluginDisabled     = errors.New("header lint is not enabled in this module")
	ErrUnsupportedEngine  = errors.New("unsupported engine version")
	ErrMissingCopyright   = errors.New("copyright not provided in base configuration")
	ErrMultilineCopyright = errors.New("copyright must be a single line")
)

// EnvConfigPath names the environment variable the CLI reads the base
// config location from.
const EnvConfigPath = "HEADERLINT_CONFIG"

// BaseConfig is shared by every plugin linted on a machine.
type BaseConfig struct {
	Copyright string `json:"copyright" yaml:"copyright"`
	// EnginePath maps an engine association to its Engine/Source directory.
	EnginePath     map[string]string `json:"engine_path" yaml:"engine_path"`
	PreferredPaths []string          `json:"preferred_paths" yaml:"preferred_paths"`
	// BannerMarker identifies existing banner lines; defaults to "//$ Copyright".
	BannerMarker      string `json:"banner_marker" yaml:"banner_marker"`
	MaxFilenameLength int    `json:"max_filename_length" yaml:"max_filename_length"`
}

// PluginConfig is read from the linted plugin.
type PluginConfig struct {
	Enabled             bool     `json:"enabled" yaml:"enabled"`
	WhitelistIncludes   []string `json:"whitelist_includes" yaml:"whitelist_includes"`
	IgnoreFiles         []string `json:"ignore_files" yaml:"ignore_files"`
	PluginModules       []string `json:"plugin_modules" yaml:"plugin_modules"`
	ExternalGameModules []string `json:"external_game_modules" yaml:"external_game_modules"`
	ExternalPlugins     []string `json:"external_plugins" yaml:"external_plugins"`
}

// DefaultBaseConfigPath returns config/base_config.json next to the
// executable.
func DefaultBaseConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("config", "base_config.json")
	}
	return filepath.Join(filepath.Dir(exe), "config", "base_config.json")
}

// decode parses JSON files with encoding/json and everything else as YAML.
func decode(path string, data []byte, out any) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, out)
	default:
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// LoadBase reads the base configuration, JSON or YAML by extension.
func LoadBase(path string) (*BaseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBaseConfigMissing, path)
		}
		return nil, err
	}
	var cfg BaseConfig
	if err := decode(path, data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PluginConfigCandidates lists the accepted plugin config locations in
// lookup order.
func PluginConfigCandidates(pluginRoot string) []string {
	dir := filepath.Join(pluginRoot, "Scripts", "HeaderLint")
	return []string{
		filepath.Join(dir, "header_lint.json"),
		filepath.Join(dir, "header_lint.yaml"),
		filepath.Join(dir, "header_lint.yml"),
	}
}

// LoadPlugin reads the plugin configuration. A plugin without one gets an
// empty, disabled config.
func LoadPlugin(pluginRoot string) (*PluginConfig, error) {
	for _, path := range PluginConfigCandidates(pluginRoot) {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var cfg PluginConfig
		if err := decode(path, data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &PluginConfig{}, nil
}

// FindProject returns the first .uproject file of solutionDir. A file path
// is replaced by its directory first.
func FindProject(solutionDir string) (string, error) {
	if info, err := os.Stat(solutionDir); err == nil && !info.IsDir() {
		solutionDir = filepath.Dir(solutionDir)
	}
	matches, err := filepath.Glob(filepath.Join(solutionDir, "*.uproject"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoProject, solutionDir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// EngineVersion reads EngineAssociation from a .uproject file.
func EngineVersion(uproject string) (string, error) {
	data, err := os.ReadFile(uproject)
	if err != nil {
		return "", err
	}
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))
	var project struct {
		EngineAssociation string `json:"EngineAssociation"`
	}
	if err := json.Unmarshal(data, &project); err != nil {
		return "", fmt.Errorf("read engine version from %s: %w", uproject, err)
	}
	if project.EngineAssociation == "" {
		return "", fmt.Errorf("%w: %s", ErrNoEngineVersion, uproject)
	}
	return project.EngineAssociation, nil
}

// FindPluginRoot walks up from dir to the plugin folder: the first ancestor
// whose parent is named Plugins or GameFeatures.
func FindPluginRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for current := abs; ; current = filepath.Dir(current) {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		switch filepath.Base(parent) {
		case "Plugins", "GameFeatures":
			return current, nil
		}
	}
	return "", fmt.Errorf("%w above %s", ErrPluginNotFound, dir)
}

// ModuleRoots returns the plugin's module directories: the configured
// plugin_modules, or every directory under Source.
func ModuleRoots(pluginRoot string, cfg *PluginConfig) ([]string, error) {
	source := filepath.Join(pluginRoot, "Source")
	if cfg != nil && len(cfg.PluginModules) > 0 {
		roots := make([]string, 0, len(cfg.PluginModules))
		for _, name := range cfg.PluginModules {
			roots = append(roots, filepath.Join(source, name))
		}
		return roots, nil
	}
	entries, err := os.ReadDir(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var roots []string
	for _, entry := range entries {
		if entry.IsDir() {
			roots = append(roots, filepath.Join(source, entry.Name()))
		}
	}
	return roots, nil
}

// Run is the fully validated configuration of one lint run.
type Run struct {
	SolutionDir   string
	Project       string
	EngineVersion string
	EngineSource  string
	PluginRoot    string
	Base          *BaseConfig
	Plugin        *PluginConfig
	Layout        cxxindex.Layout
	// MissingRoots lists external modules and plugins that could not be found.
	MissingRoots []string
}

// Options selects the inputs of Resolve.
type Options struct {
	SolutionDir string
	CurrentDir  string
	// BaseConfigPath defaults to DefaultBaseConfigPath.
	BaseConfigPath string
}

// Resolve checks every precondition and plans the root trees. It never
// writes anything.
func Resolve(opts Options) (*Run, error) {
	project, err := FindProject(opts.SolutionDir)
	if err != nil {
		return nil, err
	}
	version, err := EngineVersion(project)
	if err != nil {
		return nil, err
	}
	pluginRoot, err := FindPluginRoot(opts.CurrentDir)
	if err != nil {
		return nil, err
	}
	basePath := opts.BaseConfigPath
	if basePath == "" {
		basePath = DefaultBaseConfigPath()
	}
	base, err := LoadBase(basePath)
	if err != nil {
		return nil, err
	}
	plugin, err := LoadPlugin(pluginRoot)
	if err != nil {
		return nil, err
	}
	if !plugin.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrPluginDisabled, filepath.Base(pluginRoot))
	}
	engineSource, ok := base.EnginePath[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, version)
	}
	if strings.TrimSpace(base.Copyright) == "" {
		return nil, ErrMissingCopyright
	}
	if strings.ContainsAny(base.Copyright, "\r\n") {
		return nil, ErrMultilineCopyright
	}
	modules, err := ModuleRoots(pluginRoot, plugin)
	if err != nil {
		return nil, err
	}

	run := &Run{
		SolutionDir:   filepath.Dir(project),
		Project:       project,
		EngineVersion: version,
		EngineSource:  engineSource,
		PluginRoot:    pluginRoot,
		Base:          base,
		Plugin:        plugin,
	}
	run.Layout = cxxindex.Layout{
		EngineRoots: []string{
			filepath.Join(engineSource, "Runtime"),
			filepath.Join(engineSource, "Editor"),
		},
		ModuleRoots: modules,
	}
	run.planExternalRoots()
	return run, nil
}

func (r *Run) planExternalRoots() {
	for _, name := range r.Plugin.ExternalGameModules {
		path := filepath.Join(r.SolutionDir, "Source", name)
		if isDir(path) {
			r.Layout.ExternalRoots = append(r.Layout.ExternalRoots, path)
		} else {
			r.MissingRoots = append(r.MissingRoots, "game module "+name)
		}
	}
	for _, name := range r.Plugin.ExternalPlugins {
		path := filepath.Join(r.SolutionDir, "Plugins", "GameFeatures", name)
		if !isDir(path) {
			path = filepath.Join(r.SolutionDir, "Plugins", name)
		}
		if isDir(path) {
			r.Layout.ExternalRoots = append(r.Layout.ExternalRoots, path)
		} else {
			r.MissingRoots = append(r.MissingRoots, "plugin "+name)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// PluginName returns the linted plugin's folder name.
func (r *Run) PluginName() string {
	return filepath.Base(r.PluginRoot)
}

// ModuleNames returns the folder names of the linted modules.
func (r *Run) ModuleNames() []string {
	names := make([]string, 0, len(r.Layout.ModuleRoots))
	for _, root := range r.Layout.ModuleRoots {
		names = append(names, filepath.Base(root))
	}
	return names
}

// Scores returns the preferred-path table.
func (r *Run) Scores() cxxindex.ScoreTable {
	return cxxindex.ScoreTable(r.Base.PreferredPaths)
}

// Conventions returns the rewrite conventions for the configured banner.
func (r *Run) Conventions() rewrite.Conventions {
	conv := rewrite.DefaultConventions(r.Base.Copyright)
	if r.Base.BannerMarker != "" {
		conv.BannerMarker = r.Base.BannerMarker
	}
	return conv
}

// MaxFilenameLength returns the configured audit limit.
func (r *Run) MaxFilenameLength() int {
	if r.Base.MaxFilenameLength > 0 {
		return r.Base.MaxFilenameLength
	}
	return lint.DefaultMaxPathLength
}
