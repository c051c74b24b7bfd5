package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/headerlint/cmd/internal/lintcfg"
	"github.com/lexcodex/headerlint/cmd/internal/toolchain"
	"github.com/lexcodex/headerlint/framework/cxxindex"
)

const banner = "//$ Copyright Example $//"

type project struct {
	solution string
	plugin   string
	engine   string
	base     string
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newProject(t *testing.T, maxFilename int) project {
	t.Helper()
	root := t.TempDir()
	p := project{
		solution: filepath.Join(root, "Game"),
		plugin:   filepath.Join(root, "Game", "Plugins", "Dungeon"),
		engine:   filepath.Join(root, "UE_5.3", "Engine", "Source"),
		base:     filepath.Join(root, "tool", "config", "base_config.yaml"),
	}
	write(t, filepath.Join(p.solution, "Game.uproject"), `{"EngineAssociation": "5.3"}`)
	write(t, filepath.Join(p.plugin, "Scripts", "HeaderLint", "header_lint.json"), `{"enabled": true}`)
	base := "copyright: \"" + banner + "\"\n" +
		"engine_path:\n  \"5.3\": \"" + filepath.ToSlash(p.engine) + "\"\n" +
		"preferred_paths: [Runtime/Engine]\n"
	if maxFilename > 0 {
		base += "max_filename_length: " + strconv.Itoa(maxFilename) + "\n"
	}
	write(t, p.base, base)

	write(t, filepath.Join(p.engine, "Runtime", "Engine", "Public", "GameFramework", "Actor.h"), "#pragma once\n")
	require.NoError(t, os.MkdirAll(filepath.Join(p.engine, "Editor"), 0o755))

	write(t, p.header("Door.h"), strings.Join([]string{
		"#pragma once",
		`#include "Actor.h"`,
		`#include "Door.generated.h"`,
		"UCLASS()",
		"class ADoor : public AActor { GENERATED_BODY() };",
		"",
	}, "\n"))
	write(t, p.source("Door.cpp"), strings.Join([]string{
		`#include "Door.h"`,
		`#include "Actor.h"`,
		"void ADoor::Open() {}",
		"",
	}, "\n"))
	return p
}

func (p project) header(name string) string {
	return filepath.Join(p.plugin, "Source", "DungeonRuntime", "Public", name)
}

func (p project) source(name string) string {
	return filepath.Join(p.plugin, "Source", "DungeonRuntime", "Private", name)
}

func (p project) args(command string, extra ...string) []string {
	args := []string{"--no-color", "--config", p.base, command, p.solution, filepath.Dir(p.header(""))}
	return append(args, extra...)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

var (
	wantDoorHeader = strings.Join([]string{
		banner,
		"",
		"#pragma once",
		`#include "CoreMinimal.h"`,
		`#include "GameFramework/Actor.h"`,
		`#include "Door.generated.h"`,
		"",
		"UCLASS()",
		"class ADoor : public AActor { GENERATED_BODY() };",
		"",
	}, "\n")
	wantDoorSource = strings.Join([]string{
		banner,
		"",
		`#include "Door.h"`,
		"",
		`#include "GameFramework/Actor.h"`,
		"",
		"void ADoor::Open() {}",
		"",
	}, "\n")
)

func TestLintRewritesPluginAndIsIdempotent(t *testing.T) {
	p := newProject(t, 0)

	out, errOut, err := execute(t, p.args("lint")...)
	require.NoError(t, err)
	require.Empty(t, errOut)
	require.Contains(t, out, "Engine: 5.3\n")
	require.Contains(t, out, "Plugin: Dungeon\n")
	require.Contains(t, out, "Modules: DungeonRuntime\n")
	require.Contains(t, out, "Parsed engine code [1 Headers]\n")
	require.Contains(t, out, "Parsed local code [1 Headers, 1 Sources]\n")
	require.Contains(t, out, "Written 1 Headers, 1 Sources\n")
	require.Equal(t, wantDoorHeader, read(t, p.header("Door.h")))
	require.Equal(t, wantDoorSource, read(t, p.source("Door.cpp")))

	out, _, err = execute(t, p.args("lint")...)
	require.NoError(t, err)
	require.Contains(t, out, "Written 0 Headers, 0 Sources\n")
}

func TestLintDryRunLeavesFiles(t *testing.T) {
	p := newProject(t, 0)
	before := read(t, p.source("Door.cpp"))

	out, _, err := execute(t, p.args("lint", "--dry-run")...)
	require.NoError(t, err)
	require.Contains(t, out, "Written 1 Headers, 1 Sources\n")
	require.Equal(t, before, read(t, p.source("Door.cpp")))
}

func TestLintPreconditionTouchesNothing(t *testing.T) {
	p := newProject(t, 0)
	write(t, filepath.Join(p.plugin, "Scripts", "HeaderLint", "header_lint.json"), `{"enabled": false}`)
	before := read(t, p.header("Door.h"))

	_, _, err := execute(t, p.args("lint")...)
	require.ErrorIs(t, err, lintcfg.ErrPluginDisabled)
	require.Equal(t, before, read(t, p.header("Door.h")))
}

func TestLintWritesDebugLog(t *testing.T) {
	p := newProject(t, 0)
	logPath := filepath.Join(t.TempDir(), "header_lint_debug.log")

	out, _, err := execute(t, append([]string{"--debug-log", logPath}, p.args("lint")...)...)
	require.NoError(t, err)
	require.Contains(t, out, "Debug information has been written to "+logPath)
	data := read(t, logPath)
	require.Contains(t, data, `"type":"file_modified"`)
	require.Contains(t, data, `"type":"run_summary"`)
}

func TestValidateReportsMissingCategory(t *testing.T) {
	p := newProject(t, 0)
	write(t, p.header("Key.h"), strings.Join([]string{
		"#pragma once",
		"class UKey {",
		"	UPROPERTY(BlueprintReadOnly)",
		"	int Code;",
		`	UFUNCTION(BlueprintCallable, Category = "Key")`,
		"	void Use();",
		"};",
	}, "\n"))
	before := read(t, p.header("Key.h"))

	_, errOut, err := execute(t, p.args("validate")...)
	require.EqualError(t, err, "1 metadata declarations lack a category")
	require.Contains(t, errOut, "WARN: Blueprint access doesn't have a category. [Key.h:3]")
	require.Equal(t, before, read(t, p.header("Key.h")))
}

func writeKeyHeader(t *testing.T, p project) {
	t.Helper()
	write(t, p.header("Key.h"), strings.Join([]string{
		"#pragma once",
		"class UKey {",
		"	UPROPERTY(BlueprintReadOnly)",
		"	int Code;",
		"};",
		"",
	}, "\n"))
}

func TestLintNoValidateSkipsCategoryCheck(t *testing.T) {
	p := newProject(t, 0)
	writeKeyHeader(t, p)

	out, errOut, err := execute(t, p.args("lint", "--no-validate")...)
	require.NoError(t, err)
	require.NotContains(t, errOut, "category")
	require.NotContains(t, out, "Warnings:")

	writeKeyHeader(t, p)
	out, errOut, err = execute(t, p.args("lint")...)
	require.NoError(t, err)
	require.Contains(t, errOut, "WARN: Blueprint access doesn't have a category. [Key.h:3]")
	require.Contains(t, out, "Warnings: 1\n")
}

func TestValidateContinuesPastUnreadableHeader(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a dangling symlink")
	}
	p := newProject(t, 0)
	writeKeyHeader(t, p)
	require.NoError(t, os.Symlink(filepath.Join(p.plugin, "missing.h"), p.header("Broken.h")))

	_, errOut, err := execute(t, p.args("validate")...)
	require.EqualError(t, err, "1 headers could not be read")
	require.Contains(t, errOut, "Error: "+p.header("Broken.h")+":")
	require.Contains(t, errOut, "[Key.h:3]")
}

func TestConfigPathFromDotEnv(t *testing.T) {
	p := newProject(t, 0)
	t.Setenv(lintcfg.EnvConfigPath, "")
	require.NoError(t, os.Unsetenv(lintcfg.EnvConfigPath))
	write(t, filepath.Join(p.solution, ".env"), lintcfg.EnvConfigPath+"="+filepath.ToSlash(p.base)+"\n")

	out, _, err := execute(t, "--no-color", "lint", p.solution, filepath.Dir(p.header("")), "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "Engine: 5.3\n")
}

func TestAuditReportsLongPaths(t *testing.T) {
	p := newProject(t, 36)

	_, errOut, err := execute(t, p.args("audit")...)
	require.EqualError(t, err, "1 files exceed 36 characters")
	require.Contains(t, errOut, "Error: The following files in the 'Dungeon' plugin have filenames greater than 36 characters:")
	require.Contains(t, errOut, "Error: Source/DungeonRuntime/Private/Door.cpp\n")
	require.NotContains(t, errOut, "Door.h")
}

func TestIndexWritesSnapshot(t *testing.T) {
	p := newProject(t, 0)
	dbPath := filepath.Join(t.TempDir(), "index.db")

	out, _, err := execute(t, p.args("index", "--db", dbPath)...)
	require.NoError(t, err)
	require.Contains(t, out, "Engine headers: 1\n")
	require.Contains(t, out, "Snapshot written to "+dbPath)

	store, err := cxxindex.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	rows, err := store.Lookup("Door")
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestRegenRequiresBuildScript(t *testing.T) {
	p := newProject(t, 0)

	_, _, err := execute(t, "--no-color", "--config", p.base, "regen", p.solution)
	require.ErrorIs(t, err, toolchain.ErrBuildScriptMissing)
}
