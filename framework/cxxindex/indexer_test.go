package cxxindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/headerlint/framework"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, rel := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("// "+rel+"\n"), 0o644))
	}
}

func TestScoreTable(t *testing.T) {
	table := ScoreTable{"Runtime/Engine", "Runtime/Core"}
	cases := []struct {
		path string
		want int
	}{
		{"Runtime/Engine/Public", 2},
		{"Runtime/Core/Public/Math", 1},
		{"Runtime/Core/Engine", 1},
		{"Editor/UnrealEd", 0},
		{"", 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, table.Score(tc.path), tc.path)
	}
	require.Equal(t, 0, ScoreTable(nil).Score("anything"))
}

func TestImportRootStripsWrapperFolders(t *testing.T) {
	cases := map[string]string{
		"Engine/Public/Components":     "Components",
		"Core/Public":                  "",
		"Engine/Classes/GameFramework": "GameFramework",
		"Slate/Private/Widgets/Layout": "Widgets/Layout",
		"Plain/Dir":                    "Plain/Dir",
		"Mod/Public/Inner/Public/Leaf": "Leaf",
		"Public/Sub/Public":            "",
		"Mod/Private/Sub/Public/Deep":  "Deep",
		"":                             "",
	}
	for in, want := range cases {
		require.Equal(t, want, ImportRoot(in), in)
	}
}

func TestIndexerNestedWrapperCutsAtLastOccurrence(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Mod/Public/Sub/Public/Deep/Widget.h", "Mod/Public/Sub/Public/Gadget.h")

	idx, err := NewIndexer(IndexConfig{Extension: "h", EngineMode: true}).Build(root)
	require.NoError(t, err)
	widget, ok := idx.Lookup("Widget")
	require.True(t, ok)
	require.Equal(t, "Deep/Widget.h", widget.IncludePath())
	require.Equal(t, "Mod/Public/Sub/Public/Deep", widget.ModulePath)
	gadget, ok := idx.Lookup("Gadget")
	require.True(t, ok)
	require.Equal(t, "Gadget.h", gadget.IncludePath())
}

func TestIndexerHigherScoreWinsIndependentOfOrder(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeTree(t, low, "Other/Public/Widget.h")
	writeTree(t, high, "Best/Public/Widget.h")
	scores := ScoreTable{"Best", "Mid"}

	for _, roots := range [][]string{{low, high}, {high, low}} {
		idx, err := NewIndexer(IndexConfig{Extension: "h", EngineMode: true, Scores: scores}).Build(roots...)
		require.NoError(t, err)
		rec, ok := idx.Lookup("Widget")
		require.True(t, ok)
		require.Equal(t, high, rec.Root)
		require.Equal(t, "Best/Public", rec.ModulePath)
		require.Equal(t, "", rec.Dir)
		require.Equal(t, 2, scores.Score(rec.ModulePath))
	}
}

func TestIndexerTieKeepsFirstSeen(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTree(t, first, "A/Widget.h")
	writeTree(t, second, "B/Widget.h")

	idx, err := NewIndexer(IndexConfig{Extension: "h"}).Build(first, second)
	require.NoError(t, err)
	rec, ok := idx.Lookup("Widget")
	require.True(t, ok)
	require.Equal(t, "A", rec.Dir)

	idx, err = NewIndexer(IndexConfig{Extension: "h"}).Build(second, first)
	require.NoError(t, err)
	rec, _ = idx.Lookup("Widget")
	require.Equal(t, "B", rec.Dir)
}

func TestIndexerSkipsVendorFolderAtAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Microsoft/Public/WinApi.h",
		"Core/Public/Microsoft/AllowWindows.h",
		"Core/Public/MicrosoftPlatform.h",
	)
	idx, err := NewIndexer(IndexConfig{Extension: "h", EngineMode: true}).Build(root)
	require.NoError(t, err)
	_, ok := idx.Lookup("WinApi")
	require.False(t, ok)
	_, ok = idx.Lookup("AllowWindows")
	require.False(t, ok)
	_, ok = idx.Lookup("MicrosoftPlatform")
	require.True(t, ok)
}

func TestIndexerIgnoreListOnlyOutsideEngineMode(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Core/Skip.h",
		"Core/ByName.h",
		"Gen/Thing.h",
		"Core/Keep.h",
		"Core/Keep.cpp",
	)
	ignore := []string{"Core/Skip.h", "ByName.h", "Gen/**"}

	idx, err := NewIndexer(IndexConfig{Extension: "h", Ignore: ignore}).Build(root)
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())
	rec, ok := idx.Lookup("Keep")
	require.True(t, ok)
	require.Equal(t, "Core", rec.Dir)
	require.Equal(t, "Core/Keep.h", rec.RelPath())

	idx, err = NewIndexer(IndexConfig{Extension: "h", Ignore: ignore, EngineMode: true}).Build(root)
	require.NoError(t, err)
	require.Equal(t, 4, idx.Len())
}

func TestIndexerExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "A.cpp", "A.h", "B.hpp", ".h", "Sub/C.cpp")
	idx, err := NewIndexer(IndexConfig{Extension: ".cpp"}).Build(root)
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())
	rec, ok := idx.Lookup("A")
	require.True(t, ok)
	require.Equal(t, "", rec.Dir)
	require.Equal(t, "A.cpp", rec.RelPath())

	_, err = NewIndexer(IndexConfig{}).Build(root)
	require.Error(t, err)
}

func TestIndexerReportsMissingRoot(t *testing.T) {
	sink := &framework.RecordingTelemetry{}
	missing := filepath.Join(t.TempDir(), "nope")
	idx, err := NewIndexer(IndexConfig{Extension: "h", Telemetry: sink}).Build(missing)
	require.NoError(t, err)
	require.Equal(t, 0, idx.Len())
	events := sink.OfType(framework.EventRootMissing)
	require.Len(t, events, 1)
	require.Equal(t, missing, events[0].Path)

	quiet := &framework.RecordingTelemetry{}
	_, err = NewIndexer(IndexConfig{Extension: "h", QuietMissing: true, Telemetry: quiet}).Build(missing)
	require.NoError(t, err)
	require.Empty(t, quiet.Events())
}

func TestBuildSetMergesExternalOverEngine(t *testing.T) {
	engine := t.TempDir()
	external := t.TempDir()
	module := t.TempDir()
	writeTree(t, engine, "Engine/Public/Shared.h", "Engine/Classes/Actors/Actor.h")
	writeTree(t, external, "Public/Game/Shared.h")
	writeTree(t, module,
		"Public/Core/Thing.h",
		"Private/Core/Thing.cpp",
		"Private/Impl/Helper.h",
	)

	set, err := BuildSet(Layout{
		EngineRoots:   []string{engine},
		ExternalRoots: []string{external},
		ModuleRoots:   []string{module},
	}, SetConfig{})
	require.NoError(t, err)

	rec, ok := set.Engine.Lookup("Shared")
	require.True(t, ok)
	require.Equal(t, external, rec.Root)
	require.Equal(t, "Game/Shared.h", rec.IncludePath())

	rec, ok = set.Engine.Lookup("Actor")
	require.True(t, ok)
	require.Equal(t, "Actors/Actor.h", rec.IncludePath())

	require.Equal(t, 2, set.LocalHeaders.Len())
	rec, ok = set.LocalHeaders.Lookup("Helper")
	require.True(t, ok)
	require.Equal(t, "Impl", rec.Dir)
	require.Equal(t, 1, set.LocalSources.Len())
}

func TestOverlayKeepsBaseRecords(t *testing.T) {
	base := &Index{records: map[string]FileRecord{
		"A": {Name: "A", Dir: "base"},
		"B": {Name: "B", Dir: "base"},
	}}
	top := &Index{records: map[string]FileRecord{"B": {Name: "B", Dir: "top"}}}
	merged := Overlay(base, top)
	require.Equal(t, 2, merged.Len())
	rec, _ := merged.Lookup("B")
	require.Equal(t, "top", rec.Dir)
	names := []string{}
	for _, r := range merged.Records() {
		names = append(names, r.Name)
	}
	require.Equal(t, []string{"A", "B"}, names)
	require.Equal(t, 2, base.Len())
}

func TestLocalFilesKeepsCollidingNames(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTree(t, first, "Public/Widget.h", "Private/Widget.cpp", "Private/Skip.cpp")
	writeTree(t, second, "Public/Ui/Widget.h")

	files, err := LocalFiles(Layout{ModuleRoots: []string{first, second}}, SetConfig{Ignore: []string{"Skip.cpp"}})
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, filepath.Join(first, "Public", "Widget.h"), files[0].FullPath())
	require.Equal(t, filepath.Join(second, "Public", "Ui", "Widget.h"), files[1].FullPath())
	require.Equal(t, "cpp", files[2].Ext)
	require.Equal(t, filepath.Join(first, "Private", "Widget.cpp"), files[2].FullPath())
}

func TestNewIndexFoldsWithScores(t *testing.T) {
	scores := ScoreTable{"Best", "Mid"}
	low := FileRecord{Name: "Widget", ModulePath: "Other"}
	mid := FileRecord{Name: "Widget", ModulePath: "Mid/Public"}
	high := FileRecord{Name: "Widget", ModulePath: "Best/Public"}

	for _, order := range [][]FileRecord{{low, mid, high}, {high, mid, low}, {mid, high, low}} {
		rec, ok := NewIndex(scores, order...).Lookup("Widget")
		require.True(t, ok)
		require.Equal(t, high, rec)
	}
	first := FileRecord{Name: "Tie", ModulePath: "A"}
	second := FileRecord{Name: "Tie", ModulePath: "B"}
	rec, _ := NewIndex(scores, first, second).Lookup("Tie")
	require.Equal(t, first, rec)
}
