package dispatch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_Analyze(t *testing.T) {
	resolved := ResolvedTarget{RepoName: "demo", AbsolutePath: "/base/demo"}
	got := Build(Action{Kind: ActionAnalyze}, resolved, "")
	want := []string{"--project-path", "/base/demo", "--analyze"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ModelOnlyWhenSupplied(t *testing.T) {
	resolved := ResolvedTarget{RepoName: "demo", AbsolutePath: "/base/demo"}
	got := Build(Action{Kind: ActionAnalyze}, resolved, "codellama")
	want := []string{"--project-path", "/base/demo", "--model", "codellama", "--analyze"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ErrorTextStaysOneToken(t *testing.T) {
	resolved := ResolvedTarget{RepoName: "demo", AbsolutePath: "/base/demo"}
	text := "segmentation fault at 0x00  (core dumped)"
	got := Build(Action{Kind: ActionExplainError, ErrorText: text}, resolved, "")
	want := []string{"--project-path", "/base/demo", "--error", text}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_FileWithAndWithoutLine(t *testing.T) {
	resolved := ResolvedTarget{RepoName: "demo", AbsolutePath: "/base/demo"}

	got := Build(Action{Kind: ActionInspectFile, FilePath: "src/main.c", Line: 42}, resolved, "")
	want := []string{"--project-path", "/base/demo", "--file", "src/main.c", "--line", "42"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("with line (-want +got):\n%s", diff)
	}

	got = Build(Action{Kind: ActionInspectFile, FilePath: "src/main.c"}, resolved, "")
	want = []string{"--project-path", "/base/demo", "--file", "src/main.c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("without line (-want +got):\n%s", diff)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	resolved := ResolvedTarget{RepoName: "demo", AbsolutePath: "/base/demo"}
	action := Action{Kind: ActionInspectFile, FilePath: "a.go", Line: 3}
	first := Build(action, resolved, "m")
	second := Build(action, resolved, "m")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Build is not deterministic:\n%s", diff)
	}
}
