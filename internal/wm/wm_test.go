package wm

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.i3wm.org/i3/v4"

	"gitlab.com/flib99/i3-workspace-names/internal/label"
)

func window(class, title string) *i3.Node {
	return &i3.Node{
		Type:             i3.Con,
		Name:             title,
		Window:           1,
		WindowProperties: i3.WindowProperties{Class: class, Title: title},
	}
}

func workspace(name string, tiling []*i3.Node, floating ...*i3.Node) *i3.Node {
	return &i3.Node{
		Type:          i3.WorkspaceNode,
		Name:          name,
		Nodes:         tiling,
		FloatingNodes: floating,
	}
}

func testTree() *i3.Node {
	split := &i3.Node{
		Type: i3.Con,
		Nodes: []*i3.Node{
			window("XTerm", "bash"),
			window("Emacs", "init.el"),
		},
	}
	floating := &i3.Node{
		Type:  i3.FloatingCon,
		Nodes: []*i3.Node{window("Pavucontrol", "Volume")},
	}
	empty := &i3.Node{Type: i3.Con}

	return &i3.Node{
		Type: i3.Root,
		Nodes: []*i3.Node{
			{
				Type: i3.OutputNode,
				Name: "__i3",
				Nodes: []*i3.Node{
					{Type: i3.Con, Name: "content", Nodes: []*i3.Node{
						workspace("__i3_scratch", nil, &i3.Node{Type: i3.FloatingCon, Nodes: []*i3.Node{window("Scratch", "x")}}),
					}},
				},
			},
			{
				Type: i3.OutputNode,
				Name: "eDP-1",
				Nodes: []*i3.Node{
					{Type: i3.Con, Name: "content", Nodes: []*i3.Node{
						workspace("1", []*i3.Node{window("Firefox", "Mozilla Firefox")}),
						workspace("2: old", []*i3.Node{split, empty}, floating),
						workspace("mail", nil),
					}},
				},
			},
		},
	}
}

func TestWorkspaces(t *testing.T) {
	got := Workspaces(testTree(), map[string]int64{"1": 1, "2: old": 2})

	want := []label.Workspace{
		{Num: 1, Name: "1", Windows: []label.Window{{Class: "Firefox", Title: "Mozilla Firefox"}}},
		{Num: 2, Name: "2: old", Windows: []label.Window{
			{Class: "XTerm", Title: "bash"},
			{Class: "Emacs", Title: "init.el"},
			{Class: "Pavucontrol", Title: "Volume"},
		}},
		{Num: -1, Name: "mail"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Workspaces() =\n  %+v\nwant\n  %+v", got, want)
	}
}

func TestWorkspacesNumberFallback(t *testing.T) {
	root := &i3.Node{Type: i3.Root, Nodes: []*i3.Node{workspace("7: chat", nil)}}
	got := Workspaces(root, nil)
	if len(got) != 1 || got[0].Num != 7 {
		t.Errorf("Workspaces() = %+v, want num 7", got)
	}
}

func TestWorkspacesNilRoot(t *testing.T) {
	if got := Workspaces(nil, nil); got != nil {
		t.Errorf("Workspaces(nil) = %+v", got)
	}
}

func TestLeadingNumber(t *testing.T) {
	tests := []struct {
		name string
		want int64
	}{
		{"1", 1},
		{"10: web", 10},
		{"3:code", 3},
		{"web", -1},
		{"", -1},
		{"99999999999999999999", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LeadingNumber(tt.name); got != tt.want {
				t.Errorf("LeadingNumber(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestRenameCommand(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     string
	}{
		{"plain", "1", "1: xterm ", `rename workspace "1" to "1: xterm "`},
		{"quotes", `2: "x"`, `2: say "hi"`, `rename workspace "2: \"x\"" to "2: say \"hi\""`},
		{"backslash", `3`, `3: C:\tmp`, `rename workspace "3" to "3: C:\\tmp"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenameCommand(tt.old, tt.new); got != tt.want {
				t.Errorf("RenameCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func fakeClient() (*I3, *[]string) {
	var commands []string
	c := &I3{
		getTree: func() (i3.Tree, error) { return i3.Tree{Root: testTree()}, nil },
		getWorkspaces: func() ([]i3.Workspace, error) {
			return []i3.Workspace{{Num: 1, Name: "1"}, {Num: 2, Name: "2: old"}}, nil
		},
		runCommand: func(cmd string) ([]i3.CommandResult, error) {
			commands = append(commands, cmd)
			return []i3.CommandResult{{Success: true}}, nil
		},
	}
	return c, &commands
}

func TestSnapshot(t *testing.T) {
	c, _ := fakeClient()
	got, err := c.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got) != 3 || got[1].Num != 2 || len(got[1].Windows) != 3 {
		t.Errorf("Snapshot() = %+v", got)
	}
}

func TestSnapshotErrors(t *testing.T) {
	boom := errors.New("boom")

	c, _ := fakeClient()
	c.getTree = func() (i3.Tree, error) { return i3.Tree{}, boom }
	if _, err := c.Snapshot(context.Background()); !errors.Is(err, boom) {
		t.Errorf("tree error = %v, want boom", err)
	}

	c, _ = fakeClient()
	c.getWorkspaces = func() ([]i3.Workspace, error) { return nil, boom }
	if _, err := c.Snapshot(context.Background()); !errors.Is(err, boom) {
		t.Errorf("workspaces error = %v, want boom", err)
	}

	c, _ = fakeClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Snapshot(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled error = %v", err)
	}
}

func TestRename(t *testing.T) {
	c, commands := fakeClient()

	if err := c.Rename(context.Background(), "1", "1: x "); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := c.Rename(context.Background(), "same", "same"); err != nil {
		t.Fatalf("Rename same: %v", err)
	}

	want := []string{`rename workspace "1" to "1: x "`}
	if !reflect.DeepEqual(*commands, want) {
		t.Errorf("commands = %q, want %q", *commands, want)
	}
}

func TestRenameRejected(t *testing.T) {
	c, _ := fakeClient()
	c.runCommand = func(string) ([]i3.CommandResult, error) {
		return []i3.CommandResult{{Success: false, Error: "no such workspace"}}, nil
	}
	if err := c.Rename(context.Background(), "1", "2"); !errors.Is(err, ErrCommand) {
		t.Errorf("Rename() error = %v, want ErrCommand", err)
	}

	c.runCommand = func(string) ([]i3.CommandResult, error) {
		return nil, errors.New("socket closed")
	}
	if err := c.Rename(context.Background(), "1", "2"); !errors.Is(err, ErrCommand) {
		t.Errorf("Rename() error = %v, want ErrCommand", err)
	}
}
