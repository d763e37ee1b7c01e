// Package wm talks to i3 (or sway) over its IPC socket: it snapshots the
// workspace tree, renames workspaces and streams window events.
package wm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.i3wm.org/i3/v4"

	"gitlab.com/flib99/i3-workspace-names/internal/label"
)

// ErrCommand is returned when i3 rejects a command.
var ErrCommand = errors.New("i3 command failed")

// scratchPrefix marks internal workspaces such as __i3_scratch.
const scratchPrefix = "__"

// TreeSource produces workspace snapshots.
type TreeSource interface {
	Snapshot(ctx context.Context) ([]label.Workspace, error)
}

// Commander renames workspaces.
type Commander interface {
	Rename(ctx context.Context, oldName, newName string) error
}

// EventSource streams relabel triggers.
type EventSource interface {
	Events(ctx context.Context) *Stream
}

// Client is everything the daemon needs from the window manager.
type Client interface {
	TreeSource
	Commander
	EventSource
}

// I3 is a Client backed by the i3 IPC socket.
type I3 struct {
	getTree       func() (i3.Tree, error)
	getWorkspaces func() ([]i3.Workspace, error)
	runCommand    func(string) ([]i3.CommandResult, error)
	subscribe     func(...i3.EventType) receiver
}

// New returns an I3 client. A non-empty socketPath overrides the socket
// discovered from I3SOCK/SWAYSOCK or i3 --get-socketpath.
func New(socketPath string) *I3 {
	if socketPath != "" {
		i3.SocketPathHook = func() (string, error) { return socketPath, nil }
	}
	return &I3{
		getTree:       i3.GetTree,
		getWorkspaces: i3.GetWorkspaces,
		runCommand:    i3.RunCommand,
		subscribe: func(types ...i3.EventType) receiver {
			return i3.Subscribe(types...)
		},
	}
}

// Snapshot returns the user-visible workspaces in tree order, each with its
// windows in tree order.
func (c *I3) Snapshot(ctx context.Context) ([]label.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, err := c.getTree()
	if err != nil {
		return nil, fmt.Errorf("getting tree: %w", err)
	}
	wss, err := c.getWorkspaces()
	if err != nil {
		return nil, fmt.Errorf("getting workspaces: %w", err)
	}

	nums := make(map[string]int64, len(wss))
	for _, ws := range wss {
		nums[ws.Name] = ws.Num
	}
	return Workspaces(tree.Root, nums), nil
}

// Rename renames the workspace oldName to newName. Equal names are a no-op.
func (c *I3) Rename(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	results, err := c.runCommand(RenameCommand(oldName, newName))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCommand, err)
	}
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("%w: %s", ErrCommand, r.Error)
		}
	}
	return nil
}

// RenameCommand builds the i3 command renaming oldName to newName.
func RenameCommand(oldName, newName string) string {
	return fmt.Sprintf("rename workspace %s to %s", quote(oldName), quote(newName))
}

// quote wraps s in double quotes for the i3 command parser.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Workspaces walks an i3 tree. Internal workspaces (names starting with
// "__") are skipped. nums maps workspace names to their numbers; names
// missing from it fall back to their leading digits, or -1.
func Workspaces(root *i3.Node, nums map[string]int64) []label.Workspace {
	var out []label.Workspace
	var walk func(n *i3.Node)
	walk = func(n *i3.Node) {
		if n == nil {
			return
		}
		if n.Type == i3.WorkspaceNode {
			if strings.HasPrefix(n.Name, scratchPrefix) {
				return
			}
			num, ok := nums[n.Name]
			if !ok {
				num = LeadingNumber(n.Name)
			}
			out = append(out, label.Workspace{
				Num:     num,
				Name:    n.Name,
				Windows: leaves(n),
			})
			return
		}
		for _, child := range n.Nodes {
			walk(child)
		}
		for _, child := range n.FloatingNodes {
			walk(child)
		}
	}
	walk(root)
	return out
}

// leaves returns the windows under n, tiling before floating, depth first.
func leaves(n *i3.Node) []label.Window {
	var out []label.Window
	var walk func(n *i3.Node)
	walk = func(n *i3.Node) {
		if len(n.Nodes) == 0 && len(n.FloatingNodes) == 0 {
			if isWindow(n) {
				out = append(out, label.Window{
					Class: n.WindowProperties.Class,
					Title: n.Name,
				})
			}
			return
		}
		for _, child := range n.Nodes {
			walk(child)
		}
		for _, child := range n.FloatingNodes {
			walk(child)
		}
	}
	for _, child := range n.Nodes {
		walk(child)
	}
	for _, child := range n.FloatingNodes {
		walk(child)
	}
	return out
}

// isWindow reports whether a leaf container holds a client window. Empty
// split containers and placeholders have neither an X window nor a class.
func isWindow(n *i3.Node) bool {
	if n.Type != i3.Con && n.Type != i3.FloatingCon {
		return false
	}
	return n.Window != 0 || n.WindowProperties.Class != ""
}

// LeadingNumber parses the digits a workspace name starts with, as i3 does
// for "2: web". Names without leading digits yield -1.
func LeadingNumber(name string) int64 {
	end := strings.IndexFunc(name, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(name)
	}
	if end == 0 {
		return -1
	}
	n, err := strconv.ParseInt(name[:end], 10, 64)
	if err != nil {
		return -1
	}
	return n
}
