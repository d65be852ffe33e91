package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"launchtray/bridge"
	"launchtray/store"
	"launchtray/tray"
)

var errUsage = errors.New("usage")

// hotbarEditor edits the remembered hotbar. It goes through the running tray
// when one answers on the bridge, and edits the store directly otherwise.
type hotbarEditor struct {
	settings Settings
	out      io.Writer
	client   *bridge.Client
}

func runHotbarCommand(ctx context.Context, args []string, settings Settings, out io.Writer) error {
	if len(args) == 0 {
		hotbarUsage(out)
		return errUsage
	}

	e := &hotbarEditor{
		settings: settings,
		out:      out,
		client:   bridge.NewClient(settings.SocketPath),
	}

	switch args[0] {
	case "list":
		return e.list(ctx)
	case "pin", "unpin":
		id, err := parseIDFlag(args[1:])
		if err != nil {
			return err
		}
		if args[0] == "pin" {
			return e.pin(ctx, id)
		}
		return e.unpin(ctx, id)
	case "clear":
		return e.clear(ctx)
	default:
		hotbarUsage(out)
		return fmt.Errorf("unknown hotbar command: %s", args[0])
	}
}

func hotbarUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: launchtray hotbar <command>\n\nCommands:\n  list                 Show the hotbar\n  pin --id <entry>     Add an entry to the hotbar\n  unpin --id <entry>   Remove an entry from the hotbar\n  clear                Forget every remembered entry\n")
}

func parseIDFlag(args []string) (string, error) {
	var id string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--id":
			i++
			if i < len(args) {
				id = args[i]
			}
		default:
			return "", fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	if id == "" {
		return "", errors.New("--id is required")
	}
	return id, nil
}

// live returns the running tray's snapshot, or false when no tray answers.
func (e *hotbarEditor) live() (tray.Snapshot, bool) {
	snap, err := e.client.Snapshot()
	if err != nil {
		return tray.Snapshot{}, false
	}
	return snap, true
}

// withMembership opens the configured store and hands fn the remembered
// hotbar.
func (e *hotbarEditor) withMembership(ctx context.Context, fn func(*tray.Membership) error) error {
	st, closeStore, err := store.Open(e.settings.Store, e.settings.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore()

	m, err := tray.LoadMembership(ctx, st)
	if err != nil {
		return err
	}
	return fn(m)
}

func (e *hotbarEditor) list(ctx context.Context) error {
	if snap, ok := e.live(); ok {
		if len(snap.Hotbar) == 0 {
			fmt.Fprintln(e.out, "hotbar is empty")
			return nil
		}
		w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMANIFEST")
		for _, entry := range snap.Hotbar {
			manifest := entry.ManifestRef
			if manifest == "" {
				manifest = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.ID, entry.Title, manifest)
		}
		return w.Flush()
	}

	return e.withMembership(ctx, func(m *tray.Membership) error {
		ids := m.IDs()
		if len(ids) == 0 {
			fmt.Fprintln(e.out, "no entries remembered")
			return nil
		}
		w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREMEMBERED")
		for _, id := range ids {
			fmt.Fprintf(w, "%s\tyes\n", id)
		}
		return w.Flush()
	})
}

func (e *hotbarEditor) pin(ctx context.Context, id string) error {
	if _, ok := e.live(); ok {
		outcome, err := e.client.Pin(id)
		if err != nil {
			return err
		}
		if outcome != tray.OutcomeDropped {
			return fmt.Errorf("pin %q: %s", id, outcome)
		}
		fmt.Fprintf(e.out, "pinned %q\n", id)
		return nil
	}

	return e.withMembership(ctx, func(m *tray.Membership) error {
		if m.Contains(id) {
			fmt.Fprintf(e.out, "%q is already remembered\n", id)
			return nil
		}
		if m.Len() >= tray.MaxHotbar {
			return fmt.Errorf("pin %q: hotbar holds at most %d entries", id, tray.MaxHotbar)
		}
		if err := m.Add(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "remembered %q\n", id)
		return nil
	})
}

func (e *hotbarEditor) unpin(ctx context.Context, id string) error {
	if _, ok := e.live(); ok {
		if _, err := e.client.Unpin(id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "unpinned %q\n", id)
		return nil
	}

	return e.withMembership(ctx, func(m *tray.Membership) error {
		if !m.Contains(id) {
			return fmt.Errorf("unpin %q: not remembered", id)
		}
		if err := m.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "forgot %q\n", id)
		return nil
	})
}

func (e *hotbarEditor) clear(ctx context.Context) error {
	if snap, ok := e.live(); ok {
		for _, entry := range snap.Hotbar {
			if _, err := e.client.Unpin(entry.ID); err != nil {
				return err
			}
		}
		fmt.Fprintf(e.out, "unpinned %d entries\n", len(snap.Hotbar))
		return nil
	}

	return e.withMembership(ctx, func(m *tray.Membership) error {
		n := m.Len()
		if err := m.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "forgot %d entries\n", n)
		return nil
	})
}
