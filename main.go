package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"launchtray/mcp"
)

func main() {
	settings, err := LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	// stdout belongs to the mcp protocol and command output.
	logger := newLogger(settings.LogLevel, settings.LogFormat, os.Stderr)

	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "mcp":
			if err := mcp.RunMCPServer(settings.SocketPath, logger); err != nil {
				fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
				os.Exit(1)
			}
			return

		case "hotbar":
			if err := runHotbarCommand(context.Background(), os.Args[2:], settings, os.Stdout); err != nil {
				if !errors.Is(err, errUsage) {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
				os.Exit(1)
			}
			return

		case "-h", "--help", "help":
			usage()
			return

		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
			usage()
			os.Exit(1)
		}
	}

	// Tray app mode
	if err := runTrayApp(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "tray app error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: launchtray [command]\n\nCommands:\n  (none)   Run the tray\n  mcp      Serve tray tools over stdio\n  hotbar   Inspect or edit the hotbar\n\nConfiguration is read from LAUNCHTRAY_* environment variables.\n")
}
