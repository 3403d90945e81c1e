// Lanblast — CLI entry point.
//
// This tool measures achievable LAN throughput between a discoverable server
// and one or more clients, over TCP and UDP. The server advertises its
// ephemeral ports via UDP broadcast; clients pick the offers up and run
// concurrent download sessions against them.
//
// It can be launched non-interactively via flags (lanblast client -s 1000000
// -t 2 -u 2) or interactively (lanblast client) with prompts for the test
// parameters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"lanblast/internal/client"
	"lanblast/internal/config"
	"lanblast/internal/server"
	"lanblast/internal/util"
)

var version = "dev"

func main() {
	// Root context — cancelled on Ctrl+C. Background loops observe it and
	// exit cleanly; in-flight sessions run to their natural end.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := &cli.Command{
		Name:    "lanblast",
		Usage:   "LAN throughput tester with broadcast server discovery",
		Version: version,
		Commands: []*cli.Command{
			serverCommand(),
			clientCommand(),
		},
	}

	pterm.Info.Println(fmt.Sprintf("lanblast — v%s", version))
	pterm.Println()

	if err := cmd.Run(ctx, os.Args); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "serve speed tests and broadcast offers until interrupted",
		Flags: []cli.Flag{debugFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("debug") {
				util.EnableDebug()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return server.New(cfg).Run(ctx)
		},
	}
}

func clientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "listen for offers and run speed tests against every server heard",
		Flags: []cli.Flag{
			debugFlag(),
			&cli.UintFlag{
				Name:    "size",
				Aliases: []string{"s"},
				Usage:   "requested file size in bytes",
				Value:   1_000_000,
			},
			&cli.IntFlag{
				Name:    "tcp",
				Aliases: []string{"t"},
				Usage:   "number of concurrent TCP connections per offer",
				Value:   1,
			},
			&cli.IntFlag{
				Name:    "udp",
				Aliases: []string{"u"},
				Usage:   "number of concurrent UDP connections per offer",
				Value:   1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("debug") {
				util.EnableDebug()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			params := client.Params{
				FileSize: uint64(cmd.Uint("size")),
				TCPConns: int(cmd.Int("tcp")),
				UDPConns: int(cmd.Int("udp")),
			}

			// No flags → interactive mode, matching the classic prompts.
			if !cmd.IsSet("size") && !cmd.IsSet("tcp") && !cmd.IsSet("udp") {
				params = promptParams()
			}

			if params.TCPConns < 0 || params.UDPConns < 0 {
				return fmt.Errorf("connection counts must be non-negative")
			}

			return client.New(cfg, params).Run(ctx)
		},
	}
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "debug",
		Usage: "enable debug logging",
	}
}

// ---------------------------------------------------------------------------
// Interactive prompts
// ---------------------------------------------------------------------------

func promptParams() client.Params {
	return client.Params{
		FileSize: askUint("Enter file size in bytes", 1_000_000),
		TCPConns: int(askUint("Enter number of TCP connections", 1)),
		UDPConns: int(askUint("Enter number of UDP connections", 1)),
	}
}

// askUint prompts until a non-negative integer (or nothing, for the default)
// is entered.
func askUint(prompt string, def uint64) uint64 {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("%s (default %d)", prompt, def)).
			Show()

		raw = strings.TrimSpace(raw)
		if raw == "" {
			pterm.Println()
			return def
		}

		n, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			pterm.Println()
			return n
		}

		util.LogWarning("invalid input: must be a non-negative integer")
		pterm.Println()
	}
}
