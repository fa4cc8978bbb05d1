package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tr1v3r/pkg/log"
	"github.com/urfave/cli/v3"

	"github.com/tr1v3r/mpvc/internal/config"
	"github.com/tr1v3r/mpvc/mpv"
)

// cfg is filled in by the root Before hook
var cfg config.Config

func main() {
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		log.Close()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "mpvc",
		Usage: "control a running mpv through its JSON IPC socket",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "socket",
				Aliases: []string{"S"},
				Usage:   "path to the mpv ipc socket (mpv --input-ipc-server)",
				Value:   config.DefaultSocket,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the config file",
				Value:   config.DefaultPath(),
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "wait for the socket to appear instead of failing",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log ipc traffic",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			loaded, err := config.Load(cmd.String("config"))
			if err != nil {
				return ctx, err
			}
			if cmd.IsSet("socket") {
				loaded.Socket = cmd.String("socket")
			}
			if cmd.IsSet("debug") {
				loaded.Debug = cmd.Bool("debug")
			}
			if loaded.Debug {
				log.SetLevel(log.DebugLevel)
			}
			cfg = loaded
			return ctx, nil
		},
		Commands: []*cli.Command{
			execCommand(),
			getCommand(),
			setCommand(),
			metadataCommand(),
			formatCommand(),
			eventsCommand(),
			waitCommand(),
			simpleCommand("toggle", "toggle pause", "cycle", "pause"),
			setCommandOf("play", "resume playback", "pause", false),
			setCommandOf("pause", "pause playback", "pause", true),
			simpleCommand("stop", "stop playback and clear the playlist", "stop"),
			simpleCommand("next", "play the next playlist entry", "playlist-next"),
			simpleCommand("prev", "play the previous playlist entry", "playlist-prev"),
			seekCommand(),
			numberCommand("volume", "set the volume"),
			numberCommand("speed", "set the playback speed"),
			switchCommand("mute", "mute, unmute or toggle mute", (*mpv.Conn).SetMute),
			switchCommand("loop-file", "loop the current file", loopSwitch("loop-file")),
			switchCommand("loop-playlist", "loop the playlist", loopSwitch("loop-playlist")),
			connCommand("restart", "seek to the start of the current file", (*mpv.Conn).Restart),
			connCommand("kill", "make mpv exit", (*mpv.Conn).Kill),
			playlistCommand(),
		},
	}
}
