package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/tr1v3r/pkg/log"
	"github.com/urfave/cli/v3"

	"github.com/tr1v3r/mpvc/format"
	"github.com/tr1v3r/mpvc/mpv"
)

// withConn connects to mpv, runs fn and closes the connection.
func withConn(ctx context.Context, cmd *cli.Command, fn func(context.Context, *mpv.Conn) error) error {
	if cmd.Bool("wait") {
		if err := mpv.WaitForSocket(ctx, cfg.Socket); err != nil {
			return err
		}
	}

	conn, err := mpv.Connect(cfg.Socket)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", cfg.Socket, err)
	}
	defer conn.Close()

	if err := fn(ctx, conn); err != nil {
		// a cancelled context surfaces as a socket deadline error
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func intArg(cmd *cli.Command, i int, what string) (int, error) {
	s := cmd.Args().Get(i)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return n, nil
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.Args().Len() < n {
		return fmt.Errorf("%s: expected %d argument(s), usage: %s %s", cmd.Name, n, cmd.Name, cmd.ArgsUsage)
	}
	return nil
}

// parseValue reads s as JSON, falling back to a plain string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func execCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "run an mpv command and print its result",
		ArgsUsage: "<command> [args...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			command := make([]any, 0, cmd.Args().Len())
			for _, arg := range cmd.Args().Slice() {
				command = append(command, arg)
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				data, err := conn.Execute(ctx, command)
				if err != nil {
					return err
				}
				if data == nil {
					return nil
				}
				return printJSON(data)
			})
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print a property",
		ArgsUsage: "<property>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				s, err := conn.GetPropertyString(ctx, cmd.Args().First())
				if err != nil {
					return err
				}
				fmt.Println(s)
				return nil
			})
		},
	}
}

func setCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "set a property; the value is parsed as JSON when possible",
		ArgsUsage: "<property> <value>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return conn.SetProperty(ctx, cmd.Args().Get(0), parseValue(cmd.Args().Get(1)))
			})
		},
	}
}

func metadataCommand() *cli.Command {
	return &cli.Command{
		Name:  "metadata",
		Usage: "print the metadata of the current file",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				md, err := conn.GetMetadata(ctx)
				if err != nil {
					return err
				}
				for _, k := range slices.Sorted(maps.Keys(md)) {
					s, err := mpv.Stringify(md[k])
					if err != nil {
						continue
					}
					fmt.Printf("%s: %s\n", k, s)
				}
				return nil
			})
		},
	}
}

func formatCommand() *cli.Command {
	return &cli.Command{
		Name:      "format",
		Usage:     "render a status line, e.g. '[%artist% - ]%title%[ (%time%/%duration%)]'",
		ArgsUsage: "[template]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tmpl := cfg.Format
			if cmd.Args().Present() {
				tmpl = cmd.Args().First()
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				fmt.Println(format.Render(tmpl, format.NewPlayerResolver(ctx, conn)))
				return nil
			})
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "print events as they arrive until mpv exits",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "raw", Usage: "print every line unparsed"},
			&cli.StringSliceFlag{Name: "observe", Aliases: []string{"o"}, Usage: "also report changes of this property"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			err := withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				for i, prop := range cmd.StringSlice("observe") {
					if err := conn.ObserveProperty(ctx, i+1, prop); err != nil {
						return err
					}
				}

				for {
					var err error
					if cmd.Bool("raw") {
						var line string
						if line, err = conn.ListenRaw(ctx); err == nil {
							fmt.Println(line)
						}
					} else {
						var e mpv.Event
						if e, err = conn.Listen(ctx); err == nil {
							err = printJSON(e)
						}
					}
					if errors.Is(err, io.EOF) {
						log.CtxInfo(ctx, "mpv closed the connection")
						return nil
					}
					if err != nil {
						return err
					}
				}
			})
			// interrupted by the user
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func waitCommand() *cli.Command {
	return &cli.Command{
		Name:      "wait",
		Usage:     "block until the named event arrives",
		ArgsUsage: "<event>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				_, err := conn.WaitForEvent(ctx, cmd.Args().First())
				return err
			})
		},
	}
}

func seekCommand() *cli.Command {
	return &cli.Command{
		Name:      "seek",
		Usage:     "seek by a number of seconds (use -- before negative values)",
		ArgsUsage: "<seconds|percent>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "absolute", Aliases: []string{"a"}, Usage: "seek to the position instead"},
			&cli.BoolFlag{Name: "percent", Aliases: []string{"p"}, Usage: "the value is a percentage of the file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			target, err := strconv.ParseFloat(cmd.Args().First(), 64)
			if err != nil {
				return fmt.Errorf("invalid seek target %q: %w", cmd.Args().First(), err)
			}
			var mode mpv.SeekMode
			switch {
			case cmd.Bool("absolute") && cmd.Bool("percent"):
				mode = mpv.SeekAbsolutePercent
			case cmd.Bool("absolute"):
				mode = mpv.SeekAbsolute
			case cmd.Bool("percent"):
				mode = mpv.SeekRelativePercent
			default:
				mode = mpv.SeekRelative
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return conn.Seek(ctx, target, mode)
			})
		},
	}
}

// numberCommand sets a numeric property, or adds to it with --relative.
func numberCommand(property, usage string) *cli.Command {
	return &cli.Command{
		Name:      property,
		Usage:     usage,
		ArgsUsage: "<value>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "relative", Aliases: []string{"r"}, Usage: "add to the current " + property},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			v, err := strconv.ParseFloat(cmd.Args().First(), 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", property, cmd.Args().First(), err)
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				if cmd.Bool("relative") {
					return conn.AddProperty(ctx, property, v)
				}
				return conn.SetProperty(ctx, property, v)
			})
		},
	}
}

// switchCommand takes on, off or toggle and hands it to set.
func switchCommand(name, usage string, set func(*mpv.Conn, context.Context, mpv.Switch) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<on|off|toggle>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			sw, err := mpv.ParseSwitch(cmd.Args().First())
			if err != nil {
				return err
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return set(conn, ctx, sw)
			})
		},
	}
}

func loopSwitch(property string) func(*mpv.Conn, context.Context, mpv.Switch) error {
	return func(conn *mpv.Conn, ctx context.Context, sw mpv.Switch) error {
		return conn.SetLoop(ctx, property, sw)
	}
}

func playlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "edit the playlist",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a file or url",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "replace, append or append-play",
						Value:   string(mpv.LoadAppendPlay),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					mode, err := mpv.ParseLoadMode(cmd.String("mode"))
					if err != nil {
						return err
					}
					return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
						return conn.LoadFile(ctx, cmd.Args().First(), mode)
					})
				},
			},
			connCommand("clear", "remove every entry but the current one", (*mpv.Conn).PlaylistClear),
			connCommand("shuffle", "shuffle the playlist", (*mpv.Conn).PlaylistShuffle),
			indexCommand("remove", "remove the entry at index", (*mpv.Conn).PlaylistRemove),
			{
				Name:      "move",
				Usage:     "move the entry at from to the place of the entry at to",
				ArgsUsage: "<from> <to>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := requireArgs(cmd, 2); err != nil {
						return err
					}
					from, err := intArg(cmd, 0, "index")
					if err != nil {
						return err
					}
					to, err := intArg(cmd, 1, "index")
					if err != nil {
						return err
					}
					return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
						return conn.PlaylistMove(ctx, from, to)
					})
				},
			},
			indexCommand("play", "play the entry at index", (*mpv.Conn).PlayIndex),
			indexCommand("play-next", "move the entry at index after the current one", (*mpv.Conn).PlayNext),
		},
	}
}

// indexCommand runs fn with a playlist index argument.
func indexCommand(name, usage string, fn func(*mpv.Conn, context.Context, int) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<index>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			index, err := intArg(cmd, 0, "index")
			if err != nil {
				return err
			}
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return fn(conn, ctx, index)
			})
		},
	}
}

// connCommand runs a Conn method without arguments.
func connCommand(name, usage string, fn func(*mpv.Conn, context.Context) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return fn(conn, ctx)
			})
		},
	}
}

// simpleCommand runs a fixed mpv command.
func simpleCommand(name, usage, command string, args ...string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return conn.Command(ctx, command, args...)
			})
		},
	}
}

// setCommandOf sets a property to a fixed value.
func setCommandOf(name, usage, property string, value any) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withConn(ctx, cmd, func(ctx context.Context, conn *mpv.Conn) error {
				return conn.SetProperty(ctx, property, value)
			})
		},
	}
}
