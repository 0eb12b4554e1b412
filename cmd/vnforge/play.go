package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vnforge/internal/narrative"
	"vnforge/internal/playback"
)

func playCmd() *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the story in the terminal",
		Long:  "Enter advances, a number picks a choice, r restarts and q quits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				p := w.project().Clone()
				engine := playback.New(p)
				if start != "" {
					id, err := resolveScene(p, start)
					if err != nil {
						return false, err
					}
					engine, err = playback.NewAt(p, id)
					if err != nil {
						return false, err
					}
				}
				return false, play(engine, cmd.InOrStdin(), os.Stdout)
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Scene to start from")
	return cmd
}

func play(engine *playback.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	var lastScene narrative.SceneID
	for {
		view := engine.View()
		if view.State.Scene != lastScene && !view.State.Ended {
			printSceneHeader(out, view)
			lastScene = view.State.Scene
		}
		switch {
		case view.State.Ended:
			fmt.Fprintln(out, "-- Fim --  [r] restart  [q] quit")
		case view.State.AwaitingChoice:
			for i, choice := range view.Choices {
				fmt.Fprintf(out, "  %d) %s\n", i+1, choice.Text)
			}
			fmt.Fprint(out, "> ")
		case view.Dialogue != nil:
			fmt.Fprintf(out, "%s: %s\n", speakerOrNarrator(view.Dialogue.Speaker), view.Dialogue.Text)
		default:
			fmt.Fprintln(out, "...")
		}

		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "q":
			return nil
		case input == "r":
			engine.Restart()
			lastScene = ""
		case view.State.AwaitingChoice:
			n, err := strconv.Atoi(input)
			if err != nil {
				fmt.Fprintln(out, "Pick a choice by number.")
				continue
			}
			if err := engine.Choose(n - 1); err != nil {
				fmt.Fprintln(out, err)
			}
		default:
			engine.Advance()
		}
	}
}

func printSceneHeader(out io.Writer, view playback.View) {
	fmt.Fprintf(out, "\n== %s [%s] ==\n", view.Title, view.State.Route)
	if view.Background != "" && !strings.HasPrefix(view.Background, "data:") {
		fmt.Fprintf(out, "(background: %s)\n", view.Background)
	}
	if len(view.Instances) > 0 {
		names := make([]string, 0, len(view.Instances))
		for _, inst := range view.Instances {
			names = append(names, inst.DisplayName)
		}
		fmt.Fprintf(out, "(on stage: %s)\n", strings.Join(names, ", "))
	}
}
