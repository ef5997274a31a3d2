package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/denoland-id/denoid/pkg/browse"
)

func newBrowseCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "browse",
		Description: "Browse and search modules interactively",
		Flags:       env.flagSet("browse"),
	}

	server := cmd.Flags.String("server", env.serverURL(), "Server URL")
	sitePath := cmd.Flags.String("site", "", "Site configuration file")
	altScreen := cmd.Flags.Bool("alt-screen", true, "Use the terminal's alternate screen")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		site, err := loadSite(*sitePath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		resp, err := NewClient(*server, env.HTTPClient).ListModules(ctx, "")
		if err != nil {
			return err
		}

		selected, ok, err := browse.Run(ctx, resp.Modules, site, browse.Options{
			Input:     env.Stdin,
			Output:    env.Stdout,
			AltScreen: *altScreen,
		})
		if err != nil {
			return fmt.Errorf("browser failed: %w", err)
		}
		if ok {
			fmt.Fprintln(env.Stdout, site.ImportURL(selected.Name, "", ""))
		}
		return nil
	}

	return cmd
}
