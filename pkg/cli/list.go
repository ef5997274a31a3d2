package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/denoland-id/denoid/pkg/web"
)

func newListCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List modules published by a denoid server",
		Flags:       env.flagSet("list"),
	}

	server := cmd.Flags.String("server", env.serverURL(), "Server URL")
	query := cmd.Flags.String("q", "", "Search query")
	asJSON := cmd.Flags.Bool("json", false, "Print the API response as JSON")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		resp, err := NewClient(*server, env.HTTPClient).ListModules(context.Background(), *query)
		if err != nil {
			return err
		}

		if *asJSON {
			enc := json.NewEncoder(env.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		if len(resp.Modules) == 0 {
			fmt.Fprintln(env.Stdout, web.EmptyStateMessage)
			return nil
		}

		tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
		for _, m := range resp.Modules {
			fmt.Fprintf(tw, "%s\t%s\n", m.Name, m.Desc)
		}
		return tw.Flush()
	}

	return cmd
}

func newShowCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "show",
		Description: "Show a module and its import URL",
		Flags:       env.flagSet("show"),
	}

	server := cmd.Flags.String("server", env.serverURL(), "Server URL")
	branch := cmd.Flags.String("branch", "", "Branch or tag for the import URL")
	script := cmd.Flags.String("script", "", "Entry script for the import URL")
	sitePath := cmd.Flags.String("site", "", "Site configuration file")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if cmd.Flags.NArg() != 1 {
			return fmt.Errorf("usage: show [flags] <module>")
		}

		site, err := loadSite(*sitePath)
		if err != nil {
			return err
		}

		m, err := NewClient(*server, env.HTTPClient).GetModule(context.Background(), cmd.Flags.Arg(0))
		if err != nil {
			return err
		}

		fmt.Fprintf(env.Stdout, "%s\n%s\n\n", m.Name, m.Desc)
		fmt.Fprintf(env.Stdout, "import * as mod from %q;\n", site.ImportURL(m.Name, *branch, *script))
		return nil
	}

	return cmd
}

func loadSite(path string) (*web.Site, error) {
	if path == "" {
		return web.DefaultSite(), nil
	}
	cfg, err := web.LoadSiteConfig(path)
	if err != nil {
		return nil, err
	}
	return web.NewSite(cfg)
}
