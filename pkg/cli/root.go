package cli

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"
)

// DefaultServerURL is where the CLI looks for a running denoid server
const DefaultServerURL = "http://localhost:8080"

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// Env holds the process surroundings commands read from and write to
type Env struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	HTTPClient *http.Client
	// Getenv defaults to os.Getenv
	Getenv func(string) string
}

// DefaultEnv is bound to the real process
func DefaultEnv() *Env {
	return &Env{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Getenv:     os.Getenv,
	}
}

func (e *Env) serverURL() string {
	if e.Getenv != nil {
		if v := e.Getenv("DENOID_SERVER_URL"); v != "" {
			return v
		}
	}
	return DefaultServerURL
}

func (e *Env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.Stderr)
	return fs
}

// NewRootCommand creates the root command
func NewRootCommand(env *Env) *Command {
	if env == nil {
		env = DefaultEnv()
	}
	root := &Command{
		Name:        "denoid",
		Description: "Deno Land Indonesia third party module tool",
		Subcommands: make(map[string]*Command),
		Flags:       env.flagSet("denoid"),
	}

	root.Subcommands["list"] = newListCommand(env)
	root.Subcommands["show"] = newShowCommand(env)
	root.Subcommands["browse"] = newBrowseCommand(env)
	root.Subcommands["snapshot"] = newSnapshotCommand(env)

	root.Run = func(args []string) error {
		return root.dispatch(args, env.Stdout)
	}
	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.Run(os.Args[1:])
}

func (c *Command) dispatch(args []string, out io.Writer) error {
	if len(args) == 0 {
		return c.usage(out)
	}

	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage(out)
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage(out io.Writer) error {
	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
