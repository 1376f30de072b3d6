package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Command is one node of the command tree. Leaves have Run; groups have
// Subcommands.
type Command struct {
	Name        string
	Description string
	Flags       *flag.FlagSet
	Run         func(ctx context.Context, env *Env, args []string) error
	Subcommands map[string]*Command
}

// NewRootCommand assembles the casiopea command tree.
func NewRootCommand() *Command {
	root := &Command{
		Name:        "casiopea",
		Description: "Casiopea - administración de módulos, roles y permisos",
		Subcommands: make(map[string]*Command),
	}

	root.add(newDBCommand())
	root.add(newModulesCommand())
	root.add(newRolesCommand())
	root.add(newPermissionsCommand())
	root.add(newUsersCommand())
	root.add(newUserRolesCommand())
	root.add(newAuditCommand())

	return root
}

func (c *Command) add(sub *Command) {
	if c.Subcommands == nil {
		c.Subcommands = make(map[string]*Command)
	}
	c.Subcommands[sub.Name] = sub
}

// Execute parses the global flags and dispatches to the named subcommand.
func (c *Command) Execute(ctx context.Context, env *Env, args []string) error {
	global := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	global.SetOutput(env.Err)
	global.StringVar(&env.ConfigPath, "config", env.ConfigPath, "Path to configuration directory or file")
	global.StringVar(&env.SeedDir, "seed-dir", env.SeedDir, "Directory holding the CSV seed files")
	global.BoolVar(&env.Verbose, "v", env.Verbose, "Log at debug level")
	global.Usage = func() { c.usage(env.Out, nil) }
	if err := global.Parse(args); err != nil {
		return err
	}

	return c.dispatch(ctx, env, global.Args(), nil)
}

func (c *Command) dispatch(ctx context.Context, env *Env, args []string, path []string) error {
	path = append(path, c.Name)

	if c.Run != nil {
		if c.Flags != nil {
			c.Flags.SetOutput(env.Err)
			if err := c.Flags.Parse(args); err != nil {
				return err
			}
			args = c.Flags.Args()
		}
		return c.Run(ctx, env, args)
	}

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		c.usage(env.Out, path)
		return nil
	}

	sub, ok := c.Subcommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s %s", strings.Join(path, " "), args[0])
	}
	return sub.dispatch(ctx, env, args[1:], path)
}

// usage prints the command usage
func (c *Command) usage(w io.Writer, path []string) {
	if len(path) == 0 {
		path = []string{c.Name}
	}
	fmt.Fprintf(w, "Usage: %s <command> [args]\n\n", strings.Join(path, " "))
	fmt.Fprintf(w, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
}
