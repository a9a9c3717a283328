// Command eel is the reference command-line front end over package
// eelapi, structured on the teacher's cli.Command subcommand style
// (cmd/hey/main.go). It ships with no compiler/module-loader of its
// own — spec.md §1 places lexer, parser, codegen and module loading out
// of this repository's scope — so `run` reports a clear error
// until an embedding host links in a real ModuleLoader; `stats` and
// `classes` work standalone since they only exercise the runtime core.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/eel-lang/eel/builtin"
	"github.com/eel-lang/eel/eelapi"
	"github.com/eel-lang/eel/registry"
	"github.com/eel-lang/eel/version"
)

// nullLoader is the ModuleLoader eel runs with when no real compiler is
// linked in; every call reports the architectural reason rather than
// panicking or silently no-opping.
type nullLoader struct{}

func (nullLoader) LoadFile(path string, cfg eelapi.Config) (*eelapi.CompiledModule, error) {
	return nil, fmt.Errorf("eel: no ModuleLoader linked into this binary; %q cannot be compiled (lexer/parser/codegen are external collaborators per this core's scope)", path)
}

func (nullLoader) LoadBuffer(src []byte, name string, cfg eelapi.Config) (*eelapi.CompiledModule, error) {
	return nil, fmt.Errorf("eel: no ModuleLoader linked into this binary; %q cannot be compiled (lexer/parser/codegen are external collaborators per this core's scope)", name)
}

func main() {
	app := &cli.Command{
		Name:  "eel",
		Usage: "EEL runtime core command-line front end",
		Commands: []*cli.Command{
			runCommand,
			statsCommand,
			classesCommand,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "version",
				Usage: "Show version",
				Action: func(ctx context.Context, cmd *cli.Command, b bool) error {
					fmt.Println(version.Version())
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "eel: %v\n", err)
		os.Exit(1)
	}
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Load and run a compiled module (requires an embedding-supplied ModuleLoader)",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "list", Usage: "print the source listing before running"},
		&cli.BoolFlag{Name: "listasm", Usage: "print the disassembly before running"},
		&cli.BoolFlag{Name: "werror", Usage: "treat compile warnings as errors"},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		args := cmd.Args().Slice()
		if len(args) == 0 {
			return fmt.Errorf("usage: eel run <file>")
		}
		cfg := eelapi.DefaultConfig()
		cfg.List = cmd.Bool("list")
		cfg.ListAsm = cmd.Bool("listasm")
		cfg.WError = cmd.Bool("werror")

		v, err := eelapi.Open(nullLoader{}, cfg)
		if err != nil {
			return err
		}
		defer v.Close()

		_, err = v.Load(args[0], cfg)
		return err
	},
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Open a VM, print its resource occupancy, and exit",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		v, err := eelapi.Open(nullLoader{}, eelapi.DefaultConfig())
		if err != nil {
			return err
		}
		defer v.Close()

		fmt.Println(v.Stats().String())
		return nil
	},
}

var classesCommand = &cli.Command{
	Name:  "classes",
	Usage: "List the built-in classes registered at VM open",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		v, err := eelapi.Open(nullLoader{}, eelapi.DefaultConfig())
		if err != nil {
			return err
		}
		defer v.Close()

		for i := 0; i < v.Registry.NumClasses(); i++ {
			cd, ok := v.Registry.Class(registry.ClassID(i))
			if !ok {
				continue
			}
			fmt.Printf("%d: %s\n", i, classNameOrAnonymous(cd))
		}
		return nil
	},
}

// classNameOrAnonymous prints a class-def's name, falling back to
// "(anonymous)" for the brief window during Bootstrap where the class
// and string classes are registered before their names exist yet
// (registry.Registry.Bootstrap); by the time `eel classes` runs against
// an opened VM this never actually happens, but the helper stays
// defensive since ClassDef.Name is a Value, not a plain string.
func classNameOrAnonymous(cd *registry.ClassDef) string {
	if !cd.Name.IsObjRef() {
		return "(anonymous)"
	}
	obj := cd.Name.Object()
	if obj == nil {
		return "(anonymous)"
	}
	if s, ok := obj.Payload.(*builtin.String); ok {
		return s.Text()
	}
	return "(anonymous)"
}
