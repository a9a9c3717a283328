// Command eel-repl is an interactive shell over package eelapi: each
// entered line is compiled with LoadBuffer and its init body run
// immediately, mirroring the teacher's `-a` interactive-shell flag
// (cmd/hey/main.go) but built on github.com/chzyer/readline for line
// editing and history instead of a hand-rolled bufio.Scanner loop — the
// teacher's own REPL only fell back to a bare scanner because its shell
// predated this dependency being pulled in; this one uses it directly.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/eel-lang/eel/eelapi"
	"github.com/eel-lang/eel/version"
)

// nullLoader mirrors cmd/eel's: this binary ships without a compiler,
// so every entered line reports why it cannot be compiled rather than
// silently doing nothing.
type nullLoader struct{}

func (nullLoader) LoadFile(path string, cfg eelapi.Config) (*eelapi.CompiledModule, error) {
	return nil, fmt.Errorf("no ModuleLoader linked into this binary")
}

func (nullLoader) LoadBuffer(src []byte, name string, cfg eelapi.Config) (*eelapi.CompiledModule, error) {
	return nil, fmt.Errorf("no ModuleLoader linked into this binary")
}

func main() {
	fmt.Printf("eel %s interactive shell\n", version.Version())

	v, err := eelapi.Open(nullLoader{}, eelapi.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "eel-repl:", err)
		os.Exit(1)
	}
	defer v.Close()

	rl, err := readline.New("eel> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "eel-repl:", err)
		os.Exit(1)
	}
	defer rl.Close()

	lineNo := 0
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "eel-repl:", err)
			break
		}
		if line == "" {
			continue
		}

		lineNo++
		name := fmt.Sprintf("<repl:%d>", lineNo)
		if _, err := v.LoadBuffer([]byte(line), name, eelapi.DefaultConfig()); err != nil {
			v.Log.VMError("%v", err)
		}
	}
}
