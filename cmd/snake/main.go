package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/Icarogamer2441/snake/internal/ast"
	"github.com/Icarogamer2441/snake/internal/compile"
	"github.com/Icarogamer2441/snake/internal/emit"
	"github.com/Icarogamer2441/snake/internal/lower"
	"github.com/Icarogamer2441/snake/internal/snakelib"
)

const version = "0.3.0"

const historyFile = ".snake_history"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "check":
		if err := cmdCheck(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "emit":
		if err := cmdEmit(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "repl":
		if err := cmdRepl(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "lib":
		if err := cmdLib(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println("snake", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Snake language CLI

Usage:
  snake check <file.sk> [-watch]
  snake emit <file.sk> [-o out.py]
  snake repl
  snake lib build <dir> [-o root]
  snake lib list

Commands:
  version  Snake version
  check    Lower and type-check a source file, reporting diagnostics
  emit     Lower, check and print the generated host code
  repl     Interactive session (:quit to exit, :type <name> for a declared type)
  lib      Build or list Snake libraries

Flags:
  -watch   (check) re-check whenever the file changes
  -ast     (check) print the canonical tree
  -o       (emit) output file; (lib build) target library root`)
}

// red wraps s in an ANSI color code when stderr is a terminal.
func red(s string) string {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return "\x1b[31m" + s + "\x1b[0m"
	}
	return s
}

// -------------- CHECK --------------

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	watch := fs.Bool("watch", false, "re-check whenever the file changes")
	dumpAST := fs.Bool("ast", false, "print the canonical tree after checking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("check: missing input file")
	}
	input := fs.Arg(0)

	if *dumpAST {
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		result, err := compile.Compile(string(data), input)
		if err != nil {
			return err
		}
		fmt.Print(ast.Dump(result.Module))
	}

	if !*watch {
		if checkFile(input) {
			return nil
		}
		os.Exit(1)
	}
	return watchFile(input)
}

// checkFile compiles and checks one file, printing every diagnostic. Reports
// whether the file checked clean.
func checkFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("error: %v", err)))
		return false
	}
	result, err := compile.Compile(string(data), path)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("Compilation error: %v", err)))
		return false
	}
	diags := compile.Check(result)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("Type error: %s: %s", d.Pos, d.Msg)))
	}
	if len(diags) > 0 {
		return false
	}
	fmt.Printf("No errors found in %s\n", path)
	return true
}

// watchFile re-checks path on every write. The watch is on the parent
// directory: editors replace files on save, which drops a watch placed on
// the file itself.
func watchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	checkFile(path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fmt.Printf("--- %s changed, re-checking\n", path)
				checkFile(path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, red(fmt.Sprintf("watch error: %v", err)))
		}
	}
}

// -------------- EMIT --------------

func cmdEmit(args []string) error {
	fs := flag.NewFlagSet("emit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var out string
	fs.StringVar(&out, "o", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("emit: missing input file")
	}
	input := fs.Arg(0)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	result, err := compile.Compile(string(data), input)
	if err != nil {
		return err
	}
	diags := compile.Check(result)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("Type error: %s: %s", d.Pos, d.Msg)))
	}
	if len(diags) > 0 {
		return fmt.Errorf("emit: %d type errors", len(diags))
	}

	emit.Annotate(result.Module, result.Table)
	code := emit.Emit(result)

	if out == "" {
		fmt.Print(code)
		return nil
	}
	if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
		return err
	}
	fmt.Printf("Generated host code saved to %s\n", out)
	return nil
}

// -------------- REPL --------------

func cmdRepl(_ []string) error {
	fmt.Printf("Snake %s REPL\nCtrl+D exits. Type :quit to exit, :type <name> to inspect a declared type.\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	// The session accumulates every accepted line; each entry re-compiles
	// the whole buffer so declarations stay visible.
	var session []string

	for {
		line, err := ln.Prompt(">>> ")
		if err != nil {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(trimmed, ":") {
			if done := replCommand(trimmed, session); done {
				return nil
			}
			continue
		}

		// Block headers read continuation lines until a blank one.
		block := line
		if strings.HasSuffix(trimmed, ":") {
			for {
				more, err := ln.Prompt("... ")
				if err != nil || strings.TrimSpace(more) == "" {
					break
				}
				ln.AppendHistory(more)
				block += "\n" + more
			}
		}

		candidate := append(append([]string{}, session...), block)
		src := strings.Join(candidate, "\n") + "\n"
		result, err := compile.Compile(src, "")
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		diags := compile.Check(result)
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, red(fmt.Sprintf("Type error: %s", d.Msg)))
		}
		if len(diags) == 0 {
			session = candidate
		}
	}
}

// replCommand handles ":"-prefixed commands; returns true on :quit.
func replCommand(cmd string, session []string) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":type":
		if len(fields) < 2 {
			fmt.Println("usage: :type <name>")
			return false
		}
		describeName(fields[1], session)
	default:
		fmt.Printf("unknown command %s. Type :quit to exit.\n", fields[0])
	}
	return false
}

func describeName(name string, session []string) {
	src := strings.Join(session, "\n") + "\n"
	result, err := compile.Compile(src, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return
	}
	tbl := result.Table
	if f, ok := tbl.Func(name); ok {
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Name + ": " + p.Type
		}
		fmt.Printf("def %s(%s) -> %s\n", name, strings.Join(params, ", "), f.Return)
		return
	}
	if v, ok := tbl.Var(name); ok {
		if v.IsConstant {
			fmt.Printf("const %s: %s\n", name, v.Type)
		} else {
			fmt.Printf("%s: %s\n", name, v.Type)
		}
		return
	}
	if r, ok := tbl.Record(name); ok {
		fmt.Printf("struct %s (%d fields)\n", name, len(r.Fields))
		return
	}
	if e, ok := tbl.Enum(name); ok {
		fmt.Printf("enum %s (%d members)\n", name, len(e.Members))
		return
	}
	fmt.Printf("unknown name %q\n", name)
}

// -------------- LIB --------------

func cmdLib(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("lib: missing subcommand (build or list)")
	}
	switch args[0] {
	case "build":
		fs := flag.NewFlagSet("lib build", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		var out string
		fs.StringVar(&out, "o", "", "target library root (default: user root)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() < 1 {
			return fmt.Errorf("lib build: missing source directory")
		}
		dir, err := snakelib.Build(fs.Arg(0), out)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully built library to %s\n", dir)
		return nil

	case "list":
		libs, err := snakelib.List(lower.DefaultLibRoots())
		if err != nil {
			return err
		}
		if len(libs) == 0 {
			fmt.Println("no libraries installed")
			return nil
		}
		for _, lib := range libs {
			fmt.Println(lib)
		}
		return nil

	default:
		return fmt.Errorf("lib: unknown subcommand %q", args[0])
	}
}
