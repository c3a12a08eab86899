package core

import (
	"fmt"
	"os"
	"strings"
)

// AllBuiltins holds a list of all registered shell builtins.
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Cd changes the working directory, defaulting to $HOME.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		home, ok := os.LookupEnv("HOME")
		if !ok {
			fmt.Fprintln(s.stdio.Err, "cd: HOME not set")
			return 1
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.stdio.Err, "%s: %v\n", args[0], err)
			return 1
		}
	default:
		fmt.Fprintf(s.stdio.Err, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(s.stdio.Err, "%s: %v\n", args[0], err)
		return 1
	}
	fmt.Fprintln(s.stdio.Out, wd)
	return 0
}

// Echo prints its arguments separated by spaces. An argument of the form
// $NAME prints the value of that environment variable, or nothing when it
// is unset.
func Echo(s *Shell, args []string) int {
	for _, arg := range args[1:] {
		if strings.HasPrefix(arg, "$") {
			fmt.Fprintf(s.stdio.Out, "%s ", os.Getenv(arg[1:]))
			continue
		}
		fmt.Fprintf(s.stdio.Out, "%s ", arg)
	}
	fmt.Fprintln(s.stdio.Out)
	return 0
}

// Exit quits the shell once the current command finishes.
func Exit(s *Shell, args []string) int {
	s.done = true
	return 0
}

// Env prints the whole environment, or the value of a single variable.
func Env(s *Shell, args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(s.stdio.Out, os.Getenv(args[1]))
		return 0
	}
	for _, kv := range os.Environ() {
		fmt.Fprintln(s.stdio.Out, kv)
	}
	return 0
}

// Setenv sets an environment variable from a NAME=VALUE argument. Spawned
// pipeline stages inherit the updated environment.
func Setenv(s *Shell, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(s.stdio.Err, "setenv: missing argument")
		return 1
	}

	name, value, ok := strings.Cut(args[1], "=")
	if !ok || name == "" || value == "" {
		fmt.Fprintln(s.stdio.Err, "setenv: invalid format. Use NAME=VALUE")
		return 1
	}

	if err := os.Setenv(name, value); err != nil {
		fmt.Fprintf(s.stdio.Err, "setenv: %v\n", err)
		return 1
	}
	return 0
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["echo"] = ShellBuiltinFunc(Echo)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["env"] = ShellBuiltinFunc(Env)
	AllBuiltins["setenv"] = ShellBuiltinFunc(Setenv)
}
