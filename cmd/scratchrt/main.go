// cmd/scratchrt is the runtime CLI: compile a Scratch project to IR, run it
// under the cooperative scheduler, or inspect its compiled form.
package main

import (
	"flag"
	"log"
	"os"
)

// commandAliases lets short forms resolve to the full subcommand name,
// mirroring the teacher's cmd/sentra alias map.
var commandAliases = map[string]string{
	"r": "run",
	"c": "compile",
	"d": "dump",
	"m": "monitor",
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}

	var err error
	switch cmd {
	case "run":
		err = RunCommand(args[1:])
	case "compile":
		err = CompileCommand(args[1:])
	case "dump":
		err = DumpCommand(args[1:])
	case "monitor":
		err = MonitorCommand(args[1:])
	default:
		showUsage()
		return
	}
	if err != nil {
		log.Fatalf("scratchrt %s: %v", cmd, err)
	}
}

func showUsage() {
	os.Stdout.WriteString(`scratchrt - run compiled Scratch 3 projects

Usage:
  scratchrt run [--ticks N] [--cloud-db path] <project>
  scratchrt compile <project>
  scratchrt dump <project>
  scratchrt monitor [--for 2s] <project>

<project> is either a project.json file or a .sb3 archive containing one.
`)
}


