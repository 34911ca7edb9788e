// Command fin manages a personal book of accounts, transactions and
// investment holdings.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/finbook/finbook/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion runs first: when invoked by the shell's completion
	// hook it prints the candidates and exits.
	completer().Complete("fin")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completer() *complete.Command {
	record := map[string]complete.Predictor{
		"d":        predict.Nothing,
		"a":        predict.Nothing,
		"account":  predict.Nothing,
		"party":    predict.Nothing,
		"m":        predict.Nothing,
		"category": predict.Nothing,
		"notes":    predict.Nothing,
	}
	trade := map[string]complete.Predictor{
		"id":      predict.Nothing,
		"asset":   predict.Nothing,
		"d":       predict.Nothing,
		"q":       predict.Nothing,
		"p":       predict.Nothing,
		"charges": predict.Nothing,
		"account": predict.Nothing,
	}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config":    predict.Files("*.toml"),
			"book-file": predict.Files("*.jsonl"),
		},
		Sub: map[string]*complete.Command{
			"account":      {Flags: map[string]complete.Predictor{"name": predict.Nothing, "type": predict.Nothing, "opening": predict.Nothing}},
			"party":        {Flags: map[string]complete.Predictor{"name": predict.Nothing}},
			"asset":        {Flags: map[string]complete.Predictor{"name": predict.Nothing, "category": predict.Nothing}},
			"income":       {Flags: record},
			"expense":      {Flags: record},
			"sale":         {Flags: record},
			"purchase":     {Flags: record},
			"amend":        {Flags: map[string]complete.Predictor{"id": predict.Nothing, "kind": predict.Set{"income", "expense", "sale", "purchase"}, "d": predict.Nothing, "a": predict.Nothing, "account": predict.Nothing, "party": predict.Nothing, "m": predict.Nothing, "category": predict.Nothing, "notes": predict.Nothing}},
			"delete":       {Flags: map[string]complete.Predictor{"id": predict.Nothing}},
			"buy":          {Flags: trade},
			"sell":         {Flags: trade},
			"delete-trade": {Flags: map[string]complete.Predictor{"asset": predict.Nothing, "id": predict.Nothing}},
			"mark":         {Flags: map[string]complete.Predictor{"asset": predict.Nothing, "p": predict.Nothing}},
			"tx":           {Flags: map[string]complete.Predictor{"head": predict.Nothing, "tail": predict.Nothing}},
			"holdings":     {},
			"summary":      {},
			"history":      {Flags: map[string]complete.Predictor{"asset": predict.Nothing}},
			"assist":       {},
			"topic":        {Args: predict.Set{"readme", "dates", "book", "investments", "*"}},
		},
	}
}
