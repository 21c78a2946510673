package cmd

import (
	"flag"

	"github.com/coachfolio/portfolio/catalog"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line of name for shell completion: the
// global flags and every subcommand with its flags. Symbol flags predict the
// catalog symbols, category flags the catalog categories.
func Completion(global *flag.FlagSet, cmds []subcommands.Command, cat *catalog.Catalog) *complete.Command {
	var symbols, categories predict.Set
	if cat != nil {
		for _, s := range cat.Stocks() {
			symbols = append(symbols, s.Symbol)
		}
		categories = predict.Set(cat.Categories())
	}

	predictor := func(name string) complete.Predictor {
		switch name {
		case "s":
			return symbols
		case "c":
			return categories
		case "session":
			return predict.Files("*.jsonl")
		case "catalog":
			return predict.Dirs("*")
		default:
			return predict.Nothing
		}
	}
	flags := func(f *flag.FlagSet) map[string]complete.Predictor {
		res := make(map[string]complete.Predictor)
		f.VisitAll(func(fl *flag.Flag) { res[fl.Name] = predictor(fl.Name) })
		return res
	}

	root := &complete.Command{
		Flags: flags(global),
		Sub:   make(map[string]*complete.Command),
	}
	for _, c := range cmds {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: flags(f)}
	}
	return root
}
