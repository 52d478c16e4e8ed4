package cmd

import (
	"flag"
	"strings"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors complete the values of the flags that have a known domain.
var flagPredictors = map[string]complete.Predictor{
	"c":    predict.Set{string(carteira.DayTrade), string(carteira.SwingTrade)},
	"path": predict.Set{carteira.DefaultOperationsPath},
	"dir":  predict.Dirs("*"),
}

// argPredictors complete the arguments of the commands.
var argPredictors = map[string]complete.Predictor{
	"import": predict.Files("*.json*"),
	"topic":  complete.PredictFunc(predictTopics),
}

func predictTopics(prefix string) []string {
	topics, _ := docs.GetAllTopics()
	var matches []string
	for _, t := range topics {
		if strings.HasPrefix(t, prefix) {
			matches = append(matches, t)
		}
	}
	return matches
}

// completionCommand describes the command line for shell completion.
func completionCommand() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flags(flag.CommandLine),
	}
	for _, c := range commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		args := argPredictors[c.Name()]
		if args == nil {
			args = predict.Nothing
		}
		root.Sub[c.Name()] = &complete.Command{Flags: flags(fs), Args: args}
	}
	return root
}

// flags returns the predictors of the flags in a flag set.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := flagPredictors[f.Name]; ok {
			m[f.Name] = p
			return
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = predict.Nothing
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}

// Complete runs the shell completion when the shell asks for it, and exits.
// It does nothing otherwise. Run 'COMP_INSTALL=1 carteira' to install it.
func Complete(name string) {
	completionCommand().Complete(name)
}
