// Package main provides the feedforward CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/born-ml/feedforward/internal/dataset"
	"github.com/born-ml/feedforward/internal/matrix"
	"github.com/born-ml/feedforward/internal/nn"
	"github.com/born-ml/feedforward/internal/server"
)

const version = "v0.1.0"

const defaultLayers = "784:16:sigmoid,16:16:sigmoid,16:10:softmax"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "train":
		return train(args[1:], stdout, stderr)
	case "eval":
		return eval(args[1:], stdout, stderr)
	case "predict":
		return predict(args[1:], stdout, stderr)
	case "serve":
		return serve(args[1:], stderr)
	case "version":
		fmt.Fprintf(stdout, "feedforward %s\n", version)
		return nil
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "feedforward %s - dense neural networks trained with backpropagation\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  train      Train a network on IDX images and labels")
	fmt.Fprintln(w, "  eval       Report accuracy and loss of a saved network")
	fmt.Fprintln(w, "  predict    Classify one comma-separated input row")
	fmt.Fprintln(w, "  serve      Serve predictions over HTTP")
	fmt.Fprintln(w, "  version    Show version")
}

// commonFlags are shared by every command that builds a network.
type commonFlags struct {
	layers  string
	model   string
	seed    uint64
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.layers, "layers", defaultLayers, "network topology as in:out:activation,...")
	fs.StringVar(&c.model, "model", "", "saved model path prefix")
	fs.Uint64Var(&c.seed, "seed", 0, "random seed (0 = random)")
	fs.BoolVar(&c.verbose, "v", false, "verbose (debug) logging")
}

func (c *commonFlags) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func (c *commonFlags) source() rand.Source {
	if c.seed == 0 {
		return nil
	}
	return rand.NewPCG(c.seed, c.seed)
}

// network builds the topology and, when a model prefix is set, loads its
// parameters.
func (c *commonFlags) network(logger *slog.Logger) (*nn.Network, error) {
	specs, err := nn.ParseTopology(c.layers)
	if err != nil {
		return nil, err
	}
	net, err := nn.Build(specs, c.source(), nn.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if c.model != "" {
		if err := net.LoadFile(c.model); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func train(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	images := fs.String("images", "", "IDX image file (optionally gzipped)")
	labels := fs.String("labels", "", "IDX label file (optionally gzipped)")
	epochs := fs.Int("epochs", 1, "passes over the training set")
	lr := fs.Float64("lr", 0.1, "learning rate")
	limit := fs.Int("limit", 0, "use only the first n samples (0 = all)")
	out := fs.String("out", "", "output path prefix (default model-<uuid>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *images == "" || *labels == "" {
		return errors.New("train: -images and -labels are required")
	}

	logger := common.logger(stderr)
	net, err := common.network(logger)
	if err != nil {
		return err
	}

	set, err := dataset.Load(*images, *labels, net.OutFeatures())
	if err != nil {
		return err
	}
	set = set.Head(*limit)
	logger.Info("dataset loaded", "samples", set.Len(), "images", *images)
	fmt.Fprint(stdout, net.Summary())

	if err := net.TrainBatch(set.Inputs, set.Targets, *epochs, *lr); err != nil {
		return err
	}

	accuracy, err := net.Evaluate(set.Inputs, set.Labels)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "training accuracy: %.2f%%\n", accuracy*100)

	prefix := *out
	if prefix == "" {
		prefix = "model-" + uuid.NewString()
	}
	if err := net.SaveFile(prefix); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved model to %s\n", prefix)
	return nil
}

func eval(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	images := fs.String("images", "", "IDX image file (optionally gzipped)")
	labels := fs.String("labels", "", "IDX label file (optionally gzipped)")
	limit := fs.Int("limit", 0, "use only the first n samples (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *images == "" || *labels == "" || common.model == "" {
		return errors.New("eval: -images, -labels and -model are required")
	}

	net, err := common.network(common.logger(stderr))
	if err != nil {
		return err
	}
	set, err := dataset.Load(*images, *labels, net.OutFeatures())
	if err != nil {
		return err
	}
	set = set.Head(*limit)

	start := time.Now()
	accuracy, err := net.Evaluate(set.Inputs, set.Labels)
	if err != nil {
		return err
	}
	loss, err := net.Loss(set.Inputs, set.Targets, nn.CrossEntropy)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "samples: %d\naccuracy: %.2f%%\nloss: %.4f\nelapsed: %v\n",
		set.Len(), accuracy*100, loss, time.Since(start).Round(time.Millisecond))
	return nil
}

func predict(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	raw := fs.String("input", "", "comma-separated input values")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.model == "" {
		return errors.New("predict: -model is required")
	}

	values, err := parseRow(*raw)
	if err != nil {
		return err
	}
	input, err := matrix.FromSlice(1, len(values), values)
	if err != nil {
		return err
	}

	net, err := common.network(common.logger(stderr))
	if err != nil {
		return err
	}
	out, err := net.Forward(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "output: %v\nclass: %d\n", out.Row(0), out.Argmax()[0])
	return nil
}

func serve(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.model == "" {
		return errors.New("serve: -model is required")
	}

	logger := common.logger(stderr)
	net, err := common.network(logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(net, server.WithLogger(logger)).Run(ctx, *addr)
}

func parseRow(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty input")
	}
	fields := strings.Split(s, ",")
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("input value %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
