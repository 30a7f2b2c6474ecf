// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
	"github.com/urfave/cli"

	ts "github.com/db47h/trisim"
	tl "github.com/db47h/trisim/trilib"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "trisim"
	app.Usage = "two-phase tri-state gate fabric simulator"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "verbose, v", Usage: "log every simulation step"},
	}
	blockFlags := []cli.Flag{
		cli.StringFlag{Name: "a", Value: "0", Usage: "input `A` (0, 1)"},
		cli.StringFlag{Name: "b", Value: "0", Usage: "input `B` (0, 1)"},
		cli.IntFlag{Name: "workers", Usage: "worker goroutines (0: GOMAXPROCS)"},
	}
	app.Commands = []cli.Command{
		{
			Name:      "eval",
			Usage:     "evaluate a single gate",
			ArgsUsage: "OPCODE A B",
			Action:    evalCmd(stdout),
		},
		{
			Name:   "adder",
			Usage:  "run a port driven half adder",
			Flags:  blockFlags,
			Action: blockCmd(stdout, stderr, tl.HalfAdder),
		},
		{
			Name:   "sub",
			Usage:  "run a port driven half subtractor",
			Flags:  blockFlags,
			Action: blockCmd(stdout, stderr, tl.HalfSub),
		},
	}
	return app
}

func encode(w io.Writer, v interface{}) error {
	if err := codec.NewEncoder(w, &codec.JsonHandle{}).Encode(v); err != nil {
		return errors.Wrap(err, "encode result")
	}
	_, err := w.Write([]byte{'\n'})
	return err
}

type evalResult struct {
	Op  string `codec:"op"`
	In  string `codec:"in"`
	Out string `codec:"out"`
}

func evalCmd(stdout io.Writer) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if ctx.NArg() != 3 {
			return errors.New("expected 3 arguments: OPCODE A B")
		}
		code, err := ts.ParseDataCode(ctx.Args().Get(0))
		if err != nil {
			return err
		}
		var in ts.Data
		if in.A, err = ts.ParseTriBool(ctx.Args().Get(1)); err != nil {
			return err
		}
		if in.B, err = ts.ParseTriBool(ctx.Args().Get(2)); err != nil {
			return err
		}
		out, err := ts.Eval(code, in)
		if err != nil {
			return err
		}
		return encode(stdout, evalResult{code.String(), in.String(), out.String()})
	}
}

// ports
const (
	pA = iota
	pB
	pOut0
	pOut1
	portCount
)

type blockResult struct {
	A     string `codec:"a"`
	B     string `codec:"b"`
	Out0  string `codec:"out0"`
	Out1  string `codec:"out1"`
	Steps uint   `codec:"steps"`
}

func blockCmd(stdout, stderr io.Writer, block func(at ts.Locale, a, b, o0, o1 int) ts.Program) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		log := log15.New("cmd", ctx.Command.Name)
		lvl := log15.LvlInfo
		if ctx.GlobalBool("verbose") {
			lvl = log15.LvlDebug
		}
		log.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(stderr, log15.TerminalFormat())))

		a, err := ts.ParseTriBool(ctx.String("a"))
		if err != nil {
			return err
		}
		b, err := ts.ParseTriBool(ctx.String("b"))
		if err != nil {
			return err
		}

		bank := ts.NewBank(portCount)
		bank.SetIn(pA, a)
		bank.SetIn(pB, b)
		c, err := ts.NewCircuit(ctx.Int("workers"), ts.Locale{Lat: 1, Lon: tl.ArithWidth}, bank,
			block(ts.Locale{}, pA, pB, pOut0, pOut1))
		if err != nil {
			return err
		}
		defer c.Dispose()
		c.SetLogger(log)

		log.Info("running", "gates", c.Size(), "a", a, "b", b)
		if err = c.Run((tl.ArithLatency + 1) / 2); err != nil {
			return err
		}
		return encode(stdout, blockResult{
			A:     a.String(),
			B:     b.String(),
			Out0:  bank.Out(pOut0).String(),
			Out1:  bank.Out(pOut1).String(),
			Steps: c.Steps(),
		})
	}
}
