// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// cctx is a thin command-line wrapper over the JSON transaction facade:
// it reads one JSON command, executes it, and prints the JSON result.
// Commands that emit framed binary print it as hex on request.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/luxfi/cclib/ccapi"
	"github.com/luxfi/cclib/params"
)

type config struct {
	ProofKeyDir string `envconfig:"CC_PROOF_KEY_DIR"`
	LogLevel    string `envconfig:"CC_LOG_LEVEL" default:"warn"`
}

func main() {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "cctx",
		Usage: "construct and verify privacy transactions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "json",
				Usage: "JSON command; reads stdin when omitted",
			},
			&cli.BoolFlag{
				Name:  "emit-binary",
				Usage: "print the binary buffer as hex after the result",
			},
			&cli.IntFlag{
				Name:  "binary-size",
				Usage: "binary buffer size in bytes",
				Value: params.TxMaxSize,
			},
			&cli.StringFlag{
				Name:  "binary-in",
				Usage: "hex input loaded into the binary buffer",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return err
	}

	logCfg := zap.NewProductionConfig()
	if err := logCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return err
	}
	log, err := logCfg.Build()
	if err != nil {
		return err
	}
	defer log.Sync()

	jsonText := ctx.String("json")
	if jsonText == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		jsonText = string(data)
	}

	binbuf := make([]byte, ctx.Int("binary-size"))
	if in := ctx.String("binary-in"); in != "" {
		data, err := hex.DecodeString(in)
		if err != nil {
			return fmt.Errorf("binary-in: %w", err)
		}
		copy(binbuf, data)
	}

	client := ccapi.NewClient(cfg.ProofKeyDir, log)

	out := client.JsonCmd(jsonText, binbuf)
	fmt.Println(out)

	if ctx.Bool("emit-binary") {
		// the leading size word bounds the live frame
		size := uint32(binbuf[0]) | uint32(binbuf[1])<<8 | uint32(binbuf[2])<<16 | uint32(binbuf[3])<<24
		if int(size) <= len(binbuf) && size >= params.CCMsgHeaderSize {
			fmt.Println(hex.EncodeToString(binbuf[:size]))
		}
	}

	return nil
}
