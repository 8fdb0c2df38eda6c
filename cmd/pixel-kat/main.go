// Command pixel-kat writes the known answer test file of the Pixel public
// parameter, or checks an existing one byte for byte.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hyperledger/aries-framework-go/component/log"

	param "github.com/Iscaraca/pixelparam"
)

const loggerModule = "pixel-kat"

var logger = log.New(loggerModule)

var errMismatch = errors.New("known answer test mismatch")

type config struct {
	out         string
	check       string
	compressed  bool
	seedHex     string
	ciphersuite uint
	logLevel    string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.out, "out", "kat_go.txt", "path of the known answer test file to write")
	flag.StringVar(&cfg.check, "check", "", "compare against this known answer test file instead of writing one")
	flag.BoolVar(&cfg.compressed, "compressed", false, "serialize points in compressed form")
	flag.StringVar(&cfg.seedHex, "seed", "", "hex encoded seed (default: SHA-512 initial hash value)")
	flag.UintVar(&cfg.ciphersuite, "ciphersuite", 0, "ciphersuite identifier")
	flag.StringVar(&cfg.logLevel, "log-level", "INFO", "log level: CRITICAL, ERROR, WARNING, INFO or DEBUG")
	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pixel-kat: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	level, err := log.ParseLevel(cfg.logLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(loggerModule, level)
	log.SetLevel(param.LoggerModule, level)

	blob, err := generate(cfg)
	if err != nil {
		return err
	}

	if cfg.check != "" {
		return check(cfg.check, blob)
	}

	if err := os.WriteFile(cfg.out, blob, 0o644); err != nil {
		return fmt.Errorf("write known answer test: %w", err)
	}
	logger.Infof("A `known answer test` file is generated in %s (%d bytes)", cfg.out, len(blob))
	return nil
}

func generate(cfg config) ([]byte, error) {
	if cfg.ciphersuite > 0xff {
		return nil, fmt.Errorf("%w: %d", param.ErrInvalidCiphersuite, cfg.ciphersuite)
	}

	seed := param.DefaultSeed()
	if cfg.seedHex != "" {
		var err error
		seed, err = hex.DecodeString(cfg.seedHex)
		if err != nil {
			return nil, fmt.Errorf("decode seed: %w", err)
		}
	}

	pp, err := param.New(seed, uint8(cfg.ciphersuite))
	if err != nil {
		return nil, fmt.Errorf("derive public parameter: %w", err)
	}
	logger.Debugf("%s", pp)

	return pp.Bytes(cfg.compressed)
}

func check(path string, blob []byte) error {
	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read known answer test: %w", err)
	}

	if !bytes.Equal(want, blob) {
		return fmt.Errorf("%w: %s differs (%d bytes on file, %d bytes generated)", errMismatch, path, len(want), len(blob))
	}

	logger.Infof("%s matches (%d bytes)", path, len(blob))
	return nil
}
