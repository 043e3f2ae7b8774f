package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/skiptools/skip-salt/internal/dylib"
	"github.com/skiptools/skip-salt/sodium"
)

// library is the part of *sodium.Library the commands use.
type library interface {
	Path() string
	Backend() string
	InitStatus() int32
	Version() sodium.VersionInfo
	Minimal() (bool, error)
	RandomUint32() uint32
	RandomUniform(upperBound uint32) uint32
	RandomBytes(buf []byte) error
	RandomBytesDeterministic(buf, seed []byte) error
}

var openLibrary = func(cfg sodium.Config) (library, error) {
	return sodium.Open(cfg)
}

// exitError carries the process exit code: 2 for bad configuration or
// arguments, 1 for failures talking to the library.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

func runtimeErr(err error) error { return &exitError{code: 1, err: err} }

type options struct {
	configPath string
	library    string
	dirs       []string
	sha3       string
	strict     bool
	logLevel   string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "salt-probe: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unknown commands and malformed flags.
	return 2
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "salt-probe",
		Short: "Locate and exercise the native libsodium library",
		Long: `salt-probe resolves libsodium the same way the sodium package does and
reports what it found.

Examples:
  # Show the configuration the resolver would use
  salt-probe config

  # Load the library and print its version
  salt-probe version --dir /opt/sodium/lib

  # Print 16 deterministic bytes
  salt-probe bytes 16 --seed 00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "TOML config file")
	flags.StringVar(&opts.library, "library", "", "explicit library path, tried first")
	flags.StringSliceVar(&opts.dirs, "dir", nil, "extra install directory (repeatable, comma-separated)")
	flags.StringVar(&opts.sha3, "sha3", "", "expected SHA3-256 of the library file")
	flags.BoolVar(&opts.strict, "strict", false, "require the pin and a successful sodium_init")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newConfigCmd(opts, stdout, stderr),
		newVersionCmd(opts, stdout, stderr),
		newRandomCmd(opts, stdout, stderr),
		newUniformCmd(opts, stdout, stderr),
		newBytesCmd(opts, stdout, stderr),
	)
	return root
}

// effectiveConfig layers defaults, the config file, the environment and the
// command-line flags, in that order, and configures logging.
func effectiveConfig(opts *options, flags *pflag.FlagSet, stderr io.Writer) (sodium.Config, error) {
	cfg := sodium.DefaultConfig()
	if opts.configPath != "" {
		fileCfg, err := sodium.LoadConfigFile(opts.configPath)
		if err != nil {
			return sodium.Config{}, usageErr("%w", err)
		}
		cfg = fileCfg
	}
	cfg = sodium.ApplyEnv(cfg)

	if flags.Changed("library") {
		cfg.LibraryPath = strings.TrimSpace(opts.library)
	}
	if flags.Changed("dir") {
		cfg.ExtraDirs = dylib.NormalizeDirs(append(append([]string(nil), opts.dirs...), cfg.ExtraDirs...)...)
	}
	if flags.Changed("sha3") {
		cfg.SHA3_256 = strings.TrimSpace(opts.sha3)
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := sodium.ValidateConfig(cfg); err != nil {
		return sodium.Config{}, usageErr("invalid config: %w", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return sodium.Config{}, usageErr("invalid config: %w", err)
	}
	logrus.SetOutput(stderr)
	logrus.SetLevel(level)
	return cfg, nil
}

func load(opts *options, cmd *cobra.Command, stderr io.Writer) (library, error) {
	cfg, err := effectiveConfig(opts, cmd.Flags(), stderr)
	if err != nil {
		return nil, err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return nil, runtimeErr(err)
	}
	return lib, nil
}

func newConfigCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := effectiveConfig(opts, cmd.Flags(), stderr)
			if err != nil {
				return err
			}
			if err := printJSON(stdout, cfg); err != nil {
				return runtimeErr(fmt.Errorf("config encode failed: %w", err))
			}
			return nil
		},
	}
}

type versionReport struct {
	Path       string `json:"path"`
	Backend    string `json:"backend"`
	InitStatus int32  `json:"init_status"`
	sodium.VersionInfo
	Minimal *bool `json:"minimal,omitempty"`
}

func newVersionCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Load libsodium and print its version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := load(opts, cmd, stderr)
			if err != nil {
				return err
			}
			report := versionReport{
				Path:        lib.Path(),
				Backend:     lib.Backend(),
				InitStatus:  lib.InitStatus(),
				VersionInfo: lib.Version(),
			}
			if minimal, err := lib.Minimal(); err == nil {
				report.Minimal = &minimal
			}
			if err := printJSON(stdout, report); err != nil {
				return runtimeErr(err)
			}
			return nil
		},
	}
}

func newRandomCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print values from randombytes_random",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return usageErr("--count must be positive")
			}
			lib, err := load(opts, cmd, stderr)
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				_, _ = fmt.Fprintln(stdout, lib.RandomUint32())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of values")
	return cmd
}

func newUniformCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "uniform BOUND",
		Short: "Print values from randombytes_uniform(BOUND)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bound, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return usageErr("invalid bound %q: want an unsigned 32-bit integer", args[0])
			}
			if count < 1 {
				return usageErr("--count must be positive")
			}
			lib, err := load(opts, cmd, stderr)
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				_, _ = fmt.Fprintln(stdout, lib.RandomUniform(uint32(bound)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of values")
	return cmd
}

// maxBytes caps the length accepted by the bytes command.
const maxBytes = 1 << 20

func newBytesCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var seedHex string
	cmd := &cobra.Command{
		Use:   "bytes N",
		Short: "Print N random bytes as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 || n > maxBytes {
				return usageErr("invalid length %q: want 0..%d", args[0], maxBytes)
			}
			var seed []byte
			if seedHex != "" {
				seed, err = hex.DecodeString(strings.TrimSpace(seedHex))
				if err != nil || len(seed) != sodium.SeedSize {
					return usageErr("--seed must be %d bytes of hex", sodium.SeedSize)
				}
			}
			lib, err := load(opts, cmd, stderr)
			if err != nil {
				return err
			}
			buf := make([]byte, n)
			if seed != nil {
				err = lib.RandomBytesDeterministic(buf, seed)
			} else {
				err = lib.RandomBytes(buf)
			}
			if err != nil {
				return runtimeErr(err)
			}
			_, _ = fmt.Fprintln(stdout, hex.EncodeToString(buf))
			return nil
		},
	}
	cmd.Flags().StringVar(&seedHex, "seed", "", "32-byte hex seed for randombytes_buf_deterministic")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
