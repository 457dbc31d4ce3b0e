// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
	"github.com/palladium-coin/plmd/chaincfg"
	"github.com/palladium-coin/plmd/internal/version"
)

const (
	defaultDataDirname   = "data"
	defaultLogLevel      = "info"
	defaultLogDirname    = "logs"
	defaultLogFilename   = "plmd.log"
	defaultHomeDirname   = ".plmd"
	defaultMiningWorkers = 1
)

// defaultHomeDir is the application home directory used when none is
// specified.
var defaultHomeDir = func() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultHomeDirname
	}
	return filepath.Join(homeDir, defaultHomeDirname)
}()

// config defines the configuration options for plmd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	// General application behavior.
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	HomeDir       string `short:"A" long:"appdata" description:"Path to application home directory"`
	DataDir       string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// Chain parameter options.
	TestNet      bool  `long:"testnet" description:"Use the test network"`
	RegNet       bool  `long:"regnet" description:"Use the regression test network"`
	AuxPowHeight int64 `long:"auxpowheight" description:"Height at which blocks must be merge mined with an auxpow (regnet only)"`

	// Mining options.
	Generate      bool   `long:"generate" description:"Generate (mine) blocks using the CPU (regnet and blocks before auxpow activation only)"`
	NumBlocks     uint32 `long:"numblocks" description:"Number of blocks to generate before shutting down -- 0 mines until shutdown"`
	MiningWorkers int32  `long:"miningworkers" description:"Number of CPU mining workers when continuously mining"`
	PayScript     string `long:"payscript" description:"Hex encoded script generated coinbases pay to -- empty pays to a script anyone can redeem"`

	// The following options are set during configuration processing.
	params *chaincfg.Params
}

// errSuppressUsage signifies that an error that happened during the initial
// configuration phase should suppress the usage output since it was not caused
// by the user.
type errSuppressUsage string

// Error implements the error interface.
func (e errSuppressUsage) Error() string {
	return string(e)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory.
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(homeDir, path[1:])
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	_, ok := slog.LevelFromString(logLevel)
	return ok
}

// parseAndSetDebugLevels attempts to parse the specified debug level and set
// the levels accordingly.  An appropriate error is returned if anything is
// invalid.
func parseAndSetDebugLevels(debugLevel string) error {
	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		// Validate debug log level.
		if !validLogLevel(debugLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, debugLevel)
		}

		// Change the logging level for all subsystems.
		setLogLevels(debugLevel)

		return nil
	}

	// Split the specified string into subsystem/level pairs while detecting
	// issues and update the log levels accordingly.
	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			str := "the specified debug level contains an invalid " +
				"subsystem/level pair [%v]"
			return fmt.Errorf(str, logLevelPair)
		}

		// Extract the specified subsystem and log level.
		fields := strings.Split(logLevelPair, "=")
		subsysID, logLevel := fields[0], fields[1]

		// Validate subsystem.
		if _, exists := subsystemLoggers[subsysID]; !exists {
			str := "the specified subsystem [%v] is invalid -- " +
				"supported subsystems %v"
			return fmt.Errorf(str, subsysID, supportedSubsystems())
		}

		// Validate log level.
		if !validLogLevel(logLevel) {
			str := "the specified debug level [%v] is invalid"
			return fmt.Errorf(str, logLevel)
		}

		setLogLevel(subsysID, logLevel)
	}

	return nil
}

// loadConfig initializes and parses the config using command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Parse the provided command line options and overwrite the defaults
//  3. Validate the options and select the network parameters
//
// The data and log directories default to per network directories under the
// application home directory.  File logging is initialized unless disabled.
func loadConfig(appName string, args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		HomeDir:       defaultHomeDir,
		DebugLevel:    defaultLogLevel,
		MiningWorkers: defaultMiningWorkers,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	parser.Name = appName
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			return nil, nil, errSuppressUsage(err.Error())
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, version.String())
		os.Exit(0)
	}

	// Multiple networks can't be selected simultaneously.  Count the number
	// of network flags passed and assign the active network params while
	// we're at it.
	numNets := 0
	cfg.params = chaincfg.MainNetParams()
	if cfg.TestNet {
		numNets++
		cfg.params = chaincfg.TestNetParams()
	}
	if cfg.RegNet {
		numNets++
		cfg.params = chaincfg.RegNetParams()
	}
	if numNets > 1 {
		str := "%s: the testnet and regnet params can't be used together -- " +
			"choose one of the two"
		return nil, nil, fmt.Errorf(str, "loadConfig")
	}

	// The auxpow activation height may only be overridden on the regression
	// test network.
	if opt := parser.FindOptionByLongName("auxpowheight"); opt != nil &&
		opt.IsSet() {

		if !cfg.RegNet {
			str := "%s: the auxpowheight option may only be used with regnet"
			return nil, nil, fmt.Errorf(str, "loadConfig")
		}
		if cfg.AuxPowHeight < 1 {
			str := "%s: the auxpowheight option must be at least 1 -- " +
				"parsed [%d]"
			return nil, nil, fmt.Errorf(str, "loadConfig", cfg.AuxPowHeight)
		}
		cfg.params.AuxPowStartHeight = cfg.AuxPowHeight
	}

	// The number of blocks to generate only makes sense when generating.
	if cfg.NumBlocks != 0 && !cfg.Generate {
		str := "%s: the numblocks option requires the generate option"
		return nil, nil, fmt.Errorf(str, "loadConfig")
	}

	// Ensure the pay script is valid hex.
	if _, err := decodePayScript(cfg.PayScript); err != nil {
		str := "%s: the payscript option is not valid hex: %v"
		return nil, nil, fmt.Errorf(str, "loadConfig", err)
	}

	// Set the default data and log directories under the home directory when
	// they were not specified and append the network name to them so the
	// data and logs of different networks are kept apart.
	cfg.HomeDir = cleanAndExpandPath(cfg.HomeDir)
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(cfg.HomeDir, defaultDataDirname)
	}
	cfg.DataDir = filepath.Join(cleanAndExpandPath(cfg.DataDir),
		cfg.params.Name)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.HomeDir, defaultLogDirname)
	}
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir), cfg.params.Name)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	// Initialize log rotation.  After log rotation has been initialized, the
	// logger variables may be used.
	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return nil, nil, errSuppressUsage(err.Error())
		}
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %w", "loadConfig", err)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
