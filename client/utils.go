package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

// Flags represents the command-line flags passed to loomtext's client.
type Flags struct {
	Host        string
	Port        int
	Password    string
	DisplayName string
	Buffer      string
	Debug       bool
}

// parseFlags parses command-line flags.
func parseFlags() Flags {
	host := flag.String("host", "localhost", "The hub's network address")
	port := flag.Int("port", 9000, "The hub's port")
	password := flag.String("password", "", "Shared password, if the session requires one")
	displayName := flag.String("name", "", "Display name announced to the session")
	buffer := flag.String("buffer", "scratch", "Name of the buffer to open")
	debug := flag.Bool("debug", false, "Enable verbose logging and the cursor debug line")

	flag.Parse()

	return Flags{
		Host:        *host,
		Port:        *port,
		Password:    *password,
		DisplayName: *displayName,
		Buffer:      *buffer,
		Debug:       *debug,
	}
}

// ensureDirExists ensures that a directory exists, creating it if it isn't present.
func ensureDirExists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil
	}
	if err := os.Mkdir(path, 0700); err != nil {
		return false, err
	}
	return true, nil
}

// setupLogger initializes the client's logger (logrus), splitting warnings-and-up from
// everything else into two files under the user's home directory.
func setupLogger(logger *logrus.Logger) (*os.File, *os.File, error) {
	logPath := "loomtext.log"
	debugLogPath := "loomtext-debug.log"

	homeDirExists := true
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDirExists = false
	}

	configDir := filepath.Join(homeDir, ".loomtext")
	dirExists, err := ensureDirExists(configDir)
	if err != nil {
		return nil, nil, err
	}

	if dirExists && homeDirExists {
		logPath = filepath.Join(configDir, "loomtext.log")
		debugLogPath = filepath.Join(configDir, "loomtext-debug.log")
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		fmt.Printf("Logger error, exiting: %s", err)
		return nil, nil, err
	}

	debugLogFile, err := os.OpenFile(debugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		fmt.Printf("Logger error, exiting: %s", err)
		return nil, nil, err
	}

	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []logrus.Level{
			logrus.WarnLevel,
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		},
	})
	logger.AddHook(&writer.Hook{
		Writer: debugLogFile,
		LogLevels: []logrus.Level{
			logrus.TraceLevel,
			logrus.DebugLevel,
			logrus.InfoLevel,
		},
	})

	return logFile, debugLogFile, nil
}

// closeLogFiles closes the log files created by the client. Meant for a defer call.
func closeLogFiles(logFile, debugLogFile *os.File) {
	if err := logFile.Close(); err != nil {
		fmt.Printf("Failed to close log file: %s", err)
		return
	}
	if err := debugLogFile.Close(); err != nil {
		fmt.Printf("Failed to close debug log file: %s", err)
	}
}
