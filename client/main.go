package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/burntcarrot/loomtext/host/tui"
	"github.com/burntcarrot/loomtext/session"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

func main() {
	flags := parseFlags()

	logger := logrus.New()
	logFile, debugLogFile, err := setupLogger(logger)
	if err != nil {
		color.Red("Logger error, exiting: %s\n", err)
		os.Exit(1)
	}
	defer closeLogFiles(logFile, debugLogFile)
	if flags.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	displayName := flags.DisplayName
	if displayName == "" {
		fmt.Printf("%s", color.YellowString("Enter your name: "))
		s := bufio.NewScanner(os.Stdin)
		s.Scan()
		displayName = s.Text()
	}

	color.Green("\nWelcome %s!\n", displayName)
	color.Green("Connecting to %s:%d\n", flags.Host, flags.Port)

	cfg := session.ClientConfig{
		Host:        flags.Host,
		Port:        flags.Port,
		Password:    flags.Password,
		DisplayName: displayName,
	}

	if err := tui.Run(cfg, flags.Buffer, flags.Debug, logger); err != nil {
		color.Red("Exiting: %s\n", err)
		os.Exit(1)
	}
}
