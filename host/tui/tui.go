package tui

import (
	"github.com/burntcarrot/loomtext/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// Run dials cfg, then runs the editor's bubbletea program until the user quits or the connection
// drops. It owns the Client for the lifetime of the program.
func Run(cfg session.ClientConfig, buffer string, debug bool, log *logrus.Logger) error {
	adapter := &hostAdapter{}

	client, err := session.Dial(cfg, adapter, log)
	if err != nil {
		return err
	}
	defer client.Close()

	m := newModel(client, cfg.DisplayName, buffer, debug, log)
	prog := tea.NewProgram(m)
	adapter.prog = prog

	go func() {
		if err := client.Run(); err != nil && log != nil {
			log.WithError(err).Info("connection closed")
		}
		prog.Quit()
	}()

	return prog.Start()
}
