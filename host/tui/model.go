package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/burntcarrot/loomtext/session"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type contact struct {
	displayName, host string
	port              int
}

type model struct {
	client *session.Client
	log    *logrus.Logger
	debug  bool

	displayName string

	buffer   string
	textarea textarea.Model
	synced   bool

	contacts map[uint16]contact
	cursors  map[uint16]int

	statusMsg string
	quitting  bool
	err       error
}

type errMsg struct{ err error }

type clearStatusMsg struct{}

func newModel(client *session.Client, displayName, buffer string, debug bool, log *logrus.Logger) model {
	ta := textarea.New()
	ta.Placeholder = "Write something..."

	return model{
		client:      client,
		log:         log,
		debug:       debug,
		displayName: displayName,
		buffer:      buffer,
		textarea:    ta,
		contacts:    make(map[uint16]contact),
		cursors:     make(map[uint16]int),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			_ = m.client.Close()
			return m, tea.Quit
		}
		if !m.synced {
			return m, nil
		}
		return m.updateEditor(msg)

	case syncedMsg:
		if msg.buffer != m.buffer {
			return m, nil
		}
		m.synced = true
		m.textarea.SetValue(msg.content)
		m.textarea.Focus()
		return m, nil

	case desyncedMsg:
		if msg.buffer == m.buffer {
			m.statusMsg = fmt.Sprintf("%s was unshared", msg.buffer)
			return m.withStatus()
		}
		return m, nil

	case remoteInsertMsg:
		if msg.buffer != m.buffer {
			return m, nil
		}
		if buf, ok := m.client.Buffer(m.buffer); ok {
			m.textarea.SetValue(buf.Doc.Content())
			if m.debug {
				logDocumentState(m.log, m.buffer, buf.Doc)
			}
		}
		return m, nil

	case remoteDeleteMsg:
		if msg.buffer != m.buffer {
			return m, nil
		}
		if buf, ok := m.client.Buffer(m.buffer); ok {
			m.textarea.SetValue(buf.Doc.Content())
			if m.debug {
				logDocumentState(m.log, m.buffer, buf.Doc)
			}
		}
		return m, nil

	case remoteCursorMsg:
		if msg.buffer == m.buffer {
			m.cursors[msg.site] = msg.point
		}
		return m, nil

	case clearCursorMsg:
		if msg.buffer == m.buffer {
			delete(m.cursors, msg.site)
		}
		return m, nil

	case overlayRenderMsg, overlayRemoveMsg:
		// Overlay spans have no inline rendering in a plain textarea; contacts/cursors are
		// the only collaborative state surfaced in this view.
		return m, nil

	case contactJoinedMsg:
		m.contacts[msg.site] = contact{displayName: msg.displayName, host: msg.host, port: msg.port}
		m.statusMsg = fmt.Sprintf("%s joined", msg.displayName)
		return m.withStatus()

	case contactLeftMsg:
		delete(m.contacts, msg.site)
		delete(m.cursors, msg.site)
		return m, nil

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	after := m.textarea.Value()

	if after != before {
		if err := m.publishLocalEdit(before, after); err != nil && m.log != nil {
			m.log.WithError(err).Warn("publishing local edit")
		}
	}
	return m, cmd
}

// publishLocalEdit diffs the textarea's content before and after one keystroke and republishes
// the change through the client — bubbles' textarea has no lower-level insert/delete-at-position
// hook to intercept instead. The diff runs over runes, not bytes: Client.OnLocalInsert/
// OnLocalDelete and crdt.Document address positions in runes (document.go's Content/Length,
// edit.go's []rune(content)), so a byte offset would mis-position every edit once the buffer
// holds a multibyte character.
func (m model) publishLocalEdit(before, after string) error {
	beforeRunes := []rune(before)
	afterRunes := []rune(after)

	prefix := commonPrefixLen(beforeRunes, afterRunes)
	suffix := commonSuffixLen(beforeRunes[prefix:], afterRunes[prefix:])

	var err error
	switch {
	case len(afterRunes) > len(beforeRunes):
		inserted := string(afterRunes[prefix : len(afterRunes)-suffix])
		err = m.client.OnLocalInsert(m.buffer, prefix, inserted)
	case len(beforeRunes) > len(afterRunes):
		end := len(beforeRunes) - suffix
		err = m.client.OnLocalDelete(m.buffer, prefix, end)
	}
	if err == nil && m.debug {
		if buf, ok := m.client.Buffer(m.buffer); ok {
			logDocumentState(m.log, m.buffer, buf.Doc)
		}
	}
	return err
}

func commonPrefixLen(a, b []rune) int {
	n := minInt(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []rune) int {
	n := minInt(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (m model) withStatus() (tea.Model, tea.Cmd) {
	return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func loginView(m model) string {
	return fmt.Sprintf(
		"Connecting to %s as %s...\n\n%s",
		m.client.SessionName(),
		m.displayName,
		"(esc to quit)",
	) + "\n"
}

func editorView(m model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — site %d — %s\n\n", m.client.SessionName(), m.client.Site(), m.buffer)
	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")
	b.WriteString(contactsLine(m))
	if m.debug {
		b.WriteString("\n")
		b.WriteString(cursorsLine(m))
	}
	if m.statusMsg != "" {
		fmt.Fprintf(&b, "\n%s", m.statusMsg)
	}
	b.WriteString("\n(ctrl+c to quit)\n")
	return b.String()
}

func contactsLine(m model) string {
	if len(m.contacts) == 0 {
		return "Alone in this session."
	}
	sites := make([]uint16, 0, len(m.contacts))
	for site := range m.contacts {
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })

	names := make([]string, 0, len(sites))
	for _, site := range sites {
		names = append(names, m.contacts[site].displayName)
	}
	return "With: " + strings.Join(names, ", ")
}

func cursorsLine(m model) string {
	sites := make([]uint16, 0, len(m.cursors))
	for site := range m.cursors {
		sites = append(sites, site)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })

	parts := make([]string, 0, len(sites))
	for _, site := range sites {
		parts = append(parts, fmt.Sprintf("site %d @ %d", site, m.cursors[site]))
	}
	return "Cursors: " + strings.Join(parts, ", ")
}

func (m model) View() string {
	if m.quitting {
		return "\nSee you later!\n\n"
	}
	if m.err != nil {
		return fmt.Sprintf("\nerror: %v\n", m.err)
	}
	if !m.synced {
		return loginView(m)
	}
	return editorView(m)
}
