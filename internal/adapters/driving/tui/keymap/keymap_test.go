package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"q quits", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, km.Quit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit},
		{"esc goes back", tea.KeyMsg{Type: tea.KeyEsc}, km.Back},
		{"k moves up", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, km.Up},
		{"down arrow moves down", tea.KeyMsg{Type: tea.KeyDown}, km.Down},
		{"enter opens", tea.KeyMsg{Type: tea.KeyEnter}, km.Select},
		{"r refreshes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}, km.Refresh},
		{"+ resolves deeper", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")}, km.Deeper},
		{"- resolves less", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")}, km.Shallower},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestKeyMap_HelpGroups(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ListHelp(), 4)
	assert.Len(t, km.DocumentHelp(), 4)
	assert.Len(t, km.FullHelp(), 3)
	for _, b := range km.ListHelp() {
		assert.NotEmpty(t, b.Help().Desc)
	}
}
