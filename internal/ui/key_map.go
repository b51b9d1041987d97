package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the crawl monitor.
type keyMap struct {
	log  key.Binding
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		log:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "toggle log")),
		quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "stop")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.log, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.log, k.quit}}
}
