package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive {
		switch msg.String() {
		case "enter":
			m.filterActive = false
			return m, nil

		case "esc":
			m.filterActive = false
			m.filter = ""
			m.applyFilter()
			return m, nil

		case "backspace":
			if len(m.filter) > 0 {
				runes := []rune(m.filter)
				m.filter = string(runes[:len(runes)-1])
				m.applyFilter()
			}
			return m, nil

		case "q", "ctrl+c":
			return m, tea.Quit
		}

		if msg.Type == tea.KeyRunes {
			m.filter += msg.String()
			m.applyFilter()
			return m, nil
		}

		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)
		return m, nil

	case "down", "j":
		m.moveCursor(1)
		return m, nil

	case "enter", "l", "right":
		if m.screen == screenCategories && len(m.categories) > 0 && m.catCursor < len(m.categories) {
			m.enterCategory(m.categories[m.catCursor].category)
		}
		return m, nil

	case "backspace", "h", "left":
		if m.screen == screenEntries {
			m.backToCategories()
		}
		return m, nil

	case "s":
		if m.screen == screenEntries {
			m.sort = SortBySize
			m.applyFilter()
		}
		return m, nil

	case "r":
		if m.screen == screenEntries {
			m.sort = SortByReclaimable
			m.applyFilter()
		}
		return m, nil

	case "n":
		if m.screen == screenEntries {
			m.sort = SortByName
			m.applyFilter()
		}
		return m, nil

	case "/":
		if m.screen == screenEntries {
			m.filterActive = true
		}
		return m, nil

	case "home", "g":
		m.setCursor(0)
		return m, nil

	case "end", "G":
		m.setCursor(m.listLen() - 1)
		return m, nil

	case "pgup":
		m.moveCursor(-10)
		return m, nil

	case "pgdown":
		m.moveCursor(10)
		return m, nil
	}

	return m, nil
}

func (m *Model) listLen() int {
	if m.screen == screenCategories {
		return len(m.categories)
	}
	return len(m.entries)
}

func (m *Model) cursor() int {
	if m.screen == screenCategories {
		return m.catCursor
	}
	return m.entryCursor
}

func (m *Model) setCursor(n int) {
	if n < 0 {
		n = 0
	}
	if n >= m.listLen() {
		n = m.listLen() - 1
	}
	if n < 0 {
		n = 0
	}
	if m.screen == screenCategories {
		m.catCursor = n
	} else {
		m.entryCursor = n
	}
}

func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursor() + delta)
}
