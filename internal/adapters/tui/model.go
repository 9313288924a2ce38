// Package tui renders the merchant screen as a bubbletea program.
//
// The model owns no screen state of its own beyond cursor and focus: every
// message from a finished command goes through screen.Controller.Update, which
// bubbletea calls from a single goroutine.
package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/lojista/internal/app/screen"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

const (
	bannerTitle  = "Perfil do Lojista"
	sectionTitle = "Todas as Postagens"
	modalTitle   = "Avaliar Lojista"
	feedbackHint = "Deixe um comentário (opcional)"
)

type modalFocus int

const (
	focusStars modalFocus = iota
	focusFeedback
)

// Model is the bubbletea model for one merchant screen.
type Model struct {
	ctx      context.Context
	ctrl     *screen.Controller
	merchant string
	styles   Styles
	logger   logger.Logger

	input    textinput.Model
	focus    modalFocus
	selected int
	specs    *model.Product
	width    int
}

// Option configures a Model.
type Option func(*Model)

// WithStyles replaces DefaultStyles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New builds the model for merchantID. Commands run with ctx, so cancelling it
// aborts in-flight fetches.
func New(ctx context.Context, ctrl *screen.Controller, merchantID string, opts ...Option) Model {
	fi := textinput.New()
	fi.Placeholder = feedbackHint
	fi.CharLimit = rating.MaxFeedbackRunes
	fi.Width = rating.MaxFeedbackRunes
	fi.Prompt = "› "

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		merchant: merchantID,
		styles:   DefaultStyles(),
		logger:   logger.Discard(),
		input:    fi,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init opens the screen.
func (m Model) Init() tea.Cmd {
	return m.adapt(m.ctrl.Open(m.merchant))
}

// adapt turns controller commands into bubbletea commands. bubbletea runs each
// on its own goroutine and feeds the resulting screen.Msg back into Update.
func (m Model) adapt(cmds []screen.Cmd) tea.Cmd {
	out := make([]tea.Cmd, 0, len(cmds))
	ctx := m.ctx
	for _, c := range cmds {
		out = append(out, func() tea.Msg { return c(ctx) })
	}
	return tea.Batch(out...)
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case screen.Msg:
		cmd := m.adapt(m.ctrl.Update(msg))
		m.clampSelection()
		return m, cmd

	case tea.KeyMsg:
		if m.ctrl.State().RatingOpen {
			return m.updateModal(msg)
		}
		return m.updateScreen(msg)
	}

	if m.ctrl.State().RatingOpen && m.focus == focusFeedback {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.ctrl.State()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		m.specs = nil

	case "r":
		if err := m.ctrl.OpenRating(); err != nil {
			m.logger.Debug(m.ctx, "rating unavailable", logger.Error(err))
			return m, nil
		}
		m.input.SetValue(m.ctrl.State().Feedback)
		m.input.Blur()
		m.focus = focusStars

	case "f":
		if err := m.ctrl.Follow(); err != nil {
			m.logger.Debug(m.ctx, "follow unavailable", logger.Error(err))
		}

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(st.Products)-1 {
			m.selected++
		}

	case "s", "enter":
		if len(st.Products) == 0 {
			return m, nil
		}
		p, err := m.ctrl.OpenSpecifications(st.Products[m.selected].ID)
		if err != nil {
			m.logger.Warn(m.ctx, "specifications unavailable", logger.Error(err))
			return m, nil
		}
		m.specs = &p

	case "R", "ctrl+r":
		m.specs = nil
		return m, m.adapt(m.ctrl.Reload())
	}
	return m, nil
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.ctrl.CloseRating()
		m.input.Blur()
		return m, nil

	case "enter":
		cmds, err := m.ctrl.SubmitRating()
		m.input.Blur()
		if err != nil {
			m.logger.Warn(m.ctx, "rating not submitted", logger.Error(err))
			return m, nil
		}
		return m, m.adapt(cmds)

	case "tab", "shift+tab":
		if m.focus == focusStars {
			m.focus = focusFeedback
			cmd := m.input.Focus()
			return m, cmd
		}
		m.focus = focusStars
		m.input.Blur()
		return m, nil
	}

	if m.focus == focusFeedback {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if _, err := m.ctrl.SetFeedback(m.input.Value()); err != nil {
			m.logger.Warn(m.ctx, "feedback rejected", logger.Error(err))
		}
		return m, cmd
	}

	stars := m.ctrl.State().Stars
	switch key := msg.String(); key {
	case "1", "2", "3", "4", "5":
		stars, _ = strconv.Atoi(key)
	case "left", "h", "-":
		stars--
	case "right", "l", "+":
		stars++
	default:
		return m, nil
	}
	// Out of range presses are ignored; the draft keeps its stars.
	_ = m.ctrl.SetStars(stars)
	return m, nil
}

func (m *Model) clampSelection() {
	n := len(m.ctrl.State().Products)
	if m.selected >= n {
		m.selected = max(n-1, 0)
	}
}

// View renders the screen.
func (m Model) View() string {
	st := m.ctrl.State()
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Banner.Render(bannerTitle))
	b.WriteString("\n")

	switch st.Profile.Status {
	case screen.PaneLoading:
		b.WriteString(s.Subtle.Render(screen.TextLoading))
		b.WriteString("\n")
	case screen.PaneReady:
		b.WriteString(m.renderCard(st))
		b.WriteString("\n")
	}
	if st.ErrorMessage != "" {
		b.WriteString(s.Error.Render(st.ErrorMessage))
		b.WriteString("\n")
	}

	b.WriteString(s.Section.Render(sectionTitle))
	b.WriteString("\n")
	if st.ProductsNotice != "" {
		b.WriteString(s.Error.Render(st.ProductsNotice))
		b.WriteString("\n")
	}
	for i, p := range st.Products {
		line := fmt.Sprintf("%s  %s  %s", p.Name, s.Subtle.Render(p.Category), s.Stars.Render(formatAverage(p.RatingAverage)))
		if i == m.selected {
			b.WriteString(s.Selected.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.specs != nil {
		b.WriteString(m.renderSpecs(*m.specs))
		b.WriteString("\n")
	}
	if st.Notice != "" {
		b.WriteString(s.Notice.Render(st.Notice))
		b.WriteString("\n")
	}
	if st.RatingOpen {
		b.WriteString(m.renderModal(st))
		b.WriteString("\n")
	}

	b.WriteString(s.Help.Render(m.help(st)))
	return b.String()
}

func (m Model) renderCard(st screen.State) string {
	s := m.styles
	p := st.Profile.Profile
	lines := []string{
		s.Title.Render(p.CompanyName),
		s.Subtle.Render(p.Category + " · " + model.FormatDistance(p.Distance)),
		s.Stars.Render(formatAverage(p.RatingAverage)),
	}
	if st.Following {
		lines = append(lines, s.Notice.Render("✓ seguindo"))
	}
	card := s.Card
	if m.width > 0 {
		card = card.Width(min(m.width-2, 60))
	}
	return card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderSpecs(p model.Product) string {
	s := m.styles
	return s.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(p.Name),
		"id: "+p.ID.String(),
		"categoria: "+p.Category,
		"avaliação: "+formatAverage(p.RatingAverage),
	))
}

func (m Model) renderModal(st screen.State) string {
	s := m.styles
	stars := s.Stars.Render(starBar(st.Stars, rating.MaxStars))
	if m.focus == focusStars {
		stars = "› " + stars
	} else {
		stars = "  " + stars
	}
	return s.Modal.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(modalTitle),
		stars,
		m.input.View(),
		s.Subtle.Render(fmt.Sprintf("%d/%d", len([]rune(st.Feedback)), rating.MaxFeedbackRunes)),
	))
}

func (m Model) help(st screen.State) string {
	if st.RatingOpen {
		return "1-5 estrelas • tab comentário • enter enviar • esc cancelar"
	}
	return "r avaliar • f seguir • ↑/↓ produto • s especificações • R recarregar • q sair"
}

func formatAverage(avg float64) string {
	return starBar(int(math.Round(avg)), rating.MaxStars) + " " + strconv.FormatFloat(avg, 'f', 1, 64)
}
