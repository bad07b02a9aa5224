// Package console is the terminal front end: the customer storefront plus,
// behind a four-keystroke secret sequence, the admin order board. The
// sequence is obscurity for convenience, not an access-control boundary.
package console

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"storefront-system/internal/board"
	"storefront-system/internal/cooldown"
	"storefront-system/internal/domain"
	"storefront-system/internal/storefront"
)

// adminSequence toggles the admin view when typed anywhere.
var adminSequence = []rune{'j', 'h', 'a', 'c'}

const (
	focusIdentity = iota
	focusQuantity
)

type tickMsg time.Time

type submitResult struct {
	resp domain.SubmitOrderResponse
	err  error
}

type countdownMsg struct {
	src  <-chan time.Duration
	left time.Duration
	ok   bool
}

type Model struct {
	svc   *storefront.Service
	board *board.Board

	admin bool
	seq   []rune

	// storefront state
	identity  string
	quantity  string
	focus     int
	catIdx    int
	itemIdx   int
	status    string
	countdown *cooldown.Countdown
	ticks     <-chan time.Duration
	remaining time.Duration

	// admin state
	search        string
	selected      int
	confirmDelete bool
}

func NewModel(svc *storefront.Service, b *board.Board) Model {
	return Model{
		svc:       svc,
		board:     b,
		quantity:  "1",
		status:    "Welcome",
		countdown: &cooldown.Countdown{},
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// The one-second tick keeps the board view fresh.
		return m, tick()

	case submitResult:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "Order placed successfully!"
		}
		// A successful order starts the cooldown; a cooldown rejection
		// resumes the display of the one already running.
		return m, m.restartCountdown()

	case countdownMsg:
		// A countdown cancelled by an identity switch may still deliver one
		// final message; only the live channel counts.
		if msg.src != m.ticks {
			return m, nil
		}
		if !msg.ok {
			m.remaining = 0
			m.ticks = nil
			return m, nil
		}
		m.remaining = msg.left
		return m, awaitCountdown(m.ticks)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.trackSequence(msg) {
			m.admin = !m.admin
			m.confirmDelete = false
			return m, nil
		}
		if m.admin {
			return m.updateAdmin(msg)
		}
		return m.updateStorefront(msg)
	}
	return m, nil
}

// trackSequence feeds every printable keystroke into a rolling buffer and
// reports when it spells the admin sequence.
func (m *Model) trackSequence(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return false
	}
	m.seq = append(m.seq, msg.Runes[0])
	if len(m.seq) > len(adminSequence) {
		m.seq = m.seq[1:]
	}
	if len(m.seq) != len(adminSequence) {
		return false
	}
	for i, r := range adminSequence {
		if m.seq[i] != r {
			return false
		}
	}
	m.seq = nil
	return true
}

// restartCountdown re-derives the cooldown for the current identity and
// starts the one-second countdown, tearing down any countdown already running
// for a previous identity.
func (m *Model) restartCountdown() tea.Cmd {
	left := m.svc.CooldownRemaining(m.identity)
	m.remaining = left
	if left <= 0 {
		m.countdown.Stop()
		m.ticks = nil
		return nil
	}
	m.ticks = m.countdown.Start(left)
	return awaitCountdown(m.ticks)
}

func awaitCountdown(ch <-chan time.Duration) tea.Cmd {
	return func() tea.Msg {
		left, ok := <-ch
		return countdownMsg{src: ch, left: left, ok: ok}
	}
}

func (m Model) updateStorefront(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	categories := m.svc.Categories()

	switch msg.String() {
	case "tab":
		m.focus = (m.focus + 1) % 2
	case "up":
		if m.catIdx > 0 {
			m.catIdx--
			m.itemIdx = 0
		}
	case "down":
		if m.catIdx < len(categories)-1 {
			m.catIdx++
			m.itemIdx = 0
		}
	case "left":
		if m.itemIdx > 0 {
			m.itemIdx--
		}
	case "right":
		if m.itemIdx < len(m.svc.Items(categories[m.catIdx]))-1 {
			m.itemIdx++
		}
	case "+":
		m.status = m.addLine()
	case "-":
		view := m.svc.Cart(m.identity)
		m.svc.RemoveLine(m.identity, len(view.Lines)-1)
	case "backspace":
		if m.focus == focusIdentity && len(m.identity) > 0 {
			m.identity = m.identity[:len(m.identity)-1]
			return m, m.restartCountdown()
		}
		if m.focus == focusQuantity && len(m.quantity) > 0 {
			m.quantity = m.quantity[:len(m.quantity)-1]
		}
	case "enter":
		identity := m.identity
		svc := m.svc
		m.status = "Placing order..."
		return m, func() tea.Msg {
			resp, err := svc.SubmitOrder(context.Background(), identity)
			return submitResult{resp: resp, err: err}
		}
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			if m.focus == focusIdentity {
				// Each identity has its own independent cooldown.
				m.identity += string(msg.Runes)
				return m, m.restartCountdown()
			}
			m.quantity += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *Model) addLine() string {
	categories := m.svc.Categories()
	if m.catIdx >= len(categories) {
		return domain.ErrNoSelection.Error()
	}
	category := categories[m.catIdx]
	items := m.svc.Items(category)
	if m.itemIdx >= len(items) {
		return domain.ErrNoSelection.Error()
	}
	err := m.svc.AddLine(m.identity, category, items[m.itemIdx].Name,
		storefront.ParseQuantity(m.quantity))
	if err != nil {
		return err.Error()
	}
	return "Added " + items[m.itemIdx].Name
}

func (m Model) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	orders := m.adminOrders()

	switch msg.String() {
	case "esc":
		m.admin = false
	case "up":
		if m.selected > 0 {
			m.selected--
		}
		m.confirmDelete = false
	case "down":
		if m.selected < len(orders)-1 {
			m.selected++
		}
		m.confirmDelete = false
	case "backspace":
		if len(m.search) > 0 {
			m.search = m.search[:len(m.search)-1]
			m.selected = 0
		}
		m.confirmDelete = false
	case "s":
		if m.selected < len(orders) {
			o := orders[m.selected]
			m.board.SetStatus(context.Background(), o.Identity, o.ID, nextStatus(o.Status))
		}
		m.confirmDelete = false
	case "d":
		// Arm the destructive path; "y" confirms, anything else disarms.
		if m.selected < len(orders) {
			m.confirmDelete = true
		}
	case "y":
		if m.confirmDelete && m.selected < len(orders) {
			o := orders[m.selected]
			_ = m.board.Delete(context.Background(), o.Identity, o.ID, true)
		}
		m.confirmDelete = false
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			m.search += string(msg.Runes)
			m.selected = 0
		}
		m.confirmDelete = false
	}
	return m, nil
}

// adminOrders flattens the current view in bucket order for selection.
func (m Model) adminOrders() []domain.Order {
	v := m.board.View(m.search)
	out := make([]domain.Order, 0, len(v.Pending)+len(v.OnHold)+len(v.Completed))
	out = append(out, v.Pending...)
	out = append(out, v.OnHold...)
	out = append(out, v.Completed...)
	return out
}

func nextStatus(s domain.OrderStatus) domain.OrderStatus {
	switch domain.ParseStatus(string(s)) {
	case domain.StatusPending:
		return domain.StatusOnHold
	case domain.StatusOnHold:
		return domain.StatusCompleted
	default:
		return domain.StatusPending
	}
}
