// Package tui is a terminal storefront. The bubbletea Update loop is the only
// goroutine that touches the cart; checkout runs as a command and reports back
// with a message.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/service"
	"github.com/jcmexdev/pallet-shop/internal/cart/infra/store"
	"github.com/jcmexdev/pallet-shop/internal/cart/view"
	"github.com/jcmexdev/pallet-shop/internal/catalog"
	"github.com/jcmexdev/pallet-shop/internal/checkout"
	"github.com/jcmexdev/pallet-shop/internal/pkg/metrics"
)

type focus int

const (
	focusCatalog focus = iota
	focusCart
	focusForm
)

var fieldLabels = []string{"Name", "Email", "Phone", "Address"}

// Deps are the collaborators of the terminal storefront.
type Deps struct {
	Store    *store.CartStore
	Pipeline *checkout.Pipeline
	Receipts ports.ReceiptSink
	Catalog  catalog.Catalog
	Metrics  *metrics.ShopMetrics
}

// screen receives cart notifications and keeps what is drawn.
type screen struct {
	view view.View
}

func (s *screen) CartChanged(_ context.Context, cart domain.Cart) {
	s.view = view.Project(cart)
}

type Model struct {
	deps   Deps
	cart   *service.CartService
	screen *screen

	focus      focus
	productSel int
	lineSel    int
	fieldSel   int
	fields     [4]string

	notices []string
	status  string
	pending int
}

// New loads the cart and draws it once.
func New(ctx context.Context, deps Deps) (Model, error) {
	scr := &screen{}
	m := Model{
		deps:   deps,
		screen: scr,
		cart:   service.NewCartService(deps.Store, scr, service.WithMetrics(deps.Metrics)),
		status: "Ready",
	}
	if _, err := m.cart.Refresh(ctx); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

// submitDone carries the outcome of an attempt back into the Update loop.
type submitDone struct {
	result    checkout.Result
	err       error
	notices   []string
	formReset bool
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case submitDone:
		return m.finishSubmit(msg), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % 3
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + 2) % 3
		return m, nil
	}

	switch m.focus {
	case focusCatalog:
		switch key {
		case "q":
			return m, tea.Quit
		case "up", "k":
			m.productSel = max(m.productSel-1, 0)
		case "down", "j":
			m.productSel = min(m.productSel+1, len(m.deps.Catalog.Products)-1)
		case "enter", "a":
			if len(m.deps.Catalog.Products) == 0 {
				break
			}
			p := m.deps.Catalog.Products[m.productSel]
			m.apply(m.cart.Add(ctx, p.Name, p.Price))
		}

	case focusCart:
		switch key {
		case "q":
			return m, tea.Quit
		case "up", "k":
			m.lineSel = max(m.lineSel-1, 0)
		case "down", "j":
			m.lineSel = min(m.lineSel+1, max(len(m.screen.view.Lines)-1, 0))
		case "+", "=":
			m.apply(m.cart.IncreaseQuantity(ctx, m.lineSel))
		case "-":
			m.apply(m.cart.DecreaseQuantity(ctx, m.lineSel))
		case "x", "delete":
			m.apply(m.cart.Remove(ctx, m.lineSel))
		}
		m.lineSel = min(m.lineSel, max(len(m.screen.view.Lines)-1, 0))

	case focusForm:
		switch msg.Type {
		case tea.KeyUp:
			m.fieldSel = max(m.fieldSel-1, 0)
		case tea.KeyDown:
			m.fieldSel = min(m.fieldSel+1, len(fieldLabels)-1)
		case tea.KeyBackspace:
			f := []rune(m.fields[m.fieldSel])
			if len(f) > 0 {
				m.fields[m.fieldSel] = string(f[:len(f)-1])
			}
		case tea.KeySpace:
			m.fields[m.fieldSel] += " "
		case tea.KeyRunes:
			m.fields[m.fieldSel] += string(msg.Runes)
		case tea.KeyEnter:
			if m.fieldSel < len(fieldLabels)-1 {
				m.fieldSel++
				break
			}
			m.pending++
			m.status = "Submitting order..."
			return m, m.submitCmd(m.buyer())
		}
	}
	return m, nil
}

// apply records the outcome of a cart operation. The screen is already
// redrawn by the notifier.
func (m *Model) apply(_ domain.Cart, err error) {
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.status = "Ready"
}

func (m Model) buyer() domain.Buyer {
	return domain.Buyer{
		Name:    m.fields[0],
		Email:   m.fields[1],
		Phone:   m.fields[2],
		Address: m.fields[3],
	}
}

func (m Model) submitCmd(buyer domain.Buyer) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		notices := &noticeBuffer{}
		form := &formFlag{}
		res, err := deps.Pipeline.Submit(context.Background(), checkout.Session{
			CartKey:  deps.Store.Key(),
			Store:    deps.Store,
			Notices:  notices,
			Form:     form,
			Receipts: deps.Receipts,
		}, buyer)
		return submitDone{result: res, err: err, notices: notices.list, formReset: form.reset}
	}
}

func (m Model) finishSubmit(msg submitDone) Model {
	m.pending = max(m.pending-1, 0)
	m.notices = msg.notices
	if msg.formReset {
		m.fields = [4]string{}
		m.fieldSel = 0
	}

	switch {
	case msg.err == nil:
		m.status = fmt.Sprintf("Order %s placed", shortID(msg.result.AttemptID))
		if fs, ok := m.deps.Receipts.(interface {
			Path(ports.Document) string
		}); ok && msg.result.Receipt != nil {
			m.status += ", receipt saved to " + fs.Path(*msg.result.Receipt)
		}
	default:
		m.status = "Checkout failed: " + msg.err.Error()
	}

	if _, err := m.cart.Refresh(context.Background()); err != nil {
		m.status = "Error: " + err.Error()
	}
	return m
}

func (m Model) View() string {
	b := &strings.Builder{}
	v := m.screen.view

	fmt.Fprintf(b, "Pallet Shop                                   Cart: %d\n\n", v.Count)

	fmt.Fprintln(b, section("Products", m.focus == focusCatalog))
	for i, p := range m.deps.Catalog.Products {
		fmt.Fprintf(b, " %s %-20s $%s\n", marker(m.focus == focusCatalog && i == m.productSel), p.Name, p.Price)
	}

	fmt.Fprintln(b, "")
	fmt.Fprintln(b, section("Cart", m.focus == focusCart))
	if v.Empty {
		fmt.Fprintf(b, "   %s\n", view.EmptyText)
	} else {
		for i, l := range v.Lines {
			fmt.Fprintf(b, " %s %s - $%s × %d = $%s\n", marker(m.focus == focusCart && i == m.lineSel), l.Name, l.UnitPrice, l.Quantity, l.Subtotal)
		}
		fmt.Fprintf(b, "   Total: $%s\n", v.Total)
	}

	fmt.Fprintln(b, "")
	fmt.Fprintln(b, section("Checkout", m.focus == focusForm))
	for i, label := range fieldLabels {
		fmt.Fprintf(b, " %s %-8s %s\n", marker(m.focus == focusForm && i == m.fieldSel), label+":", m.fields[i])
	}

	fmt.Fprintln(b, "")
	for _, n := range m.notices {
		fmt.Fprintf(b, "! %s\n", n)
	}
	fmt.Fprintf(b, "Status: %s\n", m.status)
	fmt.Fprintln(b, "\nControls: tab switch panel, up/down select, enter add/submit, +/- quantity, x remove, ctrl+c quit")
	return b.String()
}

func section(title string, active bool) string {
	if active {
		return "[" + title + "]"
	}
	return " " + title
}

func marker(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// noticeBuffer collects the notices of one attempt off the Update loop.
type noticeBuffer struct {
	list []string
}

func (n *noticeBuffer) Warn(msg string)    { n.list = append(n.list, msg) }
func (n *noticeBuffer) Confirm(msg string) { n.list = append(n.list, msg) }
func (n *noticeBuffer) Error(msg string)   { n.list = append(n.list, msg) }

// formFlag notes that the pipeline asked for the form to be cleared.
type formFlag struct {
	reset bool
}

func (f *formFlag) Reset() { f.reset = true }
