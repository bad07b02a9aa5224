package console

import (
	"fmt"
	"strings"

	"storefront-system/internal/cooldown"
	"storefront-system/internal/domain"
)

func (m Model) View() string {
	if m.admin {
		return m.viewAdmin()
	}
	return m.viewStorefront()
}

func (m Model) viewStorefront() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "Storefront")
	fmt.Fprintln(b, "")

	fmt.Fprintf(b, " %s Username: %s\n", marker(m.focus == focusIdentity), m.identity)
	fmt.Fprintf(b, " %s Quantity: %s\n", marker(m.focus == focusQuantity), m.quantity)
	fmt.Fprintln(b, "")

	categories := m.svc.Categories()
	fmt.Fprintln(b, "Categories (up/down):")
	for i, c := range categories {
		fmt.Fprintf(b, " %s %s\n", marker(i == m.catIdx), c)
	}
	fmt.Fprintln(b, "")

	if m.catIdx < len(categories) {
		items := m.svc.Items(categories[m.catIdx])
		fmt.Fprintln(b, "Items (left/right):")
		for i, it := range items {
			fmt.Fprintf(b, " %s %s - $%d\n", marker(i == m.itemIdx), it.Name, it.UnitPrice)
		}
		fmt.Fprintln(b, "")
	}

	cart := m.svc.Cart(m.identity)
	if len(cart.Lines) == 0 {
		fmt.Fprintln(b, "Your cart is empty")
	} else {
		fmt.Fprintln(b, "Cart:")
		for _, l := range cart.Lines {
			fmt.Fprintf(b, "   %s x%d  $%d\n", l.Name, l.Quantity, l.LineTotal)
		}
		fmt.Fprintf(b, " Total: $%d\n", cart.Total)
	}
	fmt.Fprintln(b, "")

	if m.remaining > 0 {
		fmt.Fprintf(b, "Next order available in %s\n", cooldown.Format(m.remaining))
	}
	fmt.Fprintf(b, "Status: %s\n", m.status)
	fmt.Fprintln(b, "\nControls: tab switch field, +/- add/remove item, enter place order, ctrl+c quit")
	return b.String()
}

func (m Model) viewAdmin() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "Order Board (admin)")
	fmt.Fprintln(b, "")
	fmt.Fprintf(b, " Search: %s\n", m.search)

	if notice := m.board.Notice(); notice != "" {
		fmt.Fprintf(b, " !! %s\n", notice)
	}
	fmt.Fprintln(b, "")

	v := m.board.View(m.search)
	if v.Empty {
		for _, title := range []string{"Pending", "On Hold", "Completed"} {
			fmt.Fprintf(b, "%s:\n   No orders found\n", title)
		}
	} else {
		idx := 0
		m.renderBucket(b, "Pending", v.Pending, &idx)
		m.renderBucket(b, "On Hold", v.OnHold, &idx)
		m.renderBucket(b, "Completed", v.Completed, &idx)
	}
	fmt.Fprintln(b, "")

	if m.confirmDelete {
		fmt.Fprintln(b, "Permanently delete this order? press y to confirm")
	}
	fmt.Fprintln(b, "Controls: type to search, up/down select, s cycle status, d delete, esc back")
	return b.String()
}

func (m Model) renderBucket(b *strings.Builder, title string, orders []domain.Order, idx *int) {
	fmt.Fprintf(b, "%s:\n", title)
	if len(orders) == 0 {
		fmt.Fprintln(b, "   -")
	}
	for _, o := range orders {
		sel := marker(*idx == m.selected)
		fmt.Fprintf(b, " %s %s  $%d  %s  %s\n",
			sel, o.Identity, o.Total, o.CreatedAt.Format("2006-01-02 15:04"), o.Status)
		for _, l := range o.Items {
			fmt.Fprintf(b, "      %s x%d  $%d\n", l.Name, l.Quantity, l.LineTotal)
		}
		*idx++
	}
}

func marker(on bool) string {
	if on {
		return ">"
	}
	return " "
}
