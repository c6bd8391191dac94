package tui

import (
	"fmt"
	"strings"

	"qteleport/internal/teleport"
)

// menuItem represents a single choice in the options menu.
type menuItem struct {
	name   string
	symbol string
	// apply changes the build options; selected reports whether the item
	// matches the current options.
	apply    func(o *teleport.Options)
	selected func(o teleport.Options) bool
}

// menuCategory groups related menu items under a tab.
type menuCategory struct {
	name  string
	items []menuItem
}

func bellItem(name string, s teleport.BellState) menuItem {
	return menuItem{
		name:     name,
		symbol:   s.String(),
		apply:    func(o *teleport.Options) { o.Bell = s },
		selected: func(o teleport.Options) bool { return o.Bell == s },
	}
}

func directionItem(name string, d teleport.Direction) menuItem {
	return menuItem{
		name:     name,
		symbol:   d.String(),
		apply:    func(o *teleport.Options) { o.Direction = d },
		selected: func(o teleport.Options) bool { return o.Direction == d },
	}
}

// optionsMenu defines the option categories and items.
var optionsMenu = []menuCategory{
	{
		name: "Bell State",
		items: []menuItem{
			bellItem("(|00⟩+|11⟩)/√2", teleport.PhiPlus),
			bellItem("(|01⟩+|10⟩)/√2", teleport.PsiPlus),
			bellItem("(|00⟩-|11⟩)/√2", teleport.PhiMinus),
			bellItem("(|01⟩-|10⟩)/√2", teleport.PsiMinus),
		},
	},
	{
		name: "Direction",
		items: []menuItem{
			directionItem("Synthesized CX", teleport.Synthesize),
			directionItem("Native CX", teleport.Native),
		},
	},
	{
		name: "Display",
		items: []menuItem{
			{
				name:     "Barriers",
				symbol:   "┃",
				apply:    func(o *teleport.Options) { o.Barriers = !o.Barriers },
				selected: func(o teleport.Options) bool { return o.Barriers },
			},
			{
				name:     "Hadamard basis",
				symbol:   "H·M",
				apply:    func(o *teleport.Options) { o.HadamardBasis = !o.HadamardBasis },
				selected: func(o teleport.Options) bool { return o.HadamardBasis },
			},
		},
	},
}

// renderMenu renders the floating options popup.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Options"))
	sb.WriteString("\n")

	// Category tabs
	for i, cat := range optionsMenu {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(optionsMenu)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 36)))
	sb.WriteString("\n")

	cat := optionsMenu[m.menuCat]
	for i, item := range cat.items {
		check := "  "
		if item.selected(m.opts) {
			check = "✓ "
		}
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ " + check))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   " + check)
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-18s", item.name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Ok  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
