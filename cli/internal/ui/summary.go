package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BioHazard786/diceroom/cli/internal/feed"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const summaryWidthMin = 32

// SessionSummaryView renders the end-of-session table.
func SessionSummaryView(t *feed.Tally) string {
	rolls := "-"
	if len(t.Rolls) > 0 {
		parts := make([]string, len(t.Rolls))
		for i, r := range t.Rolls {
			parts[i] = strconv.Itoa(r)
		}
		rolls = strings.Join(parts, ", ")
	}

	tw := table.NewWriter()
	tw.SetTitle(IconStats + " Session Summary")
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Player", t.Me},
		{"Rounds", t.Rounds},
		{"Wins", t.Wins},
		{"Losses", t.Losses},
		{"Ties", t.Ties},
		{"Rolls", rolls},
		{"Avg Roll", fmt.Sprintf("%.2f", t.AverageRoll())},
	})
	tw.SetStyle(table.StyleRounded)
	tw.Style().Title.Align = text.AlignCenter
	tw.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}
	// The title wraps at the table width, so keep the table wider than it.
	tw.Style().Size.WidthMin = summaryWidthMin
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 10},
		{Number: 2, Align: text.AlignRight, WidthMin: 16},
	})

	return tw.Render()
}

// RenderSessionSummary prints the end-of-session table.
func RenderSessionSummary(t *feed.Tally) {
	fmt.Println()
	fmt.Println(SessionSummaryView(t))
}

// WelcomeView is the banner shown once the player has a seat.
func WelcomeView(name, server string) string {
	content := fmt.Sprintf("%s Joined the dice room!\n\n%s Player:  %s\n%s Server:  %s",
		IconDice,
		IconPeer, BoldStyle.Foreground(Primary).Render(name),
		IconConnect, MutedStyle.Render(server),
	)
	return SuccessBoxStyle.Render(content)
}
