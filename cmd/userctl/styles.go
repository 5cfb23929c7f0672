package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/oksasatya/user-records/pkg/client"
)

var (
	primary  = lipgloss.Color("#FF00FF")
	accent   = lipgloss.Color("#00FFFF")
	success  = lipgloss.Color("#39FF14")
	errorCol = lipgloss.Color("#FF3131")
	muted    = lipgloss.Color("#888888")

	headerStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginLeft(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted)

	successStyle = lipgloss.NewStyle().
			Foreground(success).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorCol).
			PaddingLeft(2)

	keyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(10)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func renderUsers(users []client.User) string {
	if len(users) == 0 {
		return mutedStyle.PaddingLeft(2).Render("No users found.")
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Key(), u.Name, u.Email, u.ImageURL, u.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "NAME", "EMAIL", "IMAGE", "CREATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Foreground(accent).Bold(true)
			}
			return cellStyle
		})
	return headerStyle.Render("Users") + "\n" + t.Render()
}

func renderUser(title string, u client.User) string {
	var b strings.Builder
	b.WriteString(successStyle.Render(title))
	b.WriteByte('\n')
	for _, kv := range [][2]string{
		{"id", u.Key()},
		{"name", u.Name},
		{"email", u.Email},
		{"image", u.ImageURL},
	} {
		b.WriteString("  " + keyStyle.Render(kv[0]) + kv[1] + "\n")
	}
	return b.String()
}
