package shell

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/smileynet/phonebook/internal/contact"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Row is a contact paired with its 1-based record number.
type Row struct {
	Number  int
	Contact contact.Contact
}

// RenderTable renders rows as a bordered table with a leading number column.
func RenderTable(rows []Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"#"}, contact.Labels()...)...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		t.Row(append([]string{strconv.Itoa(r.Number)}, r.Contact.Values()...)...)
	}
	return t.String()
}
