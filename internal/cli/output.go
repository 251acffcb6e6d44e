package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/usersvc/usersvc/internal/handler/dto"
)

func renderTable(w io.Writer, headers table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(headers)
	t.AppendRows(rows)
	t.Render()
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderUsers(w io.Writer, format string, users []dto.UserResponse) error {
	if format == OutputJSON {
		return renderJSON(w, users)
	}

	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{u.ID, u.Username, u.Email, u.CreatedAt.UTC().Format(time.RFC3339)})
	}
	renderTable(w, table.Row{"ID", "Username", "Email", "Created"}, rows)
	return nil
}
