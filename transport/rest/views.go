package rest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/rocketscienceinc/tictactoe-replay/internal/render"
)

const (
	gameElementID = "game"
	htmxScript    = "https://unpkg.com/htmx.org@1.9.12"
)

const pageStyle = `body{font:14px sans-serif;margin:20px}
.game{display:flex;gap:24px}
.board-row{display:flex}
.square{width:40px;height:40px;font-size:22px;font-weight:bold;margin:-1px -1px 0 0;border:1px solid #999;background:#fff}
.square.winner{background:#ffe08a}
.next.winner{font-weight:bold}
.move{background:none;border:none;color:#06c;cursor:pointer;padding:0}
.move.current{font-weight:bold}
form{display:inline;margin:0}`

// htmxForm renders a form that works as a plain POST and is swapped in place by htmx.
func htmxForm(action, trigger string) string {
	attrs := fmt.Sprintf(`method="post" action="%[1]s" hx-post="%[1]s" hx-target="#%[2]s" hx-swap="outerHTML"`,
		templ.EscapeString(action), gameElementID)
	if trigger != "" {
		attrs += fmt.Sprintf(` hx-trigger="%s"`, templ.EscapeString(trigger))
	}

	return "<form " + attrs + ">"
}

func squareView(cell render.Cell) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := "square"
		if cell.Winning {
			class += " winner"
		}

		_, err := io.WriteString(w, htmxForm("/game/cells/"+strconv.Itoa(cell.Index), "")+
			`<button type="submit" class="`+class+`" data-cell="`+strconv.Itoa(cell.Index)+`">`+
			templ.EscapeString(cell.Value)+`</button></form>`)

		return err
	})
}

func boardView(rows [3][3]render.Cell) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, row := range rows {
			if _, err := io.WriteString(w, `<div class="board-row">`); err != nil {
				return err
			}

			for _, cell := range row {
				if err := squareView(cell).Render(ctx, w); err != nil {
					return err
				}
			}

			if _, err := io.WriteString(w, `</div>`); err != nil {
				return err
			}
		}

		return nil
	})
}

func movesView(moves []render.MoveItem, ascending bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var sb strings.Builder

		sb.WriteString(htmxForm("/game/order", "change"))
		sb.WriteString(`<label><input type="checkbox" name="ascending" value="true"`)
		if ascending {
			sb.WriteString(` checked`)
		}
		sb.WriteString(`> Show moves ascending</label><noscript><button type="submit">Apply</button></noscript></form>`)

		if ascending {
			sb.WriteString(`<ol start="0">`)
		} else {
			sb.WriteString(`<ol reversed start="` + strconv.Itoa(len(moves)-1) + `">`)
		}

		for _, move := range moves {
			class := "move"
			if move.Current {
				class += " current"
			}

			sb.WriteString(`<li>`)
			sb.WriteString(htmxForm("/game/steps/"+strconv.Itoa(move.Step), ""))
			sb.WriteString(`<button type="submit" class="` + class + `">` + templ.EscapeString(move.Label) + `</button></form>`)
			sb.WriteString(`</li>`)
		}

		sb.WriteString(`</ol>`)

		_, err := io.WriteString(w, sb.String())

		return err
	})
}

func statusView(status render.StatusLine) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		class := "next"
		if status.Winner {
			class += " winner"
		}

		_, err := io.WriteString(w, `<div class="`+class+`">`+templ.EscapeString(status.Text)+`</div>`)

		return err
	})
}

// gameView is the fragment swapped by htmx after every interaction.
func gameView(view render.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="`+gameElementID+`" class="game">`); err != nil {
			return err
		}

		parts := []struct {
			open      string
			component templ.Component
		}{
			{open: `<div class="game-status">`, component: statusView(view.Status)},
			{open: `<div class="game-board">`, component: boardView(view.Rows)},
			{open: `<div class="game-info">`, component: movesView(view.Moves, view.Ascending)},
		}

		for _, part := range parts {
			if _, err := io.WriteString(w, part.open); err != nil {
				return err
			}

			if err := part.component.Render(ctx, w); err != nil {
				return err
			}

			if _, err := io.WriteString(w, `</div>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div>`)

		return err
	})
}

func pageView(view render.View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Tic Tac Toe</title>` +
			`<script src="` + htmxScript + `"></script><style>` + pageStyle + `</style></head>` +
			`<body><h1>Play Tic Tac Toe</h1>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}

		if err := gameView(view).Render(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</body></html>`)

		return err
	})
}
