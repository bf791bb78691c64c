package templates

import (
	"embed"
	"html/template"
	"io"
)

//go:embed board.html
var files embed.FS

var board = template.Must(template.ParseFS(files, "board.html"))

var commit = "dev"

// SetCommit records the build revision shown in the page footer.
func SetCommit(c string) { commit = c }

// WriteBoardHTML renders the board page. socketPath is the websocket endpoint
// the page connects to.
func WriteBoardHTML(w io.Writer, socketPath string) error {
	return board.ExecuteTemplate(w, "board", struct {
		Commit     string
		SocketPath string
	}{Commit: commit, SocketPath: socketPath})
}
