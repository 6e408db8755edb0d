package digest

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var previewHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("6"))

// PrintPreview writes the digest to stdout for the operator. The caller is
// responsible for masking private identities first. The header is styled
// only when stdout is a terminal so CI logs stay plain.
func PrintPreview(message string) {
	header := "--- Message ---"
	if isatty.IsTerminal(os.Stdout.Fd()) {
		header = previewHeaderStyle.Render(header)
	}
	fmt.Println(header)
	fmt.Println(message)
}
