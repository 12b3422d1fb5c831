// internal/writer/builder.go
package writer

import (
	"io"

	cfg "github.com/tamzrod/basedctl/internal/config"
)

// Build assembles the writers an info run is delivered to: the console
// always, the metrics textfile when configured.
func Build(m cfg.MetricsConfig, out io.Writer) Writer {
	ws := multi{NewConsole(out)}
	if m.Textfile != "" {
		ws = append(ws, NewTextfile(m.Textfile))
	}
	return ws
}
