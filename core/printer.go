package core

import (
	"io"
	"log"
	"sync"

	"github.com/fatih/color"
)

// Printer writes colored, line-oriented status messages. It is safe for
// concurrent use.
type Printer struct {
	stdout io.Writer
	stderr io.Writer
	l      sync.Mutex
}

func NewPrinter(stdout, stderr io.Writer) *Printer {
	return &Printer{stdout: stdout, stderr: stderr}
}

func (p *Printer) writeString(w io.Writer, s string) {
	p.l.Lock()
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		log.Printf("ERROR writing status line: %v", err)
	}
	p.l.Unlock()
}

func (p *Printer) Success(format string, v ...interface{}) {
	p.writeString(p.stdout, color.GreenString(format, v...))
}

func (p *Printer) Error(format string, v ...interface{}) {
	p.writeString(p.stderr, color.RedString(format, v...))
}

func (p *Printer) Info(format string, v ...interface{}) {
	p.writeString(p.stdout, color.YellowString(format, v...))
}
