// Package terminal renders drill prompts on an ANSI terminal and reads
// answers line by line.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

const clearScreen = "\033[H\033[2J"

// LineReader reads one line of input after showing a prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Console is a session.Presenter for an interactive terminal.
type Console struct {
	out   io.Writer
	in    LineReader
	clear bool

	word    *color.Color
	hint    *color.Color
	good    *color.Color
	bad     *color.Color
	target  *color.Color
	base    *color.Color
	prompt  *color.Color
	heading *color.Color
}

// NewConsole creates a Console writing to out and reading from in.
// clear controls whether the screen is cleared before every prompt.
func NewConsole(out io.Writer, in LineReader, clear bool) *Console {
	return &Console{
		out:     out,
		in:      in,
		clear:   clear,
		word:    color.New(color.FgCyan),
		hint:    color.New(color.Faint),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
		target:  color.New(color.FgYellow),
		base:    color.New(color.FgCyan),
		prompt:  color.New(color.FgBlue),
		heading: color.New(color.Bold),
	}
}

func (c *Console) clearScreen() {
	if c.clear {
		fmt.Fprint(c.out, clearScreen)
	}
}

// ShowWord clears the screen and shows the prompt word.
func (c *Console) ShowWord(word string) {
	c.clearScreen()
	c.word.Fprintln(c.out, word)
}

// ShowHint shows the masked target word.
func (c *Console) ShowHint(hint string) {
	c.hint.Fprintf(c.out, "Hint: %s\n", hint)
}

// ShowResult tells the learner whether the answer was right.
func (c *Console) ShowResult(correct bool, expected string) {
	fmt.Fprintln(c.out)
	if correct {
		c.good.Fprintln(c.out, "Your answer is correct!")
		return
	}
	c.bad.Fprintln(c.out, "Not correct!")
	fmt.Fprintf(c.out, "The correct answer is %s\n", c.good.Sprint(expected))
}

// ShowExamples shows the example sentence in both languages.
func (c *Console) ShowExamples(target, base string) {
	if target == "" && base == "" {
		return
	}
	fmt.Fprintln(c.out, "\nexample:")
	if target != "" {
		fmt.Fprintf(c.out, " - %s\n", c.target.Sprint(target))
	}
	if base != "" {
		fmt.Fprintf(c.out, " - %s\n", c.base.Sprint(base))
	}
}

// ReadAnswer reads one answer. End of input and interrupts give "".
func (c *Console) ReadAnswer() string {
	return c.read("Answer: ")
}

// Announce shows a message on a clear screen and waits for enter.
func (c *Console) Announce(text string) {
	c.clearScreen()
	c.heading.Fprintln(c.out, text)
	c.Continue()
}

// Continue waits for enter.
func (c *Console) Continue() {
	c.prompt.Fprintln(c.out, "\npress [enter] to continue...")
	c.read("")
}

func (c *Console) read(prompt string) string {
	line, err := c.in.ReadLine(prompt)
	if err != nil {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

// Readline is a LineReader backed by chzyer/readline.
type Readline struct {
	rl *readline.Instance
	// OnInterrupt, if set, runs when the learner presses Ctrl-C or Ctrl-D.
	OnInterrupt func()
}

// NewReadline opens the terminal for line editing.
func NewReadline() (*Readline, error) {
	rl, err := readline.NewEx(&readline.Config{
		DisableAutoSaveHistory: true,
		HistoryLimit:           -1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return &Readline{rl: rl}, nil
}

// ReadLine shows prompt and returns the entered line.
func (r *Readline) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		if r.OnInterrupt != nil {
			r.OnInterrupt()
		}
		return "", io.EOF
	}
	return line, err
}

// Stdout returns the writer that cooperates with the readline prompt.
func (r *Readline) Stdout() io.Writer {
	return r.rl.Stdout()
}

// Close restores the terminal.
func (r *Readline) Close() error {
	return r.rl.Close()
}
