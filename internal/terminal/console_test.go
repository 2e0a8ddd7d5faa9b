package terminal

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// lines replays queued input, then reports end of input.
type lines struct {
	queue   []string
	prompts []string
}

func (l *lines) ReadLine(prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if len(l.queue) == 0 {
		return "", io.EOF
	}
	line := l.queue[0]
	l.queue = l.queue[1:]
	return line, nil
}

func init() {
	color.NoColor = true
}

func TestConsoleDrill(t *testing.T) {
	var out bytes.Buffer
	in := &lines{queue: []string{"hai\r\n", ""}}
	c := NewConsole(&out, in, false)

	c.ShowWord("hello")
	c.ShowHint("h**")
	answer := c.ReadAnswer()
	c.ShowResult(false, "hai!")
	c.ShowExamples("Hai, apa khabar?", "Hi, how are you?")
	c.Continue()

	if answer != "hai" {
		t.Errorf("Expected answer 'hai', but got %q", answer)
	}
	if got := strings.Join(in.prompts, "|"); got != "Answer: |" {
		t.Errorf("Unexpected prompts %q", got)
	}

	expected := "hello\n" +
		"Hint: h**\n" +
		"\nNot correct!\n" +
		"The correct answer is hai!\n" +
		"\nexample:\n - Hai, apa khabar?\n - Hi, how are you?\n" +
		"\npress [enter] to continue...\n"
	if out.String() != expected {
		t.Errorf("Expected output:\n%s\nbut got:\n%s", expected, out.String())
	}
}

func TestConsoleEndOfInput(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &lines{}, true)

	if answer := c.ReadAnswer(); answer != "" {
		t.Errorf("Expected an empty answer at end of input, but got %q", answer)
	}

	c.Announce("Today's practice: Batch 1")
	if !strings.HasPrefix(out.String(), clearScreen+"Today's practice: Batch 1\n") {
		t.Errorf("Expected the screen to be cleared before the announcement, got %q", out.String())
	}
}

func TestConsoleCorrectResult(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &lines{}, false)
	c.ShowResult(true, "hai")
	c.ShowExamples("", "")

	if expected := "\nYour answer is correct!\n"; out.String() != expected {
		t.Errorf("Expected %q, but got %q", expected, out.String())
	}
}
