package speech

import (
	"fmt"
	"os/exec"
	"strconv"
)

// Say speaks through the macOS `say` command.
type Say struct {
	// Command defaults to "say".
	Command string
}

// Speak blocks until the text has been spoken. An empty voice uses the
// system default voice.
func (s Say) Speak(text, voice string, speed int) error {
	name := s.Command
	if name == "" {
		name = "say"
	}

	var args []string
	if voice != "" {
		args = append(args, "-v", voice)
	}
	if speed > 0 {
		args = append(args, "-r", strconv.Itoa(speed))
	}
	args = append(args, "--", text)

	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %s: %w (%s)", name, err, out)
	}
	return nil
}

// Mute discards every request.
type Mute struct{}

// Speak does nothing.
func (Mute) Speak(string, string, int) error { return nil }
