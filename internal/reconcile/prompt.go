package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// AuthorAlias is the batch alias policy: the alias is the author name.
type AuthorAlias struct{}

func (AuthorAlias) ChooseAlias(author string) (string, error) { return author, nil }

// ApproveAll is the batch approval policy.
type ApproveAll struct{}

func (ApproveAll) Confirm(Review) (bool, error) { return true, nil }

// Prompter asks an operator on a terminal. It serves as both AliasChooser
// and Confirmer.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ChooseAlias asks for an alias. An empty answer keeps the author name.
func (p *Prompter) ChooseAlias(author string) (string, error) {
	alias, err := p.ask(fmt.Sprintf("New user %q. Enter alias (blank keeps the name): ", author))
	if err != nil {
		return "", err
	}
	if alias == "" {
		return author, nil
	}
	return alias, nil
}

// Confirm shows the submission and accepts only "y" or "yes".
func (p *Prompter) Confirm(r Review) (bool, error) {
	fmt.Fprintln(p.out, strings.Repeat("-", 30))
	newTag := ""
	if r.NewPlayer {
		newTag = " (NEW PLAYER)"
	}
	fmt.Fprintf(p.out, "REVIEWING: %s%s (User: %s)\n", r.Alias, newTag, r.Author)
	fmt.Fprintf(p.out, "MESSAGE: %s\n", r.Message)
	fmt.Fprintf(p.out, "COORDS: %v, %v\n", r.Coordinate.Lat, r.Coordinate.Lon)
	answer, err := p.ask("Approve? [y/n]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
