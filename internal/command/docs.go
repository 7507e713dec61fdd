package command

import (
	"fmt"
	"strings"
)

// Docs renders the usage of every command under subject. An empty subject
// renders all subjects.
func (r *Registry) Docs(subject string) (string, error) {
	subjects := r.Subjects()
	if subject != "" {
		if _, ok := r.subjects[subject]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
		}
		subjects = []string{subject}
	}

	var sb strings.Builder
	for i, s := range subjects {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
		sb.WriteString("\n")
		for _, spec := range r.subjects[s] {
			fmt.Fprintf(&sb, "  %s %s\n", s, spec.Signature())
			for _, line := range strings.Split(strings.TrimSpace(spec.Doc), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					fmt.Fprintf(&sb, "      %s\n", line)
				}
			}
		}
	}
	return sb.String(), nil
}
