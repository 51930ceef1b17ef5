// Package invitation reads the guest list from the plain-text invitation file.
//
// The file is a sequence of sections:
//
//	# Famiglia Rossi
//	Mario Rossi
//	Anna Rossi
//
//	# Testimoni
//	Luca Bianchi
//
// A "# " header naming a family (it mentions "famiglia", "genitori" or joins names
// with "&") starts a family; following names are its members until a blank line.
// Any other header collects individual guests. The "Sposi" section lists the couple
// and is skipped. "## " sub-headers are ignored.
package invitation

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// SkippedSection is the section listing the couple, who are not guests.
const SkippedSection = "Sposi"

// Family is a group of guests invited together.
type Family struct {
	Name    string
	Members []string
}

// List is the parsed content of an invitation file.
type List struct {
	Families    []Family
	Individuals []string
}

// GuestCount is the number of people on the list.
func (l *List) GuestCount() int {
	n := len(l.Individuals)
	for _, f := range l.Families {
		n += len(f.Members)
	}
	return n
}

// IsFamilySection reports whether a section header names a family.
func IsFamilySection(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "famiglia") ||
		strings.Contains(lower, "genitori") ||
		strings.Contains(name, "&")
}

// Parse reads an invitation file. A blank line closes a family once it has members;
// families without members are dropped.
func Parse(r io.Reader) (*List, error) {
	list := &List{}
	var current *Family
	skip := false

	closeFamily := func() {
		if current != nil && len(current.Members) > 0 {
			list.Families = append(list.Families, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			// A blank line right under a family header keeps the family open.
			if current != nil && len(current.Members) > 0 {
				closeFamily()
			}
			skip = false

		case strings.HasPrefix(line, "## "):

		case strings.HasPrefix(line, "# "):
			closeFamily()
			section := strings.TrimSpace(line[2:])
			skip = section == SkippedSection
			if !skip && IsFamilySection(section) {
				current = &Family{Name: section}
			}

		case skip:

		case current != nil:
			current.Members = append(current.Members, line)

		default:
			list.Individuals = append(list.Individuals, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading invitation: %w", err)
	}

	closeFamily()
	return list, nil
}
