package school

import (
	"fmt"
	"strings"
)

// TermMark is one term's result for a subject.
type TermMark struct {
	Term    string `yaml:"term" json:"term"`
	Percent int    `yaml:"percent" json:"percent"`
	Level   int    `yaml:"level" json:"level"`
}

// SubjectReport is a subject row on the report card.
type SubjectReport struct {
	Subject string     `yaml:"subject" json:"subject"`
	Terms   []TermMark `yaml:"terms" json:"terms"`
}

// ReportCard is the learner's term report.
type ReportCard struct {
	Learner         string          `yaml:"learner" json:"learner"`
	Subjects        []SubjectReport `yaml:"subjects" json:"subjects"`
	TeacherComments string          `yaml:"teacher_comments" json:"teacher_comments"`
}

// DefaultReportCard returns the built-in report card.
func DefaultReportCard() ReportCard {
	subjects := []string{
		"Life Sciences", "Maths", "Accounting",
		"Physical Sciences", "IsiXhosa", "English",
	}

	card := ReportCard{}
	for _, subj := range subjects {
		row := SubjectReport{Subject: subj}
		for term := 1; term <= 4; term++ {
			row.Terms = append(row.Terms, TermMark{
				Term:    fmt.Sprintf("Term %d", term),
				Percent: 85,
				Level:   7,
			})
		}
		card.Subjects = append(card.Subjects, row)
	}
	return card
}

// Markdown renders the report card as markdown for terminal display.
func (c ReportCard) Markdown() string {
	var b strings.Builder

	b.WriteString("# Report Card\n\n")
	if c.Learner != "" {
		fmt.Fprintf(&b, "**Learner:** %s\n\n", c.Learner)
	}

	if len(c.Subjects) > 0 {
		b.WriteString("| Subject |")
		for _, tm := range c.Subjects[0].Terms {
			fmt.Fprintf(&b, " %s |", tm.Term)
		}
		b.WriteString("\n|---|")
		for range c.Subjects[0].Terms {
			b.WriteString("---|")
		}
		b.WriteString("\n")

		for _, row := range c.Subjects {
			fmt.Fprintf(&b, "| %s |", row.Subject)
			for _, tm := range row.Terms {
				fmt.Fprintf(&b, " %d%% (Level %d) |", tm.Percent, tm.Level)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("**Teacher Comments:**\n\n")
	if c.TeacherComments != "" {
		b.WriteString(c.TeacherComments + "\n\n")
	} else {
		b.WriteString("_None._\n\n")
	}
	b.WriteString("**Principal Signature:** _____________________\n")

	return b.String()
}
