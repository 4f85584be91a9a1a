package main

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// unifiedDiff renders a line-based unified diff of before and after. It
// returns "" when the texts are equal.
func unifiedDiff(name, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			all = append(all, diffLine{op: d.Type, text: text})
		}
	}

	// oldAt[i] and newAt[i] are the 1-based line numbers all[i] starts at.
	oldAt := make([]int, len(all)+1)
	newAt := make([]int, len(all)+1)
	oldAt[0], newAt[0] = 1, 1
	for i, line := range all {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if line.op != diffmatchpatch.DiffInsert {
			oldAt[i+1]++
		}
		if line.op != diffmatchpatch.DiffDelete {
			newAt[i+1]++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s (merged)\n", name, name)
	for i := 0; i < len(all); {
		if all[i].op == diffmatchpatch.DiffEqual {
			i++
			continue
		}
		start := max(0, i-diffContext)
		end := hunkEnd(all, i)
		writeHunk(&sb, all[start:end], oldAt[start], newAt[start])
		i = end
	}
	return sb.String()
}

// hunkEnd returns the exclusive end of the hunk whose first change is at i.
// Changes separated by at most twice the context share a hunk.
func hunkEnd(all []diffLine, i int) int {
	end := i
	for end < len(all) {
		if all[end].op != diffmatchpatch.DiffEqual {
			end++
			continue
		}
		run := end
		for run < len(all) && all[run].op == diffmatchpatch.DiffEqual {
			run++
		}
		if run == len(all) || run-end > 2*diffContext {
			return min(end+diffContext, len(all))
		}
		end = run
	}
	return end
}

func writeHunk(sb *strings.Builder, lines []diffLine, oldStart, newStart int) {
	var oldCount, newCount int
	for _, line := range lines {
		if line.op != diffmatchpatch.DiffInsert {
			oldCount++
		}
		if line.op != diffmatchpatch.DiffDelete {
			newCount++
		}
	}
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}
	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, line := range lines {
		prefix := " "
		switch line.op {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		sb.WriteString(prefix + line.text + "\n")
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
