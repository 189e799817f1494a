package assemble

import (
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/ctxprep/internal/collect"
)

const fileDivider = "============================================================"

// composeDocument renders the full markdown document in the fixed
// section order. It is pure: same inputs, same bytes.
func composeDocument(root string, now time.Time, treeText string, dumps []resolvedDump, files []collect.Result, generalNotes []string) string {
	var sb strings.Builder

	included := 0
	for _, f := range files {
		if !f.Skipped {
			included++
		}
	}

	// (1) Header.
	sb.WriteString("# LLM Context Document\n")
	fmt.Fprintf(&sb, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Project Root: %s\n\n", root)

	sb.WriteString("## Summary\n")
	fmt.Fprintf(&sb, "- Files in focus: %d (of %d requested)\n", included, len(files))
	fmt.Fprintf(&sb, "- Context dumps: %d\n", len(dumps))
	fmt.Fprintf(&sb, "- General notes: %d\n\n", len(generalNotes))

	if len(files) > 0 {
		sb.WriteString("## Files in Focus\n\n")
		sb.WriteString("| File | Note |\n")
		sb.WriteString("|------|------|\n")
		for _, f := range files {
			note := f.Ref.Note
			if note == "" {
				note = "-"
			}
			fmt.Fprintf(&sb, "| `%s` | %s |\n", f.RelPath, note)
		}
		sb.WriteString("\n")
	}

	// (2) Directory tree.
	sb.WriteString("## Project Structure\n")
	sb.WriteString("```\n")
	sb.WriteString(treeText)
	sb.WriteString("```\n\n")

	// (3) Context dumps, request order, verbatim.
	if len(dumps) > 0 {
		sb.WriteString("## Context & Analysis Documents\n\n")
		for _, d := range dumps {
			fmt.Fprintf(&sb, "### 📄 %s\n\n", d.Title)
			sb.WriteString(d.Content)
			sb.WriteString("\n\n---\n\n")
		}
	}

	// (4) File contents, request order.
	if len(files) > 0 {
		sb.WriteString("## File Contents\n\n")
		for _, f := range files {
			writeFileSection(&sb, f)
		}
	}

	// General notes.
	if len(generalNotes) > 0 {
		sb.WriteString("## General Context & Notes\n\n")
		for i, note := range generalNotes {
			fmt.Fprintf(&sb, "**Note %d:**\n\n%s\n\n", i+1, note)
		}
	}

	// Footer.
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "*Document generated by ctxprep on %s*\n", now.Format("2006-01-02 15:04:05"))

	return sb.String()
}

// writeFileSection renders one file: heading, optional note, and
// line-numbered content — or the omission marker for skipped files.
func writeFileSection(sb *strings.Builder, f collect.Result) {
	fmt.Fprintf(sb, "### File: %s [IN FOCUS]\n", f.RelPath)
	if f.Ref.Note != "" {
		fmt.Fprintf(sb, "**Note:** %s\n", f.Ref.Note)
	}
	sb.WriteString(fileDivider)
	sb.WriteString("\n")

	if f.Skipped {
		fmt.Fprintf(sb, "_Omitted: %s_\n\n", f.SkipReason)
		return
	}

	sb.WriteString(numberLines(f.Content))
	sb.WriteString("\n")
}

// numberLines prefixes every line with its 1-based number.
func numberLines(content string) string {
	lines := strings.Split(content, "\n")
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "%4d| %s\n", i+1, line)
	}
	return sb.String()
}
