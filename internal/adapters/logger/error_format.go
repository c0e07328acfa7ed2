package logger

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/rnws/internal/ui/style"
)

// messager is implemented by zerr errors: it returns the message of one
// link without the rest of the chain.
type messager interface {
	Message() string
}

type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens err into its chain. Joined errors contribute
// each of their branches in order. A link without a message (zerr.With on a
// plain error) lends its metadata to the next link.
func collectErrorEntries(err error) []ErrorEntry {
	var (
		entries []ErrorEntry
		carry   map[string]any
	)
	for err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, branch := range joined.Unwrap() {
				sub := collectErrorEntries(branch)
				if len(sub) > 0 && carry != nil {
					sub[0].Metadata = mergeMetadata(carry, sub[0].Metadata)
					carry = nil
				}
				entries = append(entries, sub...)
			}
			return entries
		}

		m, ok := err.(messager)
		if !ok {
			return append(entries, ErrorEntry{Message: err.Error(), Metadata: carry})
		}

		var md map[string]any
		if x, ok := err.(metadataer); ok {
			md = x.Metadata()
		}
		if m.Message() == "" {
			carry = mergeMetadata(carry, md)
		} else {
			entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: mergeMetadata(carry, md)})
			carry = nil
		}
		err = errors.Unwrap(err)
	}
	return entries
}

func mergeMetadata(a, b map[string]any) map[string]any {
	if len(a) == 0 {
		return b
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		out[k] = v
	}
	return out
}

// formatErrorEntries renders the chain as a headline followed by its causes.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		var first, rest string
		if i == 0 {
			first, rest = "Error: ", "       "
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			first, rest = "    "+style.Arrow+" ", "      "
		}

		lines = append(lines, first+msgLines[0])
		for _, l := range msgLines[1:] {
			lines = append(lines, rest+l)
		}

		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s%s: %v", rest, k, entry.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
