// Package components collects small, reusable Node builders: a Props
// struct in, a vdom.Node out.
package components

import "strings"

// joinClasses joins non-empty class names with a single space.
func joinClasses(classes ...string) string {
	nonEmpty := classes[:0]
	for _, c := range classes {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	return strings.Join(nonEmpty, " ")
}
