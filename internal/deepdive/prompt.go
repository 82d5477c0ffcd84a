package deepdive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quillco/fathom/pkg/models"
	"github.com/quillco/fathom/pkg/parser"
)

const systemPrompt = "You are a senior staff software engineer and code analyst. " +
	"Write clear, deeply technical, and precise explanations."

// buildPrompt assembles the system and user prompts for one group. Member
// snippets are packed largest-first until the character budget is reached;
// members that would overflow it are listed in the relationship lines but
// not quoted.
func buildPrompt(relPath string, lang parser.Language, imports []string, group models.Group, targetWords, snippetBudget int) (string, string) {
	snippets := packSnippets(group.Members, snippetBudget)

	var b strings.Builder

	fmt.Fprintf(&b, "Analyze the following %s code from a single repository: **%s**.\n\n", lang, relPath)

	if len(imports) > 0 {
		sorted := append([]string(nil), imports...)
		sort.Strings(sorted)
		fmt.Fprintf(&b, "Imports detected: %s\n", strings.Join(sorted, ", "))
	}

	b.WriteString("\nFunction relationships (per this file / group):\n")
	for _, m := range group.Members {
		fmt.Fprintf(&b, "- %s: calls [%s]; called by [%s]\n",
			m.Name, nameList(m.Calls), nameList(m.CalledBy))
	}

	fmt.Fprintf(&b, `
Your task:
- Produce a ~%d word **Markdown** report for this group of related functions.
- Explain what each function does, parameters, return values, side effects, state & I/O, and error handling.
- Explain how the functions interact and the overall data/control flow.
- Identify edge cases, failure modes, race conditions, security issues (authz, injection, CSRF, XSS), and performance risks.
- Suggest concrete refactors, improved abstractions, and unit/integration tests.
- If the functions touch HTTP handlers, document the endpoints, request/response schema and status codes.
- If the code uses databases, describe schema assumptions and transactional considerations.
- Provide a short example (pseudo-code) showing the typical execution path across these functions.

Provide an honest technical critique; if something is unclear or risky, say so and propose fixes.

### Code Snippets
`, targetWords)

	for _, m := range snippets {
		fmt.Fprintf(&b, "\n#### Function `%s`\n```%s\n%s\n```\n", m.Name, lang, m.Source)
	}

	return systemPrompt, strings.TrimSpace(b.String())
}

// packSnippets selects members largest-first until the budget is spent.
// A member whose source would overflow the budget is skipped, not
// truncated, so every quoted snippet stays syntactically whole.
func packSnippets(members []models.Member, budget int) []models.Member {
	bySize := append([]models.Member(nil), members...)
	sort.SliceStable(bySize, func(i, j int) bool {
		if len(bySize[i].Source) != len(bySize[j].Source) {
			return len(bySize[i].Source) > len(bySize[j].Source)
		}
		return bySize[i].Name < bySize[j].Name
	})

	var packed []models.Member
	used := 0
	for _, m := range bySize {
		if used+len(m.Source) > budget {
			continue
		}
		packed = append(packed, m)
		used += len(m.Source)
	}
	return packed
}

func nameList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
