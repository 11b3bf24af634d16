package deployment

import (
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var prLink = regexp.MustCompile(`.*\(#(?P<pr_number>[0-9]+)\)$`)

// UpdatePRLinks turns a trailing "(#12)" into "(<repo>#12)" so the link
// resolves from another repository.
func UpdatePRLinks(repo string, notes []string) []string {
	return lo.Map(notes, func(note string, _ int) string {
		m := prLink.FindStringSubmatch(note)
		if m == nil {
			return note
		}

		internal := "#" + m[prLink.SubexpIndex("pr_number")]

		return strings.ReplaceAll(note, internal, repo+internal)
	})
}

// Comment is the content of a deployment changes comment for one file.
type Comment struct {
	ServicesOnBranch  []string
	Downgraded        []string
	DeploymentChanges map[string][]string
	BreakingChanges   map[string][]string
}

// GenerateComment renders c as markdown. An empty comment renders as "".
func GenerateComment(c Comment) string {
	var b strings.Builder

	if len(c.ServicesOnBranch) > 0 {
		b.WriteString("## :warning: Services on branch\n- " + strings.Join(c.ServicesOnBranch, "\n- ") + "\n")
	}

	if len(c.Downgraded) > 0 {
		b.WriteString("## :warning: Services are being downgraded\n- " + strings.Join(c.Downgraded, "\n- ") + "\n")
	}

	writeNotes(&b, "## Deployment changes\n", c.DeploymentChanges)
	writeNotes(&b, "## Breaking changes\n", c.BreakingChanges)

	return b.String()
}

func writeNotes(b *strings.Builder, header string, notes map[string][]string) {
	if len(notes) == 0 {
		return
	}

	b.WriteString(header)

	services := lo.Keys(notes)
	slices.Sort(services)

	for _, svc := range services {
		b.WriteString("- " + svc + "\n  - " + strings.Join(notes[svc], "\n  - ") + "\n")
	}
}
