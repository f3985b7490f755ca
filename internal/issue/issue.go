// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RegistryRootNotFoundId Id = iota + 1
	SinkConflictId
	NoAutoFixId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

// Issue is a catalog entry: rendered markdown guidance for a recurring
// failure mode, with documentation links.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render returns the issue's guidance rendered for the terminal.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	registryRootNotFoundIssue = &Issue{
		id: RegistryRootNotFoundId,
		mdMsg: `
# Registry root not found

The path given as the registry root does not exist or is not readable.

## Things you can try:
- Check the path for typos
- Pass the root explicitly:
~~~
$ regwalk paths ./units
~~~
- Configure a default root in your config file (search_path)`,
	}

	sinkConflictIssue = &Issue{
		id: SinkConflictId,
		mdMsg: `
# Sink strategy conflict

Two or more units contribute to the same sink with different merge
strategies. All contributions to one sink must agree.

## Things you can try:
- Set the same explicit strategy on every contribution
- Add a default rule for the sink key so unannotated contributions
  resolve consistently:
~~~cue
defaults: [{pattern: "system.*", strategy: "merge"}]
~~~`,
	}

	noAutoFixIssue = &Issue{
		id: NoAutoFixId,
		mdMsg: `
# No automatic fix available

Some broken references could not be resolved to a unique replacement.
A reference is left unresolved when zero or several current registry
paths share its final segment.

## Things you can try:
- Supply an explicit mapping for the renamed prefix:
~~~
$ regwalk migrate --rename old.prefix=new.prefix
~~~
- Fix the listed references manually, then re-run the detection`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The config file exists but failed CUE validation.

## Things you can try:
- Check the reported field against the expected schema
- Run with the defaults by moving the file aside:
~~~
$ mv ~/.config/regwalk/config.cue ~/.config/regwalk/config.cue.bak
~~~`,
	}

	issues = map[Id]*Issue{
		RegistryRootNotFoundId: registryRootNotFoundIssue,
		SinkConflictId:         sinkConflictIssue,
		NoAutoFixId:            noAutoFixIssue,
		ConfigLoadFailedId:     configLoadFailedIssue,
	}
)

// Lookup returns the catalog entry for id, or nil when unknown.
func Lookup(id Id) *Issue {
	return issues[id]
}

// Ids returns all catalog ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}
