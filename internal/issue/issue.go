// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int

const (
	PlanNotFoundId Id = iota + 1
	PlanParseErrorId
	ShellNotConfiguredId
	ContainerEngineNotFoundId
	ImageBuildFailedId
	LaunchFailedId
	ConfigLoadFailedId
	MissionsFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

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

// Render renders the entry with the named glamour style ("auto", "dark",
// "light").
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	planNotFoundIssue = &Issue{
		id: PlanNotFoundId,
		mdMsg: `
# No plan file found!

ops looks for a plan in the current directory, in this order:
1. Ops.yaml
2. Ops.yml
3. Ops.toml
4. cio.yaml

## Things you can try:
- Run ops from the project root
- Point at a plan explicitly:
~~~
$ ops --file deploy/Ops.yaml execute
~~~

## Minimal plan:
~~~yaml
missions:
  test:
    image: golang:1.25
    script: go test ./...
~~~`,
	}

	planParseErrorIssue = &Issue{
		id: PlanParseErrorId,
		mdMsg: `
# The plan file is invalid!

Every mission needs a ` + "`script`" + ` and exactly one image source:
` + "`image`" + `, ` + "`build`" + ` or ` + "`recipe`" + `.

## Things you can try:
- Check the path printed above the message
- Volumes are written ` + "`host:container`" + `
- Environment entries are written ` + "`KEY=VALUE`" + `
- Run the validator for lint warnings:
~~~
$ ops validate
~~~`,
	}

	shellNotConfiguredIssue = &Issue{
		id: ShellNotConfiguredId,
		mdMsg: `
# No shell defined!

` + "`ops shell`" + ` needs a top-level ` + "`shell`" + ` entry in the plan.

~~~yaml
shell:
  image: alpine:3
  forward_user: true
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# No container engine available!

ops runs every mission through the Docker or Podman CLI and neither
answered a version query.

## Things you can try:
- Install Docker or Podman and make sure it is on your PATH
- Start the daemon (` + "`systemctl start docker`" + `)
- Select the engine explicitly:
~~~
$ ops --engine podman execute
~~~`,
	}

	imageBuildFailedIssue = &Issue{
		id: ImageBuildFailedId,
		mdMsg: `
# Image build failed!

A mission declared ` + "`build`" + ` or ` + "`recipe`" + ` and the engine could not
produce an image. The build output is printed above.

## Things you can try:
- Build the same context by hand:
~~~
$ docker build <context>
~~~
- Build contexts are resolved against the current directory`,
	}

	launchFailedIssue = &Issue{
		id: LaunchFailedId,
		mdMsg: `
# The container could not be started!

The engine binary could not be spawned or its standard input was not
available.

## Things you can try:
- Run with ` + "`--verbose`" + ` to see the exact engine command line
- Check that the engine binary is executable`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Print the config file location:
~~~
$ ops config path
~~~
- Check for OPS_* environment variables with unexpected values

## Example configuration:
~~~cue
container_engine: "podman"
ui: verbose: true
~~~`,
	}

	missionsFailedIssue = &Issue{
		id: MissionsFailedId,
		mdMsg: `
# Some missions have failed!

Every mission was attempted. The names of the failing ones are listed
above; their output was streamed as they ran.

## Things you can try:
- Rerun only the failing mission:
~~~
$ ops execute <name>
~~~
- Open a shell in the same environment with ` + "`ops shell`",
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The engine refused the request, usually because the daemon socket is not
accessible to your user.

## Things you can try:
- Add yourself to the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~
- Use rootless Podman
- Point ` + "`daemon_socket`" + ` at a socket you own`,
	}

	issues = map[Id]*Issue{
		planNotFoundIssue.Id():            planNotFoundIssue,
		planParseErrorIssue.Id():          planParseErrorIssue,
		shellNotConfiguredIssue.Id():      shellNotConfiguredIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		imageBuildFailedIssue.Id():        imageBuildFailedIssue,
		launchFailedIssue.Id():            launchFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		missionsFailedIssue.Id():          missionsFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// For returns the catalog entry attached to the outermost ActionableError
// in err's chain that names one, or nil.
func For(err error) *Issue {
	for err != nil {
		var ae *ActionableError
		if !errors.As(err, &ae) {
			return nil
		}
		if ae.Issue != 0 {
			return Get(ae.Issue)
		}
		err = ae.Cause
	}
	return nil
}
