package validate

import (
	"fmt"
	"sort"

	"vnforge/internal/narrative"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeMissingScene        = "missing_scene"
	codeRouteMismatch       = "route_mismatch"
	codeDuplicateMembership = "duplicate_membership"
	codeOrphanedScene       = "orphaned_scene"
	codeDanglingChoice      = "dangling_choice"
	codeChoiceRouteLabel    = "choice_route_label"
	codeUnreachableScene    = "unreachable_scene"
	codeEmptyRoute          = "empty_route"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Route    string   `json:"route,omitempty"`
	Scene    string   `json:"scene,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue is an error rather than a warning.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// Run inspects the project graph. Errors are broken structural invariants,
// warnings are authoring mistakes that still play.
func Run(p *narrative.Project) (*Report, error) {
	if p == nil {
		return nil, fmt.Errorf("project is required")
	}

	issues := make([]Issue, 0)
	issues = append(issues, validateRouteMembership(p)...)
	issues = append(issues, validateOrphans(p)...)
	issues = append(issues, validateChoices(p)...)
	issues = append(issues, validateReachability(p)...)

	return &Report{Issues: issues}, nil
}

func validateRouteMembership(p *narrative.Project) []Issue {
	var issues []Issue
	placed := make(map[narrative.SceneID]narrative.RouteName)
	for _, route := range p.Routes {
		if len(route.Scenes) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeEmptyRoute,
				Message:  "route has no scenes",
				Route:    string(route.Name),
			})
		}
		for _, id := range route.Scenes {
			scene, ok := p.Scenes[id]
			if !ok || scene == nil {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeMissingScene,
					Message:  "route references a scene that does not exist",
					Route:    string(route.Name),
					Scene:    string(id),
				})
				continue
			}
			if other, dup := placed[id]; dup {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeDuplicateMembership,
					Message:  fmt.Sprintf("scene is also listed in route %s", other),
					Route:    string(route.Name),
					Scene:    string(id),
				})
				continue
			}
			placed[id] = route.Name
			if scene.Route != route.Name {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeRouteMismatch,
					Message:  fmt.Sprintf("scene records route %s", scene.Route),
					Route:    string(route.Name),
					Scene:    string(id),
				})
			}
		}
	}
	return issues
}

func validateOrphans(p *narrative.Project) []Issue {
	var issues []Issue
	member := make(map[narrative.SceneID]bool)
	for _, route := range p.Routes {
		for _, id := range route.Scenes {
			member[id] = true
		}
	}
	for _, id := range sortedSceneIDs(p) {
		if member[id] {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeOrphanedScene,
			Message:  "scene belongs to no route",
			Route:    string(p.Scenes[id].Route),
			Scene:    string(id),
		})
	}
	return issues
}

func validateChoices(p *narrative.Project) []Issue {
	var issues []Issue
	for _, id := range sortedSceneIDs(p) {
		scene := p.Scenes[id]
		for _, choice := range scene.Choices {
			if choice.TargetSceneID == "" {
				continue
			}
			target, ok := p.Scenes[choice.TargetSceneID]
			if !ok || target == nil {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeDanglingChoice,
					Message:  fmt.Sprintf("choice %q targets missing scene %s; selecting it ends the route", choice.Text, choice.TargetSceneID),
					Route:    string(scene.Route),
					Scene:    string(id),
				})
				continue
			}
			if choice.Route != "" && choice.Route != string(target.Route) {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeChoiceRouteLabel,
					Message:  fmt.Sprintf("choice %q is labelled %s but its target is in route %s", choice.Text, choice.Route, target.Route),
					Route:    string(scene.Route),
					Scene:    string(id),
				})
			}
		}
	}
	return issues
}

func validateReachability(p *narrative.Project) []Issue {
	reached := reachable(p)
	var issues []Issue
	for _, id := range sortedSceneIDs(p) {
		if reached[id] {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeUnreachableScene,
			Message:  "scene cannot be reached from the start of the story",
			Route:    string(p.Scenes[id].Route),
			Scene:    string(id),
		})
	}
	return issues
}

func sortedSceneIDs(p *narrative.Project) []narrative.SceneID {
	ids := make([]narrative.SceneID, 0, len(p.Scenes))
	for id, scene := range p.Scenes {
		if scene != nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
