package validate

import "vnforge/internal/narrative"

// reachable walks the same edges the player can take from the first scene of
// the first route: linear fallthrough inside a route and choice targets.
func reachable(p *narrative.Project) map[narrative.SceneID]bool {
	seen := make(map[narrative.SceneID]bool)
	_, start, ok := p.FirstScene()
	if !ok {
		return seen
	}

	queue := []narrative.SceneID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		scene, ok := p.Scenes[id]
		if !ok || scene == nil {
			continue
		}
		seen[id] = true

		for _, choice := range scene.Choices {
			if choice.TargetSceneID != "" {
				queue = append(queue, choice.TargetSceneID)
			}
		}
		// a scene with choices never falls through
		if len(scene.Choices) == 0 {
			if next, ok := p.NextSceneID(scene.Route, id); ok {
				queue = append(queue, next)
			}
		}
	}
	return seen
}
