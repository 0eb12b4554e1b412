package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"vnforge/internal/errs"
)

// NewProject returns a project holding the default route with one scene.
func NewProject() *Project {
	p := &Project{Scenes: make(map[SceneID]*Scene)}
	// cannot fail: the route name is valid and unused
	_, _ = p.CreateScene(DefaultRoute)
	return p
}

// Decode parses persisted project data and checks its invariants.
func Decode(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decoding project: %v", errs.ErrCorruptState, err)
	}
	p.normalize()
	if err := p.Check(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Project) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	return data, nil
}

func (p *Project) normalize() {
	if p.Scenes == nil {
		p.Scenes = make(map[SceneID]*Scene)
	}
	if p.Routes == nil {
		p.Routes = []Route{}
	}
	for i := range p.Routes {
		if p.Routes[i].Scenes == nil {
			p.Routes[i].Scenes = []SceneID{}
		}
	}
	for _, scene := range p.Scenes {
		if scene == nil {
			continue
		}
		if scene.Dialogues == nil {
			scene.Dialogues = []DialogueLine{}
		}
		if scene.Choices == nil {
			scene.Choices = []Choice{}
		}
		if scene.Instances == nil {
			scene.Instances = []CharacterInstance{}
		}
	}
}

// Check verifies the structural invariants: route names are unique and
// non-empty, every referenced scene exists, and every scene sits in exactly
// one route slot, the one named by its Route field.
func (p *Project) Check() error {
	seenRoutes := make(map[RouteName]struct{}, len(p.Routes))
	placed := make(map[SceneID]RouteName, len(p.Scenes))
	for _, route := range p.Routes {
		if strings.TrimSpace(string(route.Name)) == "" {
			return fmt.Errorf("%w: route with empty name", errs.ErrCorruptState)
		}
		if _, dup := seenRoutes[route.Name]; dup {
			return fmt.Errorf("%w: duplicate route %q", errs.ErrCorruptState, route.Name)
		}
		seenRoutes[route.Name] = struct{}{}

		for _, id := range route.Scenes {
			scene, ok := p.Scenes[id]
			if !ok || scene == nil {
				return fmt.Errorf("%w: route %q references unknown scene %q", errs.ErrCorruptState, route.Name, id)
			}
			if other, dup := placed[id]; dup {
				return fmt.Errorf("%w: scene %q appears in routes %q and %q", errs.ErrCorruptState, id, other, route.Name)
			}
			placed[id] = route.Name
			if scene.Route != route.Name {
				return fmt.Errorf("%w: scene %q records route %q but sits in %q", errs.ErrCorruptState, id, scene.Route, route.Name)
			}
		}
	}
	for id, scene := range p.Scenes {
		if scene == nil || scene.ID != id {
			return fmt.Errorf("%w: scene key %q does not match its id", errs.ErrCorruptState, id)
		}
		if _, ok := placed[id]; !ok {
			return fmt.Errorf("%w: scene %q belongs to no route", errs.ErrCorruptState, id)
		}
	}
	return nil
}

// Clone returns a deep structural copy of the project.
func (p *Project) Clone() *Project {
	out := &Project{
		Routes: make([]Route, len(p.Routes)),
		Scenes: make(map[SceneID]*Scene, len(p.Scenes)),
	}
	for i, route := range p.Routes {
		out.Routes[i] = Route{Name: route.Name, Scenes: append([]SceneID{}, route.Scenes...)}
	}
	for id, scene := range p.Scenes {
		out.Scenes[id] = scene.clone()
	}
	return out
}

func (p *Project) routeIndex(name RouteName) int {
	for i, route := range p.Routes {
		if route.Name == name {
			return i
		}
	}
	return -1
}

// Route returns a copy of the named route.
func (p *Project) Route(name RouteName) (Route, bool) {
	i := p.routeIndex(name)
	if i < 0 {
		return Route{}, false
	}
	route := p.Routes[i]
	return Route{Name: route.Name, Scenes: append([]SceneID{}, route.Scenes...)}, true
}

func (p *Project) RouteNames() []RouteName {
	names := make([]RouteName, 0, len(p.Routes))
	for _, route := range p.Routes {
		names = append(names, route.Name)
	}
	return names
}

func (p *Project) Scene(id SceneID) (*Scene, error) {
	scene, ok := p.Scenes[id]
	if !ok || scene == nil {
		return nil, fmt.Errorf("%w: scene %q", errs.ErrNotFound, id)
	}
	return scene, nil
}

// FirstScene returns the first scene of the first route.
func (p *Project) FirstScene() (RouteName, SceneID, bool) {
	if len(p.Routes) == 0 {
		return "", "", false
	}
	route := p.Routes[0]
	if len(route.Scenes) == 0 {
		return route.Name, "", false
	}
	return route.Name, route.Scenes[0], true
}

// NextSceneID returns the scene that follows id inside route, by position.
func (p *Project) NextSceneID(route RouteName, id SceneID) (SceneID, bool) {
	i := p.routeIndex(route)
	if i < 0 {
		return "", false
	}
	scenes := p.Routes[i].Scenes
	for pos, sceneID := range scenes {
		if sceneID != id {
			continue
		}
		if pos+1 < len(scenes) {
			return scenes[pos+1], true
		}
		return "", false
	}
	return "", false
}

func (p *Project) CreateRoute(name RouteName) error {
	if strings.TrimSpace(string(name)) == "" {
		return fmt.Errorf("%w: route name is required", errs.ErrValidation)
	}
	if p.routeIndex(name) >= 0 {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateRoute, name)
	}
	p.Routes = append(p.Routes, Route{Name: name, Scenes: []SceneID{}})
	return nil
}

func (p *Project) ensureRoute(name RouteName) int {
	if i := p.routeIndex(name); i >= 0 {
		return i
	}
	p.Routes = append(p.Routes, Route{Name: name, Scenes: []SceneID{}})
	return len(p.Routes) - 1
}

// CreateScene appends a new scene titled "Cena n" to route, creating the
// route first when it does not exist.
func (p *Project) CreateScene(route RouteName) (*Scene, error) {
	if strings.TrimSpace(string(route)) == "" {
		return nil, fmt.Errorf("%w: route name is required", errs.ErrValidation)
	}
	if p.Scenes == nil {
		p.Scenes = make(map[SceneID]*Scene)
	}
	i := p.ensureRoute(route)
	scene := &Scene{
		ID:        SceneID(newID()),
		Title:     fmt.Sprintf("Cena %d", len(p.Routes[i].Scenes)+1),
		Route:     route,
		Dialogues: []DialogueLine{},
		Choices:   []Choice{},
		Instances: []CharacterInstance{},
	}
	p.Scenes[scene.ID] = scene
	p.Routes[i].Scenes = append(p.Routes[i].Scenes, scene.ID)
	return scene, nil
}

// MoveScene detaches a scene from its route and appends it to newRoute,
// creating newRoute when needed. Moving a scene to the route it already
// belongs to leaves the project unchanged.
func (p *Project) MoveScene(id SceneID, newRoute RouteName) error {
	if strings.TrimSpace(string(newRoute)) == "" {
		return fmt.Errorf("%w: route name is required", errs.ErrValidation)
	}
	scene, err := p.Scene(id)
	if err != nil {
		return err
	}
	if scene.Route == newRoute {
		if i := p.routeIndex(newRoute); i >= 0 && countScene(p.Routes[i].Scenes, id) == 1 {
			return nil
		}
	}

	// build the new route table first so the swap below is the only mutation
	routes := make([]Route, len(p.Routes))
	for i, route := range p.Routes {
		routes[i] = Route{Name: route.Name, Scenes: removeScene(route.Scenes, id)}
	}
	target := -1
	for i, route := range routes {
		if route.Name == newRoute {
			target = i
			break
		}
	}
	if target < 0 {
		routes = append(routes, Route{Name: newRoute, Scenes: []SceneID{}})
		target = len(routes) - 1
	}
	routes[target].Scenes = append(routes[target].Scenes, id)

	p.Routes = routes
	scene.Route = newRoute
	return nil
}

// DeleteScene removes a scene from its route and from the project. Choices
// that targeted it stay in place and end the route when selected.
func (p *Project) DeleteScene(id SceneID) error {
	if _, err := p.Scene(id); err != nil {
		return err
	}
	for i := range p.Routes {
		p.Routes[i].Scenes = removeScene(p.Routes[i].Scenes, id)
	}
	delete(p.Scenes, id)
	return nil
}

func (p *Project) RenameScene(id SceneID, title string) error {
	scene, err := p.Scene(id)
	if err != nil {
		return err
	}
	scene.Title = title
	return nil
}

// SetBackground sets the scene background; an empty reference clears it.
func (p *Project) SetBackground(id SceneID, ref string) error {
	scene, err := p.Scene(id)
	if err != nil {
		return err
	}
	scene.Background = strings.TrimSpace(ref)
	return nil
}

func removeScene(ids []SceneID, id SceneID) []SceneID {
	out := make([]SceneID, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func countScene(ids []SceneID, id SceneID) int {
	n := 0
	for _, existing := range ids {
		if existing == id {
			n++
		}
	}
	return n
}
