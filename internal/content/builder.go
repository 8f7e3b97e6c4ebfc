package content

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/storage"
)

// WorldRootId is the id of the synthetic root node every graph gets.
const WorldRootId = storage.Identifier("world")

// Registry bundles the static content stores consumed at graph construction
// time. It is read once per session build and never consulted after sealing.
type Registry struct {
	Chapters   storage.Storer[*Chapter]
	Areas      storage.Storer[*Area]
	Locations  storage.Storer[*Location]
	Characters storage.Storer[*Character]
	Items      storage.Storer[*Item]
	Events     storage.Storer[*Event]
	Behaviors  storage.Storer[*Behavior]
}

// Resolve eagerly resolves every cross-store reference so dangling ids
// surface at startup rather than on the first session build.
func (r *Registry) Resolve() error {
	el := errors.NewErrorList()

	for id, area := range r.Areas.GetAll() {
		if err := area.Chapter.Resolve(r.Chapters); err != nil {
			el.Add(fmt.Errorf("area %s: %w", id, err))
		}
	}
	for id, loc := range r.Locations.GetAll() {
		if err := loc.Area.Resolve(r.Areas); err != nil {
			el.Add(fmt.Errorf("location %s: %w", id, err))
		}
	}

	return el.Err()
}

// Seed is the per-session dynamic state read at build time. Updates after the
// build flow only through action execution, never through this struct.
type Seed struct {
	PlayerId    storage.Identifier
	PlayerName  string
	Start       storage.Identifier // starting location
	PlayerState map[string]any
	Party       []storage.Identifier // npc ids grouped into the player's party
}

// BuildGraph turns the registry plus session seed into a populated, sealed
// graph. Any dangling reference is a construction data error: the session
// cannot start, and nothing is retried.
func (r *Registry) BuildGraph(seed Seed) (*graph.Graph, error) {
	el := errors.NewErrorList()
	g := graph.New()
	now := time.Now()

	el.Add(g.AddNode(&graph.Node{
		Id:        WorldRootId,
		Type:      graph.NodeTypeWorld,
		Name:      "world",
		CreatedAt: now,
	}))

	// Chapters hang off the world root.
	for id, ch := range r.Chapters.GetAll() {
		el.Add(g.AddNode(&graph.Node{
			Id:        storage.Identifier(id),
			Type:      graph.NodeTypeChapter,
			Name:      ch.Name,
			CreatedAt: now,
		}))
		el.Add(g.AddEdge(graph.Edge{From: WorldRootId, To: storage.Identifier(id), Type: graph.EdgeTypeContains}))
	}

	// Areas inside their chapters.
	for id, area := range r.Areas.GetAll() {
		if err := area.Chapter.Resolve(r.Chapters); err != nil {
			el.Add(fmt.Errorf("area %q: %w", id, err))
			continue
		}
		el.Add(g.AddNode(&graph.Node{
			Id:         storage.Identifier(id),
			Type:       graph.NodeTypeArea,
			Name:       area.Name,
			Properties: area.Properties,
			CreatedAt:  now,
		}))
		el.Add(g.AddEdge(graph.Edge{
			From: storage.Identifier(area.Chapter.Id()),
			To:   storage.Identifier(id),
			Type: graph.EdgeTypeContains,
		}))
	}

	// Locations inside their areas, plus travel adjacency.
	locations := r.Locations.GetAll()
	for id, loc := range locations {
		if err := loc.Area.Resolve(r.Areas); err != nil {
			el.Add(fmt.Errorf("location %q: %w", id, err))
			continue
		}
		el.Add(g.AddNode(&graph.Node{
			Id:         storage.Identifier(id),
			Type:       graph.NodeTypeLocation,
			Name:       loc.Name,
			Properties: loc.Properties,
			CreatedAt:  now,
		}))
		el.Add(g.AddEdge(graph.Edge{
			From: storage.Identifier(loc.Area.Id()),
			To:   storage.Identifier(id),
			Type: graph.EdgeTypeContains,
		}))
	}
	for id, loc := range locations {
		for _, adj := range loc.Adjacent {
			if _, ok := locations[adj.To]; !ok {
				el.Add(fmt.Errorf("location %q: adjacent %q not found", id, adj.To))
				continue
			}
			el.Add(g.AddEdge(graph.Edge{
				From:   storage.Identifier(id),
				To:     storage.Identifier(adj.To),
				Type:   graph.EdgeTypeAdjacent,
				Weight: adj.Weight,
			}))
		}
	}

	// Characters hosted at their home locations.
	characters := r.Characters.GetAll()
	for id, ch := range characters {
		state := make(map[string]any, len(ch.State))
		for k, v := range ch.State {
			state[k] = v
		}
		el.Add(g.AddNode(&graph.Node{
			Id:         storage.Identifier(id),
			Type:       graph.NodeTypeNpc,
			Name:       ch.Name,
			Properties: ch.Properties,
			State:      state,
			CreatedAt:  now,
		}))
		if g.Node(storage.Identifier(ch.Home)) == nil {
			el.Add(fmt.Errorf("character %q: home %q not found", id, ch.Home))
			continue
		}
		el.Add(g.AddEdge(graph.Edge{
			From: storage.Identifier(ch.Home),
			To:   storage.Identifier(id),
			Type: graph.EdgeTypeHosts,
		}))
	}
	for id, ch := range characters {
		for _, rel := range ch.Relations {
			el.Add(g.AddEdge(graph.Edge{
				From:   storage.Identifier(id),
				To:     storage.Identifier(rel.To),
				Type:   graph.EdgeTypeRelates,
				Weight: rel.Weight,
			}))
		}
	}

	// Items at their initial locations.
	for id, item := range r.Items.GetAll() {
		el.Add(g.AddNode(&graph.Node{
			Id:         storage.Identifier(id),
			Type:       graph.NodeTypeItem,
			Name:       item.Name,
			Properties: item.Properties,
			CreatedAt:  now,
		}))
		if item.Location != "" {
			el.Add(g.AddEdge(graph.Edge{
				From: storage.Identifier(item.Location),
				To:   storage.Identifier(id),
				Type: graph.EdgeTypeHosts,
			}))
		}
	}

	// Event definition nodes, hosted at their origin, with gate edges to the
	// events they unlock.
	events := r.Events.GetAll()
	for id, ev := range events {
		el.Add(g.AddNode(&graph.Node{
			Id:        storage.Identifier(id),
			Type:      graph.NodeTypeEvent,
			Name:      ev.Name,
			CreatedAt: now,
		}))
		origin := ev.Origin
		if origin == "" {
			origin = ev.Area
		}
		if g.Node(storage.Identifier(origin)) == nil {
			el.Add(fmt.Errorf("event %q: origin %q not found", id, origin))
			continue
		}
		el.Add(g.AddEdge(graph.Edge{
			From: storage.Identifier(origin),
			To:   storage.Identifier(id),
			Type: graph.EdgeTypeHosts,
		}))
	}
	for id, ev := range events {
		for _, gated := range ev.Gates {
			if _, ok := events[gated]; !ok {
				el.Add(fmt.Errorf("event %q: gated event %q not found", id, gated))
				continue
			}
			el.Add(g.AddEdge(graph.Edge{
				From: storage.Identifier(id),
				To:   storage.Identifier(gated),
				Type: graph.EdgeTypeGates,
			}))
		}
	}

	// Player and party from the session seed.
	if seed.PlayerId != "" {
		el.Add(g.AddNode(&graph.Node{
			Id:        seed.PlayerId,
			Type:      graph.NodeTypePlayer,
			Name:      seed.PlayerName,
			State:     seed.PlayerState,
			CreatedAt: now,
		}))
		if g.Node(seed.Start) == nil {
			el.Add(fmt.Errorf("player %q: start location %q not found", seed.PlayerId, seed.Start))
		} else {
			el.Add(g.AddEdge(graph.Edge{From: seed.Start, To: seed.PlayerId, Type: graph.EdgeTypeHosts}))
		}

		partyId := storage.Identifier(fmt.Sprintf("%s-party", seed.PlayerId))
		el.Add(g.AddNode(&graph.Node{
			Id:        partyId,
			Type:      graph.NodeTypeParty,
			Name:      fmt.Sprintf("%s's party", seed.PlayerName),
			CreatedAt: now,
		}))
		el.Add(g.AddEdge(graph.Edge{From: partyId, To: seed.PlayerId, Type: graph.EdgeTypeMember}))
		for _, member := range seed.Party {
			if g.Node(member) == nil {
				el.Add(fmt.Errorf("party member %q not found", member))
				continue
			}
			el.Add(g.AddEdge(graph.Edge{From: partyId, To: member, Type: graph.EdgeTypeMember}))
		}
	}

	if err := el.Err(); err != nil {
		return nil, fmt.Errorf("building world graph: %w", err)
	}

	g.Seal()
	return g, nil
}
