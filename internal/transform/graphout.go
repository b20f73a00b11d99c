package transform

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dominikbraun/graph"

	"github.com/twinlift/twinlift/internal/model"
)

// BuildGraph produces the exported relationship view: one node per
// asset, submodel, document, and submodel element, with directed
// ownership edges. A dominikbraun/graph instance backs the assembly so
// duplicate ids and ownership cycles are rejected instead of silently
// exported; node and edge order stays deterministic (extraction order).
func BuildGraph(result *model.ExtractionResult, extractedAt time.Time) *model.GraphExport {
	g := graph.New(func(n model.GraphNode) string { return n.ID }, graph.Directed(), graph.PreventCycles())
	stamp := extractedAt.UTC().Format(time.RFC3339)

	var nodes []model.GraphNode
	addNode := func(n model.GraphNode) {
		if err := g.AddVertex(n); err != nil {
			// Duplicate id within the run; first extraction wins.
			return
		}
		nodes = append(nodes, n)
	}

	var edges []model.GraphEdge
	addEdge := func(source, target, edgeType string) {
		if err := g.AddEdge(source, target); err != nil {
			// Duplicate edge, missing endpoint, or cycle; drop it.
			return
		}
		edges = append(edges, model.GraphEdge{
			Source:     source,
			Target:     target,
			Type:       edgeType,
			Properties: map[string]string{"extracted_at": stamp},
		})
	}

	for i := range result.Assets {
		a := &result.Assets[i]
		addNode(model.GraphNode{
			ID:         a.ID,
			Type:       string(model.EntityAsset),
			Properties: entityProperties(a.ShortID, a.Kind, a.Quality),
		})
	}

	defaultOwner := ""
	if len(result.Assets) == 1 {
		// Tier-3 descriptors often omit the shell→submodel reference;
		// with a single asset the ownership is unambiguous.
		defaultOwner = result.Assets[0].ID
	}

	for i := range result.Submodels {
		sm := &result.Submodels[i]
		addNode(model.GraphNode{
			ID:         sm.ID,
			Type:       string(model.EntitySubmodel),
			Properties: entityProperties(sm.ShortID, sm.Kind, sm.Quality),
		})

		owner := sm.AssetID
		if owner == "" {
			owner = defaultOwner
		}
		if owner != "" {
			addEdge(owner, sm.ID, model.EdgeOwnsSubmodel)
		}

		for j := range sm.Elements {
			el := &sm.Elements[j]
			elementID := fmt.Sprintf("%s/%s", sm.ID, el.Name)
			addNode(model.GraphNode{
				ID:   elementID,
				Type: "element",
				Properties: map[string]string{
					"name":  el.Name,
					"value": el.Value,
					"unit":  el.Unit,
				},
			})
			addEdge(sm.ID, elementID, model.EdgeHasElement)
		}
	}

	for i := range result.Documents {
		d := &result.Documents[i]
		props := map[string]string{
			"filename": d.Filename,
			"type":     d.Type,
			"size":     strconv.FormatInt(d.Size, 10),
		}
		if d.Quality != nil {
			props["quality_level"] = string(d.Quality.Level)
			props["compliance_status"] = string(d.Quality.Compliance)
		}
		addNode(model.GraphNode{
			ID:         "doc:" + d.Filename,
			Type:       string(model.EntityDocument),
			Properties: props,
		})
	}

	return &model.GraphExport{
		Nodes: nodes,
		Edges: edges,
		Metadata: model.GraphMetadata{
			CreatedAt:  extractedAt.UTC(),
			TotalNodes: len(nodes),
			TotalEdges: len(edges),
		},
	}
}

func entityProperties(shortID, kind string, q *model.QualityRecord) map[string]string {
	props := map[string]string{
		"short_id": shortID,
		"kind":     kind,
	}
	if q != nil {
		props["quality_level"] = string(q.Level)
		props["compliance_status"] = string(q.Compliance)
		props["score"] = strconv.FormatFloat(q.Score, 'f', 4, 64)
	}
	return props
}
