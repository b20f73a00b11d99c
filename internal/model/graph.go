package model

import "time"

// GraphNode is one node of the exported relationship view.
type GraphNode struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// GraphEdge is a directed ownership edge. Every edge carries an
// extracted_at property for the downstream import step.
type GraphEdge struct {
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// GraphMetadata describes an exported graph artifact.
type GraphMetadata struct {
	CreatedAt  time.Time `json:"created_at"`
	TotalNodes int       `json:"total_nodes"`
	TotalEdges int       `json:"total_edges"`
}

// GraphExport is the file artifact handed to the graph-database import
// step. Import mechanics are out of scope; this is the full contract.
type GraphExport struct {
	Nodes    []GraphNode   `json:"nodes"`
	Edges    []GraphEdge   `json:"edges"`
	Metadata GraphMetadata `json:"metadata"`
}

// Edge relationship types.
const (
	EdgeOwnsSubmodel = "owns_submodel"
	EdgeHasElement   = "has_element"
)
