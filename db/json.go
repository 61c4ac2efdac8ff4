package db

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// jsonGraph is the wire format accepted by JSONSource.
type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Links []jsonLink `json:"links"`
}

type jsonNode struct {
	ID                string          `json:"id"`
	Kind              string          `json:"kind"`
	InclusionNetVotes int             `json:"inclusionNetVotes"`
	ContentNetVotes   int             `json:"contentNetVotes"`
	Mode              string          `json:"mode,omitempty"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}

type jsonLink struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Kind     string `json:"kind"`
}

// JSONSource reads a complete graph document from a reader, e.g. a file or
// stdin. Kind validation is left to the engine, which drops malformed nodes
// individually. A node without an id fails the whole document, and links
// with missing endpoints are filtered out since they carry no information
// at all.
type JSONSource struct {
	r io.Reader
}

func NewJSONSource(r io.Reader) *JSONSource {
	return &JSONSource{r: r}
}

func (s *JSONSource) Load(ctx context.Context) ([]model.ContentNode, []model.RawLink, error) {
	doc := jsonGraph{}
	if err := json.NewDecoder(s.r).Decode(&doc); err != nil {
		return nil, nil, errors.Wrap(err, "failed to decode graph document")
	}
	if !All(doc.Nodes, func(n jsonNode) bool { return n.ID != "" }) {
		return nil, nil, errors.New("graph document contains a node without an id")
	}
	nodes := make([]model.ContentNode, 0, len(doc.Nodes))
	for _, in := range doc.Nodes {
		node := model.ContentNode{
			ID:                in.ID,
			Kind:              model.NodeKind(in.Kind),
			InclusionNetVotes: in.InclusionNetVotes,
			ContentNetVotes:   in.ContentNetVotes,
			Mode:              model.NodeMode(in.Mode),
		}
		if len(in.Payload) > 0 {
			node.Payload = in.Payload
		}
		nodes = append(nodes, node)
	}
	links := make([]model.RawLink, 0, len(doc.Links))
	for _, in := range doc.Links {
		links = append(links, model.RawLink{
			SourceID: in.SourceID,
			TargetID: in.TargetID,
			Kind:     model.LinkKind(in.Kind),
		})
	}
	links = RemoveIf(links, func(l model.RawLink) bool {
		return l.SourceID == "" || l.TargetID == ""
	})
	return nodes, links, nil
}
