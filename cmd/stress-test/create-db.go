/*
 * create-db seeds a postgres instance with a randomized graph universe,
 * sized to stress the scheduler caps and the settlement phase.
 */
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/db/postgres"
	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

const (
	nodeCount = 250
	linkCount = 600
	voteCount = 2000
	userCount = 40
)

var contentKinds = []model.NodeKind{
	model.NodeKindStatement,
	model.NodeKindOpenQuestion,
	model.NodeKindAnswer,
	model.NodeKindQuantity,
	model.NodeKindEvidence,
}

var linkKinds = []model.LinkKind{
	model.LinkKindSharedKeyword,
	model.LinkKindAnswers,
	model.LinkKindEvidenceFor,
	model.LinkKindRelatedTo,
	model.LinkKindSharedCategory,
}

func main() {
	ctx := context.Background()
	pg, err := postgres.NewPostgresDB(db.GetEnvConfig())
	if err != nil {
		log.Fatal(err)
	}
	nodeID := func(i int) string { return fmt.Sprintf("stress-%03d", i) }
	for i := 0; i < nodeCount; i++ {
		kind := contentKinds[rand.Intn(len(contentKinds))]
		payload := db.Payload{"text": fmt.Sprintf("generated %s #%d", kind, i)}
		if _, err := pg.CreateNode(ctx, nodeID(i), kind, payload); err != nil {
			log.Fatal(err)
		}
	}
	for i := 0; i < voteCount; i++ {
		kind := postgres.VoteKindInclusion
		if rand.Intn(4) == 0 {
			kind = postgres.VoteKindContent
		}
		value := 1
		if rand.Intn(5) == 0 {
			value = -1
		}
		err := pg.AddVote(ctx, nodeID(rand.Intn(nodeCount)), uint(rand.Intn(userCount)+1), kind, value)
		if err != nil {
			log.Fatal(err)
		}
	}
	created := 0
	for created < linkCount {
		from, to := rand.Intn(nodeCount), rand.Intn(nodeCount)
		if from == to {
			continue
		}
		kind := linkKinds[rand.Intn(len(linkKinds))]
		if err := pg.CreateRelationship(ctx, nodeID(from), nodeID(to), kind); err != nil {
			// duplicate pair+kind rows violate the unique index, just retry
			continue
		}
		created++
	}
	log.Printf("seeded %d nodes, %d votes, %d relationships", nodeCount, voteCount, created)
}
