package pipeline

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/axreplay/pkg/core"
)

// candidate is a live node under consideration during refinement.
// Discarded once a winner is chosen or the stage fails.
type candidate struct {
	id    core.NodeID
	info  *core.NodeInfo
	score float64
}

// searchStrategy produces a pool of candidate node IDs. Strategies run
// in order until one yields a candidate above the acceptance threshold.
// A visual (screenshot + expected label) fallback slots in here as
// another variant once implemented; the orchestrator needs no change
// for it.
type searchStrategy interface {
	name() string
	pool(rc *runContext) ([]core.NodeID, error)
}

// refine is L4: the projected point was not trustworthy, so search the
// live tree for the best-matching element.
func (rc *runContext) refine() (core.Stage, *core.PipelineError) {
	started := time.Now()

	strategies := []searchStrategy{
		childrenScan{},
		neighborScan{},
		treeSearch{},
	}

	bestScore := 0.0
	bestStrategy := ""
	for _, st := range strategies {
		ids, err := st.pool(rc)
		if err != nil {
			continue // a failing strategy falls through to the next
		}
		win, score := rc.scorePool(ids)
		if score > bestScore {
			bestScore, bestStrategy = score, st.name()
		}
		if win != nil && score >= rc.accept {
			rc.chosen = win.id
			rc.chosenInfo = win.info
			rc.chosenScore = score
			rc.record(core.StageRecord{
				Stage: core.StageRefine, Outcome: core.OutcomePass,
				Strategy: st.name(), Score: score,
				Detail: fmt.Sprintf("%d candidates", len(ids)),
			}, started)
			return core.StageConfirm, nil
		}
	}

	rc.record(core.StageRecord{
		Stage: core.StageRefine, Outcome: core.OutcomeFail,
		Strategy: bestStrategy, Score: bestScore,
		Detail: fmt.Sprintf("best %.2f below threshold %.2f", bestScore, rc.accept),
	}, started)
	return core.StageRefine, core.ErrNoCandidate.WithDetails(map[string]any{
		"bestScore":    bestScore,
		"bestStrategy": bestStrategy,
		"threshold":    rc.accept,
	})
}

// scorePool scores every candidate and returns the best one.
func (rc *runContext) scorePool(ids []core.NodeID) (*candidate, float64) {
	var best *candidate
	bestScore := -1.0
	scale := rc.transform.WindowScale()
	seen := make(map[core.NodeID]bool, len(ids))
	for _, id := range ids {
		if id == core.NodeIDNone || seen[id] {
			continue
		}
		seen[id] = true
		info, err := rc.insp.Attributes(id)
		if err != nil {
			continue
		}
		// Role is a cheap pre-filter; a mismatch scores zero anyway.
		if info.Role != rc.sig.Role {
			continue
		}
		score := rc.sig.Similarity(info, rc.cfg.Weights, scale)
		if score > bestScore {
			best = &candidate{id: id, info: info, score: score}
			bestScore = score
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestScore
}

// searchRoot is the element found at the projected point, or the window
// root when the hit-test came up empty.
func (rc *runContext) searchRoot() core.NodeID {
	if rc.seed != core.NodeIDNone {
		return rc.seed
	}
	return rc.window.Handle
}

// childrenScan enumerates the children of the element at the projected
// point (or the window root). Containers frequently swallow the
// hit-test while the real target is one level down.
type childrenScan struct{}

func (childrenScan) name() string { return "children" }

func (childrenScan) pool(rc *runContext) ([]core.NodeID, error) {
	root := rc.searchRoot()
	if root == core.NodeIDNone {
		return nil, nil
	}
	return rc.insp.Children(root)
}

// neighborScan looks for the target near the projected point: the
// seed's siblings whose frames fall within the scan radius, plus
// hit-tests on a step grid around the point. Handles elements that
// shifted position within an otherwise-stable layout. The radius is
// widened by escalation.
type neighborScan struct{}

func (neighborScan) name() string { return "neighbor" }

func (neighborScan) pool(rc *runContext) ([]core.NodeID, error) {
	var ids []core.NodeID

	if rc.seed != core.NodeIDNone {
		sibs, err := rc.insp.Siblings(rc.seed)
		if err == nil {
			for _, id := range sibs {
				info, err := rc.insp.Attributes(id)
				if err != nil {
					continue
				}
				if info.Frame.Center().Dist(rc.projected) <= rc.radius {
					ids = append(ids, id)
				}
			}
		}
	}

	step := rc.cfg.Search.NeighborStep
	for dx := -rc.radius; dx <= rc.radius; dx += step {
		for dy := -rc.radius; dy <= rc.radius; dy += step {
			id, ok, err := rc.insp.ElementAt(rc.projected.Add(dx, dy))
			if err != nil || !ok {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// treeSearch walks the whole window tree breadth-first, bounded by
// depth and node budgets to cap worst-case latency on deep trees.
type treeSearch struct{}

func (treeSearch) name() string { return "tree" }

func (t treeSearch) pool(rc *runContext) ([]core.NodeID, error) {
	root := rc.window.Handle
	if root == core.NodeIDNone {
		return nil, nil
	}

	maxDepth := rc.cfg.Search.TreeMaxDepth
	maxNodes := rc.cfg.Search.TreeMaxNodes

	type entry struct {
		id    core.NodeID
		depth int
	}
	var ids []core.NodeID
	queue := []entry{{root, 0}}
	visited := 0
	for len(queue) > 0 && visited < maxNodes {
		e := queue[0]
		queue = queue[1:]
		visited++
		ids = append(ids, e.id)
		if e.depth >= maxDepth {
			continue
		}
		children, err := rc.insp.Children(e.id)
		if err != nil {
			continue
		}
		for _, ch := range children {
			queue = append(queue, entry{ch, e.depth + 1})
		}
	}
	return ids, nil
}
