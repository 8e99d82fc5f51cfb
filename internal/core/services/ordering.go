package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/custodia-labs/annotate/internal/core/domain"
	"github.com/custodia-labs/annotate/internal/core/ports/driven"
	"github.com/custodia-labs/annotate/internal/logger"
)

// Order maintenance for profile points.
//
// Order is the source of truth. The previous/next pointers are a cache that
// linkBatch derives from the ordered list, and its batches are the only
// writes to either field for existing points.

// AppendOrder returns the order for a point added after the given points.
func AppendOrder(points []domain.ProfilePoint) int64 {
	highest := domain.OrderHead
	for _, p := range points {
		highest = max(highest, p.Order)
	}
	return highest + domain.OrderGap
}

// MidOrder returns the order between two neighbours and whether the gap is
// wide enough to use it. When ok is false the list must be renumbered.
func MidOrder(prevOrder, nextOrder int64) (order int64, ok bool) {
	if nextOrder-prevOrder < domain.OrderMinGap {
		return 0, false
	}
	return (prevOrder + nextOrder) / 2, true
}

// Renumber assigns evenly spaced orders to points in their current sequence.
func Renumber(points []domain.ProfilePoint) {
	for i := range points {
		points[i].Order = int64(i+1) * domain.OrderGap
	}
}

// loadChain returns a profile's points in ascending order.
func loadChain(ctx context.Context, store driven.ProfilePointStore, profileID string) ([]domain.ProfilePoint, error) {
	points, err := store.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	domain.SortPointsByOrder(points)
	return points, nil
}

// linkBatch rewrites the pointers of after to match its sequence and returns
// every point whose order or pointers differ from before.
func linkBatch(before, after []domain.ProfilePoint) []domain.ProfilePoint {
	old := make(map[string]domain.ProfilePoint, len(before))
	for _, p := range before {
		old[p.ID] = p
	}

	var batch []domain.ProfilePoint
	for i := range after {
		p := &after[i]
		p.PreviousPointID = ""
		if i > 0 {
			p.PreviousPointID = after[i-1].ID
		}
		p.NextPointID = ""
		if i < len(after)-1 {
			p.NextPointID = after[i+1].ID
		}

		o, ok := old[p.ID]
		if !ok || o.Order != p.Order || o.PreviousPointID != p.PreviousPointID || o.NextPointID != p.NextPointID {
			batch = append(batch, *p)
		}
	}
	return batch
}

// relink writes the batch that turns before into after. When the store
// fails part way, the points it may have written are put back.
func relink(ctx context.Context, store driven.ProfilePointStore, before, after []domain.ProfilePoint) error {
	batch := linkBatch(before, after)
	if len(batch) == 0 {
		return nil
	}
	if err := store.UpdateBatch(ctx, batch); err != nil {
		restore(ctx, store, before, batch)
		return err
	}
	return nil
}

// restore writes back the before state of every point in batch. Linked
// stores apply batches atomically and are skipped.
func restore(ctx context.Context, store driven.ProfilePointStore, before, batch []domain.ProfilePoint) {
	if _, atomic := store.(driven.LinkedPointStore); atomic {
		return
	}

	old := make(map[string]domain.ProfilePoint, len(before))
	for _, p := range before {
		old[p.ID] = p
	}
	var undo []domain.ProfilePoint
	for _, p := range batch {
		if o, ok := old[p.ID]; ok {
			undo = append(undo, o)
		}
	}
	if len(undo) == 0 {
		return
	}
	if err := store.UpdateBatch(context.WithoutCancel(ctx), undo); err != nil {
		logger.Warn("restoring %d profile points: %v", len(undo), err)
	}
}

// appendPoint creates point at the tail of its profile.
func appendPoint(
	ctx context.Context, store driven.ProfilePointStore, point domain.ProfilePoint,
) (*domain.ProfilePoint, error) {
	chain, err := loadChain(ctx, store, point.ProfileID)
	if err != nil {
		return nil, err
	}

	point.Order = AppendOrder(chain)
	point.PreviousPointID = ""
	if len(chain) > 0 {
		point.PreviousPointID = chain[len(chain)-1].ID
	}
	point.NextPointID = ""

	// link returns the chain with the created point at the tail, before and
	// after renumbering for an exhausted tail order.
	link := func(created domain.ProfilePoint) (before, after []domain.ProfilePoint) {
		before = append(slices.Clone(chain), created)
		after = slices.Clone(before)
		if created.Order >= domain.OrderTail {
			Renumber(after)
		}
		return before, after
	}

	if linked, ok := store.(driven.LinkedPointStore); ok {
		return linked.CreateLinked(ctx, point, func(created domain.ProfilePoint) []domain.ProfilePoint {
			return linkBatch(link(created))
		})
	}

	created, err := store.Create(ctx, point)
	if err != nil {
		return nil, err
	}
	before, after := link(*created)
	if err := relink(ctx, store, before, after); err != nil {
		if derr := store.Delete(context.WithoutCancel(ctx), created.ID); derr != nil {
			logger.Warn("removing unlinked point %s: %v", created.ID, derr)
		}
		return nil, fmt.Errorf("linking point %s: %w", created.ID, err)
	}
	return &after[len(after)-1], nil
}

// movePoint places pointID between prevID and nextID, which must be adjacent
// once the point is taken out. Empty ids stand for the head and the tail.
func movePoint(
	ctx context.Context, store driven.ProfilePointStore, pointID, prevID, nextID string,
) (*domain.ProfilePoint, error) {
	if pointID == prevID || pointID == nextID {
		return nil, fmt.Errorf("%w: a point cannot be its own neighbour", domain.ErrInvalidInput)
	}

	point, err := store.Get(ctx, pointID)
	if err != nil {
		return nil, err
	}
	chain, err := loadChain(ctx, store, point.ProfileID)
	if err != nil {
		return nil, err
	}

	rest := slices.DeleteFunc(slices.Clone(chain), func(p domain.ProfilePoint) bool { return p.ID == pointID })

	at, err := insertionIndex(rest, prevID, nextID)
	if err != nil {
		return nil, err
	}

	prevOrder := domain.OrderHead
	if at > 0 {
		prevOrder = rest[at-1].Order
	}
	nextOrder := domain.OrderTail
	if at < len(rest) {
		nextOrder = rest[at].Order
	}

	moved := *point
	after := slices.Insert(rest, at, moved)
	if order, ok := MidOrder(prevOrder, nextOrder); ok {
		after[at].Order = order
	} else {
		Renumber(after)
	}

	if err := relink(ctx, store, chain, after); err != nil {
		return nil, fmt.Errorf("moving point %s: %w", pointID, err)
	}
	return &after[at], nil
}

// insertionIndex returns where a point goes so that it sits after prevID and
// before nextID in rest.
func insertionIndex(rest []domain.ProfilePoint, prevID, nextID string) (int, error) {
	indexOf := func(id string) int {
		return slices.IndexFunc(rest, func(p domain.ProfilePoint) bool { return p.ID == id })
	}

	at := 0
	if prevID != "" {
		i := indexOf(prevID)
		if i < 0 {
			return 0, fmt.Errorf("%w: previous point %s is not in this profile", domain.ErrInvalidInput, prevID)
		}
		at = i + 1
	}

	switch {
	case nextID == "" && at != len(rest):
		if prevID == "" {
			return 0, fmt.Errorf("%w: a neighbour is required when the profile has other points", domain.ErrInvalidInput)
		}
		return 0, fmt.Errorf("%w: previous point %s is not the tail", domain.ErrInvalidInput, prevID)
	case nextID != "":
		i := indexOf(nextID)
		if i < 0 {
			return 0, fmt.Errorf("%w: next point %s is not in this profile", domain.ErrInvalidInput, nextID)
		}
		if i != at {
			return 0, fmt.Errorf("%w: points %q and %s are not adjacent", domain.ErrInvalidInput, prevID, nextID)
		}
	}
	return at, nil
}

// deletePoint removes a point and joins its neighbours. Without a linked
// store the neighbours are joined first, so a failed delete leaves a
// chain that can be put back.
func deletePoint(ctx context.Context, store driven.ProfilePointStore, pointID string) error {
	point, err := store.Get(ctx, pointID)
	if err != nil {
		return err
	}
	chain, err := loadChain(ctx, store, point.ProfileID)
	if err != nil {
		return err
	}

	rest := slices.DeleteFunc(slices.Clone(chain), func(p domain.ProfilePoint) bool { return p.ID == pointID })
	if linked, ok := store.(driven.LinkedPointStore); ok {
		return linked.DeleteLinked(ctx, pointID, linkBatch(chain, rest))
	}

	batch := linkBatch(chain, rest)
	if len(batch) > 0 {
		if err := store.UpdateBatch(ctx, batch); err != nil {
			restore(ctx, store, chain, batch)
			return fmt.Errorf("unlinking point %s: %w", pointID, err)
		}
	}
	if err := store.Delete(ctx, pointID); err != nil {
		restore(ctx, store, chain, batch)
		return err
	}
	return nil
}

// WalkChain follows next pointers from the head and returns the visited
// points. It fails if the pointers disagree with the orders or form a cycle.
func WalkChain(points []domain.ProfilePoint) ([]domain.ProfilePoint, error) {
	if len(points) == 0 {
		return nil, nil
	}

	byID := make(map[string]domain.ProfilePoint, len(points))
	var head *domain.ProfilePoint
	for i := range points {
		byID[points[i].ID] = points[i]
		if points[i].PreviousPointID == "" {
			if head != nil {
				return nil, fmt.Errorf("two heads: %s and %s", head.ID, points[i].ID)
			}
			head = &points[i]
		}
	}
	if head == nil {
		return nil, errors.New("no head")
	}

	walked := make([]domain.ProfilePoint, 0, len(points))
	seen := make(map[string]bool, len(points))
	for cur, ok := *head, true; ok; cur, ok = byID[cur.NextPointID] {
		if seen[cur.ID] {
			return nil, fmt.Errorf("cycle at %s", cur.ID)
		}
		seen[cur.ID] = true
		if n := len(walked); n > 0 {
			if walked[n-1].Order >= cur.Order {
				return nil, fmt.Errorf("order not increasing at %s", cur.ID)
			}
			if cur.PreviousPointID != walked[n-1].ID {
				return nil, fmt.Errorf("%s does not point back to %s", cur.ID, walked[n-1].ID)
			}
		}
		walked = append(walked, cur)
		if cur.NextPointID == "" {
			break
		}
	}

	if len(walked) != len(points) {
		return nil, fmt.Errorf("chain visits %d of %d points", len(walked), len(points))
	}
	return walked, nil
}
