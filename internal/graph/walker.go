// Package graph walks the referral forest. The upline pointer on each member
// is a weak back-reference, so both walks carry a visited set: a repeated ID
// means corrupted data, never an infinite loop.
package graph

import (
	"fmt"

	"refera/internal/domain"
	"refera/internal/models"
)

// MemberSource is the read-only member access the walker needs.
type MemberSource interface {
	GetByID(id uint) (*models.Member, error)
	ListByReferrerIDs(ids []uint) ([]models.Member, error)
}

// Walker computes upline chains and downline sets. All operations are
// read-only and side-effect free.
type Walker struct {
	src MemberSource
}

func NewWalker(src MemberSource) *Walker {
	return &Walker{src: src}
}

// UplineChain returns the member's referrer chain, nearest first, stopping
// after maxDepth hops or at a member with no referrer. A repeated member ID
// fails with ErrGraphCycle.
func (w *Walker) UplineChain(memberID uint, maxDepth int) ([]models.Member, error) {
	m, err := w.src.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	visited := map[uint]bool{m.ID: true}
	chain := make([]models.Member, 0, maxDepth)
	cur := m
	for depth := 0; depth < maxDepth && cur.ReferredByID != nil; depth++ {
		parent, err := w.src.GetByID(*cur.ReferredByID)
		if err != nil {
			return nil, fmt.Errorf("upline of member %d: %w", cur.ID, err)
		}
		if visited[parent.ID] {
			return nil, fmt.Errorf("member %d reachable twice from member %d: %w", parent.ID, memberID, domain.ErrGraphCycle)
		}
		visited[parent.ID] = true
		chain = append(chain, *parent)
		cur = parent
	}
	return chain, nil
}

// DownlineByLevel returns the downline grouped by level, breadth-first:
// level 1 holds direct referrals, level n the referrals of level n-1.
// Members already seen are skipped so corrupted data cannot loop the walk.
func (w *Walker) DownlineByLevel(memberID uint, maxLevel int) (map[int][]models.Member, error) {
	if _, err := w.src.GetByID(memberID); err != nil {
		return nil, err
	}
	visited := map[uint]bool{memberID: true}
	out := make(map[int][]models.Member)
	frontier := []uint{memberID}
	for level := 1; level <= maxLevel && len(frontier) > 0; level++ {
		members, err := w.src.ListByReferrerIDs(frontier)
		if err != nil {
			return nil, err
		}
		next := make([]uint, 0, len(members))
		for _, m := range members {
			if visited[m.ID] {
				continue
			}
			visited[m.ID] = true
			out[level] = append(out[level], m)
			next = append(next, m.ID)
		}
		frontier = next
	}
	return out, nil
}
