package service

import (
	"github.com/smurfolan/likkle-backend/internal/spatial"
)

// cascadeDeactivations computes the activity fallout of a leave set against
// the snapshot: a group whose last member is leaving goes inactive, and an
// area goes inactive once every group attached to it is inactive. The
// cascade stops at areas; nothing propagates further.
func cascadeDeactivations(ix *spatial.Index, leaveGroupIDs []uint) (groupIDs, areaIDs []uint) {
	emptied := make(map[uint]struct{})
	for _, gid := range leaveGroupIDs {
		g, ok := ix.Group(gid)
		if !ok || !g.IsActive {
			continue
		}
		if ix.MemberCount(gid) <= 1 {
			emptied[gid] = struct{}{}
			groupIDs = append(groupIDs, gid)
		}
	}
	if len(emptied) == 0 {
		return nil, nil
	}

	seenAreas := make(map[uint]struct{})
	for gid := range emptied {
		for _, aid := range ix.AreasOfGroup(gid) {
			if _, dup := seenAreas[aid]; dup {
				continue
			}
			seenAreas[aid] = struct{}{}

			a, ok := ix.Area(aid)
			if !ok || !a.IsActive {
				continue
			}
			allInactive := true
			for _, other := range ix.GroupsOfArea(aid) {
				if _, justEmptied := emptied[other]; justEmptied {
					continue
				}
				if g, ok := ix.Group(other); ok && g.IsActive {
					allInactive = false
					break
				}
			}
			if allInactive {
				areaIDs = append(areaIDs, aid)
			}
		}
	}
	return groupIDs, areaIDs
}

// cascadeReactivations computes the reverse cascade for an explicit join set:
// a dormant group gaining a member comes back active, and every inactive
// area it spans follows it.
func cascadeReactivations(ix *spatial.Index, joinGroupIDs []uint) (groupIDs, areaIDs []uint) {
	seenAreas := make(map[uint]struct{})
	for _, gid := range joinGroupIDs {
		g, ok := ix.Group(gid)
		if !ok || g.IsActive {
			continue
		}
		groupIDs = append(groupIDs, gid)
		for _, aid := range ix.AreasOfGroup(gid) {
			if _, dup := seenAreas[aid]; dup {
				continue
			}
			seenAreas[aid] = struct{}{}
			if a, ok := ix.Area(aid); ok && !a.IsActive {
				areaIDs = append(areaIDs, aid)
			}
		}
	}
	return groupIDs, areaIDs
}
