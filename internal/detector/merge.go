// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import "sort"

// MergeEntities resolves overlap conflicts across candidate entities from
// all sources and returns the accepted set sorted by start offset.
//
// The selection is a greedy priority walk, not a coverage optimizer:
//
//  1. Candidates are sorted by score descending, then span length
//     descending, then start ascending. The sort is stable, so candidates
//     that tie on all three keys keep their source order.
//  2. Each candidate is accepted iff its half-open range does not
//     intersect any previously accepted range. Non-positive-length
//     spans are skipped outright.
//  3. The accepted set is re-sorted by start before returning, since the
//     greedy walk accepts in priority order, not position order.
func MergeEntities(candidates ...[]Entity) []Entity {
	var all []Entity
	for _, group := range candidates {
		all = append(all, group...)
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].Length() != all[j].Length() {
			return all[i].Length() > all[j].Length()
		}
		return all[i].Start < all[j].Start
	})

	accepted := make([]Entity, 0, len(all))
	for _, cand := range all {
		if cand.Start >= cand.End {
			continue
		}
		overlap := false
		for _, a := range accepted {
			if cand.Overlaps(a) {
				overlap = true
				break
			}
		}
		if !overlap {
			accepted = append(accepted, cand)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}
