package core

// Split is the computed share for one participant. It is ephemeral: built
// fresh on every split request and never persisted. Itemcount counts
// item-participations, not distinct items, and Items keeps one entry per
// participation in item order.
type Split struct {
	Name      string   `json:"name"`
	Split     float64  `json:"split"`
	Itemcount int      `json:"itemcount"`
	Items     []string `json:"items"`
}

// SplitResult is the full outcome of splitting a bill: one Split per
// participant, ordered by first appearance across the item list, plus the
// sum of all shares.
type SplitResult struct {
	Details []Split `json:"details"`
	Total   float64 `json:"total"`
}

// ComputeSplit derives each participant's share of the bill.
//
// Every item's value is divided by the raw length of its participant list,
// duplicates included, and each occurrence is merged into that participant's
// accumulator: shares add, itemcount increments, the item name appends.
// An item with no participants contributes nothing. Because every item's
// value is fully redistributed, the result total equals the sum of item
// values up to floating-point rounding.
func ComputeSplit(bill Bill) SplitResult {
	splits := make(map[string]*Split)
	var order []string

	for _, item := range bill.Items {
		n := len(item.Participants)
		if n == 0 {
			continue
		}
		share := item.Value / float64(n)
		for _, participant := range item.Participants {
			sp, ok := splits[participant]
			if !ok {
				sp = &Split{Name: participant}
				splits[participant] = sp
				order = append(order, participant)
			}
			sp.Split += share
			sp.Itemcount++
			sp.Items = append(sp.Items, item.Name)
		}
	}

	result := SplitResult{Details: make([]Split, 0, len(order))}
	for _, name := range order {
		sp := splits[name]
		result.Details = append(result.Details, *sp)
		result.Total += sp.Split
	}
	return result
}
