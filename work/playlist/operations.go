package playlist

import (
	"sort"
	"strings"
)

// GroupByCategory partitions channels into a mapping from group label to the
// ordered sub-sequence of matching channels. Channels without a group land
// under Uncategorized. Relative order within each group follows playlist
// order.
func GroupByCategory(channels []Channel) map[string][]Channel {
	groups := make(map[string][]Channel)
	for _, ch := range channels {
		label := ch.Group
		if label == "" {
			label = Uncategorized
		}
		groups[label] = append(groups[label], ch)
	}
	return groups
}

// GroupLabels returns the labels present in channels, sorted alphabetically
// with Uncategorized last.
func GroupLabels(channels []Channel) []string {
	groups := GroupByCategory(channels)
	labels := make([]string, 0, len(groups))
	for label := range groups {
		if label != Uncategorized {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	if _, ok := groups[Uncategorized]; ok {
		labels = append(labels, Uncategorized)
	}
	return labels
}

// Search returns the channels whose name, group, or country contains the
// query as a case-insensitive substring, preserving playlist order. An empty
// query matches everything.
func Search(channels []Channel, query string) []Channel {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return channels
	}

	var matched []Channel
	for _, ch := range channels {
		if strings.Contains(strings.ToLower(ch.Name), q) ||
			strings.Contains(strings.ToLower(ch.Group), q) ||
			strings.Contains(strings.ToLower(ch.Country), q) {
			matched = append(matched, ch)
		}
	}
	return matched
}

// Sort orders channels by the given attribute field in place, falling back
// to the display name for channels missing the attribute. Direction is
// "asc" or "desc"; the sort is stable so playlist order breaks ties.
func Sort(channels []Channel, field, direction string) {
	sort.SliceStable(channels, func(i, j int) bool {
		val1 := sortKey(&channels[i], field)
		val2 := sortKey(&channels[j], field)

		if direction == "desc" {
			return val1 > val2
		}
		return val1 < val2
	})
}

func sortKey(ch *Channel, field string) string {
	if v, ok := ch.Attributes[field]; ok && v != "" {
		return v
	}
	return ch.Name
}
