package live

// GroupByStatus buckets live orders by their status field, preserving the
// snapshot's sort order inside each bucket.
func GroupByStatus(orders []Order) map[string][]Order {
	groups := make(map[string][]Order)
	for _, order := range orders {
		groups[order.Status] = append(groups[order.Status], order)
	}
	return groups
}
