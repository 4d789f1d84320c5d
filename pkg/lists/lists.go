package lists

// DistributeEvenly appends items across the given sublists so that sizes stay
// as even as possible: each item lands on a currently-smallest sublist. The
// sublists are modified in place and returned.
func DistributeEvenly[T any](items []T, sublists [][]T) [][]T {
	if len(sublists) == 0 {
		return sublists
	}
	for _, item := range items {
		smallest := 0
		for i := 1; i < len(sublists); i++ {
			if len(sublists[i]) < len(sublists[smallest]) {
				smallest = i
			}
		}
		sublists[smallest] = append(sublists[smallest], item)
	}
	return sublists
}

// Rebalance moves one element at a time from the largest sublist to the
// smallest until no two sublists differ in size by more than one. Every move
// shrinks the largest or grows the smallest, so the loop terminates for any
// input.
func Rebalance[T any](sublists [][]T) [][]T {
	if len(sublists) < 2 {
		return sublists
	}
	for {
		largest, smallest := 0, 0
		for i := range sublists {
			if len(sublists[i]) > len(sublists[largest]) {
				largest = i
			}
			if len(sublists[i]) < len(sublists[smallest]) {
				smallest = i
			}
		}
		if len(sublists[largest])-len(sublists[smallest]) < 2 {
			return sublists
		}
		last := len(sublists[largest]) - 1
		moved := sublists[largest][last]
		sublists[largest] = sublists[largest][:last]
		sublists[smallest] = append(sublists[smallest], moved)
	}
}
