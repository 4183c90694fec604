package rank

// mergeRuns combines sorted runs that cover consecutive pool ranges.
// On equal scores the earlier run wins, which keeps the merge stable.
func mergeRuns(runs [][]Result) []Result {
	for len(runs) > 1 {
		next := make([][]Result, 0, (len(runs)+1)/2)
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				next = append(next, runs[i])
				continue
			}
			next = append(next, mergeTwo(runs[i], runs[i+1]))
		}
		runs = next
	}
	if len(runs) == 0 {
		return []Result{}
	}
	return runs[0]
}

func mergeTwo(left, right []Result) []Result {
	out := make([]Result, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if compare(right[j], left[i]) < 0 {
			out = append(out, right[j])
			j++
		} else {
			out = append(out, left[i])
			i++
		}
	}
	out = append(out, left[i:]...)
	return append(out, right[j:]...)
}
