package search

// TracePath walks parent pointers from target back to the source record and
// returns the titles in source to target order. It returns false when target
// was never accepted or the parent chain is broken.
func TracePath(reg *Registry, target string) ([]string, bool) {
	rec, ok := reg.Get(target)
	if !ok {
		return nil, false
	}

	path := []string{rec.Title}
	// A chain longer than the registry can only be a cycle
	for steps := 0; !rec.IsSource(); steps++ {
		if steps >= reg.Len() {
			return nil, false
		}
		rec, ok = reg.Get(rec.Parent)
		if !ok {
			return nil, false
		}
		path = append(path, rec.Title)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}
