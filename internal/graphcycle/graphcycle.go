package graphcycle

// Config configures cycle detection traversal.
type Config[K comparable] struct {
	Next   func(K) []K
	Starts []K
}

// Cycles returns every distinct cycle reachable from Starts as the member
// lists of its strongly connected component, members in discovery order.
// A single node is reported only when it has an edge to itself. The walk is
// iterative, so deep graphs cannot overflow the stack.
func Cycles[K comparable](cfg Config[K]) [][]K {
	if cfg.Next == nil {
		return nil
	}
	index := make(map[K]int)
	low := make(map[K]int)
	onStack := make(map[K]bool)
	var sccStack []K
	var out [][]K
	counter := 0

	type frame struct {
		key  K
		next []K
	}
	for _, start := range cfg.Starts {
		if _, seen := index[start]; seen {
			continue
		}
		index[start], low[start] = counter, counter
		counter++
		sccStack = append(sccStack, start)
		onStack[start] = true
		call := []frame{{key: start, next: cfg.Next(start)}}

		for len(call) > 0 {
			top := &call[len(call)-1]
			if len(top.next) > 0 {
				n := top.next[0]
				top.next = top.next[1:]
				if _, seen := index[n]; !seen {
					index[n], low[n] = counter, counter
					counter++
					sccStack = append(sccStack, n)
					onStack[n] = true
					call = append(call, frame{key: n, next: cfg.Next(n)})
				} else if onStack[n] && index[n] < low[top.key] {
					low[top.key] = index[n]
				}
				continue
			}

			key := top.key
			call = call[:len(call)-1]
			if len(call) > 0 {
				parent := call[len(call)-1].key
				if low[key] < low[parent] {
					low[parent] = low[key]
				}
			}
			if low[key] != index[key] {
				continue
			}
			var comp []K
			for {
				n := sccStack[len(sccStack)-1]
				sccStack = sccStack[:len(sccStack)-1]
				onStack[n] = false
				comp = append(comp, n)
				if n == key {
					break
				}
			}
			if len(comp) > 1 || selfLoop(cfg.Next, key) {
				// reverse to discovery order
				for i, j := 0, len(comp)-1; i < j; i, j = i+1, j-1 {
					comp[i], comp[j] = comp[j], comp[i]
				}
				out = append(out, comp)
			}
		}
	}
	return out
}

func selfLoop[K comparable](next func(K) []K, key K) bool {
	for _, n := range next(key) {
		if n == key {
			return true
		}
	}
	return false
}
