// README: Constrained permutation generator (interleavings of ordered chains).
package routing

import "iter"

type chainSlot struct {
    chain int
    pos   int
}

// Permute yields every ordering of items in which the members of each chain
// appear in chain order. Chains must not share members. Elements that belong
// to no chain are placed freely. A chain member missing from items blocks the
// members that follow it, so such constraints can leave nothing to yield.
//
// The yielded slice is reused between iterations; callers that keep a
// permutation must copy it.
func Permute[T comparable](items []T, chains [][]T) iter.Seq[[]T] {
    return func(yield func([]T) bool) {
        n := len(items)
        member := make(map[T]chainSlot)
        for ci, c := range chains {
            for pi, e := range c {
                member[e] = chainSlot{chain: ci, pos: pi}
            }
        }
        slots := make([]chainSlot, n)
        for i, it := range items {
            s, ok := member[it]
            if !ok {
                s = chainSlot{chain: -1}
            }
            slots[i] = s
        }

        cursor := make([]int, len(chains))
        used := make([]bool, n)
        out := make([]T, n)

        var place func(k int) bool
        place = func(k int) bool {
            if k == n {
                return yield(out)
            }
            for i := 0; i < n; i++ {
                if used[i] {
                    continue
                }
                s := slots[i]
                if s.chain >= 0 && cursor[s.chain] != s.pos {
                    continue
                }
                used[i] = true
                if s.chain >= 0 {
                    cursor[s.chain]++
                }
                out[k] = items[i]
                if !place(k + 1) {
                    return false
                }
                used[i] = false
                if s.chain >= 0 {
                    cursor[s.chain]--
                }
            }
            return true
        }
        place(0)
    }
}

// Permutations collects every constrained permutation into fresh slices.
func Permutations[T comparable](items []T, chains [][]T) [][]T {
    var out [][]T
    for p := range Permute(items, chains) {
        cp := make([]T, len(p))
        copy(cp, p)
        out = append(out, cp)
    }
    return out
}
